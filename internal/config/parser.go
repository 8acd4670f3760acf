package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/platform"
)

// FileConfig holds the values set by a Lua config file. Empty strings and
// nil pointers mean the file left the field unset.
type FileConfig struct {
	GoListFile     string
	Version        string
	WorkDir        string
	SigningKey     string
	Platform       string
	Arch           string
	ReleaseBaseURL string
	APIBaseURL     string
	Owner          string
	Repo           string
	VerifyChecksum *bool
	SortReleases   *bool
	Args           []string
}

// Parser evaluates Lua config files with a read-only platform table.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: defaultLogger()}
}

// WithLogger sets the logger for warnings found while parsing.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// ParseFile reads and evaluates a Lua config file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*FileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if findings := DetectSensitiveData(string(content)); len(findings) > 0 {
		p.logger.Warn(FormatSensitiveDataWarning(findings), "file", path)
	}

	return p.ParseString(ctx, string(content))
}

// ParseString evaluates Lua config code.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*FileConfig, error) {
	L := newSandboxedVM(ctx)
	defer L.Close()

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluate config: %w", ctxErr)
		}
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) && apiErr.Type == lua.ApiErrorSyntax {
			return nil, &ParseError{Message: "Lua syntax error", Detail: err.Error()}
		}
		return nil, &ParseError{Message: "Lua runtime error", Detail: err.Error()}
	}

	return p.extractFileConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

var knownFields = map[string]bool{
	luaFieldGoListFile:     true,
	luaFieldVersion:        true,
	luaFieldVerifyChecksum: true,
	luaFieldSigningKey:     true,
	luaFieldSortReleases:   true,
	luaFieldWorkDir:        true,
	luaFieldPlatform:       true,
	luaFieldArch:           true,
	luaFieldReleaseBaseURL: true,
	luaFieldAPIBaseURL:     true,
	luaFieldOwner:          true,
	luaFieldRepo:           true,
	luaFieldArgs:           true,
}

// extractFileConfig reads the global "voorhees" table.
func (p *Parser) extractFileConfig(L *lua.LState) (*FileConfig, error) {
	global := L.GetGlobal(luaGlobalVoorhees)
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalVoorhees),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	table.ForEach(func(key, _ lua.LValue) {
		if name, ok := key.(lua.LString); !ok || !knownFields[string(name)] {
			p.logger.Warn("ignoring unknown config field", "field", key.String())
		}
	})

	cfg := &FileConfig{}
	strs := []struct {
		field string
		dest  *string
	}{
		{luaFieldGoListFile, &cfg.GoListFile},
		{luaFieldVersion, &cfg.Version},
		{luaFieldWorkDir, &cfg.WorkDir},
		{luaFieldSigningKey, &cfg.SigningKey},
		{luaFieldPlatform, &cfg.Platform},
		{luaFieldArch, &cfg.Arch},
		{luaFieldReleaseBaseURL, &cfg.ReleaseBaseURL},
		{luaFieldAPIBaseURL, &cfg.APIBaseURL},
		{luaFieldOwner, &cfg.Owner},
		{luaFieldRepo, &cfg.Repo},
	}
	for _, s := range strs {
		v, err := stringField(table, s.field)
		if err != nil {
			return nil, err
		}
		*s.dest = v
	}

	var err error
	if cfg.VerifyChecksum, err = boolField(table, luaFieldVerifyChecksum); err != nil {
		return nil, err
	}
	if cfg.SortReleases, err = boolField(table, luaFieldSortReleases); err != nil {
		return nil, err
	}
	if cfg.Args, err = extractArgs(table); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringField reads a string field. Numbers are accepted so that
// `version = 1` works.
func stringField(table *lua.LTable, name string) (string, error) {
	switch v := table.RawGetString(name).(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return strings.TrimSpace(string(v)), nil
	case lua.LNumber:
		return v.String(), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

func boolField(table *lua.LTable, name string) (*bool, error) {
	switch v := table.RawGetString(name).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		b := bool(v)
		return &b, nil
	default:
		return nil, fieldTypeError(name, "boolean", v)
	}
}

// extractArgs reads the args array in order. nil holes left by platform
// conditionals (`platform.is_linux and "-x" or nil`) are skipped.
func extractArgs(table *lua.LTable) ([]string, error) {
	val := table.RawGetString(luaFieldArgs)
	if val == lua.LNil {
		return nil, nil
	}
	argsTable, ok := val.(*lua.LTable)
	if !ok {
		return nil, fieldTypeError(luaFieldArgs, "table", val)
	}

	var args []string
	for i := 1; i <= argsTable.MaxN(); i++ {
		switch v := argsTable.RawGetInt(i).(type) {
		case *lua.LNilType:
			continue
		case lua.LString:
			args = append(args, string(v))
		case lua.LNumber:
			args = append(args, v.String())
		default:
			return nil, fieldTypeError(fmt.Sprintf("%s[%d]", luaFieldArgs, i), "string", v)
		}
	}
	return args, nil
}

func fieldTypeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s' table", luaGlobalVoorhees),
		Detail:  fmt.Sprintf("field %s: expected %s, got %s", field, want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
