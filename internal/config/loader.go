package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/binary"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/platform"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/release"
)

// Loader resolves Inputs from an environment lookup and an optional Lua
// config file.
type Loader struct {
	getenv   func(string) string
	getwd    func() (string, error)
	detector platform.Detector
	logger   Logger
}

// NewLoader creates a Loader reading the process environment. detector
// backs the platform table of the Lua file; nil leaves the table out.
func NewLoader(detector platform.Detector) *Loader {
	return &Loader{
		getenv:   os.Getenv,
		getwd:    os.Getwd,
		detector: detector,
		logger:   defaultLogger(),
	}
}

// WithLogger sets the logger for config warnings.
func (l *Loader) WithLogger(logger Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	if getenv != nil {
		l.getenv = getenv
	}
	return l
}

// WithWorkingDir pins the directory relative paths are resolved against.
func (l *Loader) WithWorkingDir(dir string) *Loader {
	l.getwd = func() (string, error) { return dir, nil }
	return l
}

// Load resolves the inputs from getenv, using the process working directory.
// Config warnings go to logger.
func Load(ctx context.Context, getenv func(string) string, detector platform.Detector, logger Logger) (*Inputs, error) {
	return NewLoader(detector).WithEnv(getenv).WithLogger(logger).Load(ctx)
}

// Load resolves and validates the inputs.
//
// Precedence per field: a non-empty action input, then the Lua file, then
// the default. Relative paths are resolved against the working directory.
func (l *Loader) Load(ctx context.Context) (*Inputs, error) {
	cwd, err := l.getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	env := l.envInputs()

	baseDir := cwd
	if env.WorkDir != "" {
		baseDir = resolvePath(cwd, env.WorkDir)
	}

	file := &FileConfig{}
	configPath, err := l.findConfigFile(baseDir, env.ConfigFile)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		l.logger.Debug("evaluating config file", "path", configPath)

		var detector platform.Detector
		if l.detector != nil {
			detector = platform.Override(l.detector, env.Platform, env.Arch)
		}
		file, err = NewParser(detector).WithLogger(l.logger).ParseFile(ctx, configPath)
		if err != nil {
			return nil, err
		}
	}

	verifyChecksum, err := l.boolInput(InputVerifyChecksum, file.VerifyChecksum)
	if err != nil {
		return nil, err
	}
	sortReleases, err := l.boolInput(InputSortReleases, file.SortReleases)
	if err != nil {
		return nil, err
	}

	in := &Inputs{
		GoListFile:     pick(env.GoListFile, file.GoListFile),
		Version:        pick(env.Version, file.Version, DefaultVersion),
		WorkDir:        pick(env.WorkDir, file.WorkDir),
		ReleaseBaseURL: pick(env.ReleaseBaseURL, file.ReleaseBaseURL, binary.DefaultReleaseBaseURL),
		APIBaseURL:     pick(env.APIBaseURL, file.APIBaseURL, release.DefaultAPIBaseURL),
		Owner:          pick(file.Owner, DefaultOwner),
		Repo:           pick(file.Repo, DefaultRepo),
		Token:          pick(env.Token, release.TokenFrom(l.getenv)),
		VerifyChecksum: verifyChecksum,
		SigningKey:     pick(env.SigningKey, file.SigningKey),
		SortReleases:   sortReleases,
		ConfigFile:     configPath,
		Platform:       pick(env.Platform, file.Platform),
		Arch:           pick(env.Arch, file.Arch),
		Args:           file.Args,
	}

	in.WorkDir = resolvePath(cwd, in.WorkDir)
	if in.GoListFile != "" {
		in.GoListFile = resolvePath(in.WorkDir, in.GoListFile)
	}
	if in.SigningKey != "" {
		in.SigningKey = resolvePath(in.WorkDir, in.SigningKey)
		in.VerifyChecksum = true
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	l.logger.Debug("inputs resolved",
		"version", in.Version,
		"workdir", in.WorkDir,
		"config", in.ConfigFile,
		"verify_checksum", in.VerifyChecksum,
	)
	return in, nil
}

// envInputs reads the string inputs set on the step.
func (l *Loader) envInputs() *Inputs {
	return &Inputs{
		GoListFile:     l.input(InputGoListFile),
		Version:        l.input(InputVersion),
		WorkDir:        l.input(InputWorkingDirectory),
		ReleaseBaseURL: l.input(InputReleaseBaseURL),
		APIBaseURL:     l.input(InputAPIBaseURL),
		Token:          l.input(InputToken),
		SigningKey:     l.input(InputSigningKey),
		ConfigFile:     l.input(InputConfigFile),
		Platform:       l.input(InputPlatform),
		Arch:           l.input(InputArch),
	}
}

// input returns the trimmed value of INPUT_<NAME>. Names containing a
// hyphen are also looked up with underscores.
func (l *Loader) input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	if v := strings.TrimSpace(l.getenv(key)); v != "" {
		return v
	}
	if strings.Contains(key, "-") {
		return strings.TrimSpace(l.getenv(strings.ReplaceAll(key, "-", "_")))
	}
	return ""
}

// boolInput parses a boolean input with the YAML 1.2 core schema spellings
// the Actions runner accepts. An unset input falls back to fallback, then
// false.
func (l *Loader) boolInput(name string, fallback *bool) (bool, error) {
	switch v := l.input(name); v {
	case "":
		return fallback != nil && *fallback, nil
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	default:
		return false, &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%q is not a boolean, use true or false", v),
		}
	}
}

// findConfigFile returns the Lua file to evaluate, or "" when there is none.
// An explicit config-file that does not exist is an error; a missing
// default file is not.
func (l *Loader) findConfigFile(dir, explicit string) (string, error) {
	if explicit != "" {
		path := resolvePath(dir, explicit)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", &MissingInputError{Input: InputConfigFile, Path: path}
			}
			return "", fmt.Errorf("stat config file: %w", err)
		}
		return path, nil
	}

	path := filepath.Join(dir, DefaultConfigFile)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", nil
	}
	return path, nil
}

// CheckInputFile reports a *MissingInputError when GoListFile does not exist.
func (in *Inputs) CheckInputFile() error {
	info, err := os.Stat(in.GoListFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingInputError{Input: InputGoListFile, Path: in.GoListFile}
		}
		return fmt.Errorf("stat %s: %w", in.GoListFile, err)
	}
	if info.IsDir() {
		return &ValidationError{Field: InputGoListFile, Message: in.GoListFile + " is a directory"}
	}
	return nil
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolvePath(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
