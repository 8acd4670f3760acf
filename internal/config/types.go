package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ErrMissingInput is matched by every *MissingInputError.
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports a required input that was not supplied, or an
// input file that does not exist.
type MissingInputError struct {
	Input string // input name, e.g. "goListFile"
	Path  string // set when the input was supplied but the file is missing
}

func (e *MissingInputError) Error() string {
	if e.Path != "" {
		return "could not find " + e.Path
	}
	return "input required and not supplied: " + e.Input
}

// Is reports whether target is ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// Inputs is the resolved action configuration.
type Inputs struct {
	// GoListFile is the `go list -json` dump piped into voorhees.
	GoListFile string
	// Version is the requested release: "latest", "1", "1.2" or "1.2.3".
	Version string
	// WorkDir receives the binary and is voorhees' working directory.
	WorkDir string

	ReleaseBaseURL string
	APIBaseURL     string
	Owner          string
	Repo           string
	// Token authenticates release index requests. Never read from Lua.
	Token string

	VerifyChecksum bool
	// SigningKey is a path to an OpenPGP public key for the checksum file.
	SigningKey   string
	SortReleases bool

	// ConfigFile is the Lua file that was evaluated, if any.
	ConfigFile string

	// Platform and Arch override the detected host when set.
	Platform string
	Arch     string

	// Args are passed to voorhees after its name.
	Args []string
}

// Validate checks required inputs and value formats. It does not touch the
// filesystem; see CheckInputFile.
func (in *Inputs) Validate() error {
	if in.GoListFile == "" {
		return &MissingInputError{Input: InputGoListFile}
	}
	if in.Version == "" {
		return &ValidationError{Field: InputVersion, Message: "cannot be empty"}
	}

	if len(in.Args) > MaxArgCount {
		return &ValidationError{
			Field:   luaFieldArgs,
			Message: fmt.Sprintf("too many arguments (%d), maximum is %d", len(in.Args), MaxArgCount),
		}
	}

	for field, v := range map[string]string{"owner": in.Owner, "repo": in.Repo} {
		if !repoNamePattern.MatchString(v) {
			return &ValidationError{Field: field, Message: fmt.Sprintf("invalid GitHub name %q", v)}
		}
	}

	for field, v := range map[string]string{"release-base-url": in.ReleaseBaseURL, "api-base-url": in.APIBaseURL} {
		if err := validateBaseURL(v); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	return nil
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "invalid input " + e.Field + ": " + e.Message
	}
	return "invalid input: " + e.Message
}

// repoNamePattern matches GitHub owner and repository names.
var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,100}$`)

// validateBaseURL validates an http(s) base URL.
func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}

	return nil
}
