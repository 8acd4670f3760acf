package config

import (
	"errors"
	"strings"
	"testing"
)

func validInputs() *Inputs {
	return &Inputs{
		GoListFile:     "/work/golist.json",
		Version:        "latest",
		WorkDir:        "/work",
		ReleaseBaseURL: "https://github.com/Nivl/voorhees/releases",
		APIBaseURL:     "https://api.github.com",
		Owner:          "Nivl",
		Repo:           "voorhees",
	}
}

func TestInputs_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *Inputs)
		wantField string
		wantErr   string
	}{
		{
			name:   "valid",
			mutate: func(in *Inputs) {},
		},
		{
			name:    "missing_go_list_file",
			mutate:  func(in *Inputs) { in.GoListFile = "" },
			wantErr: "input required and not supplied: goListFile",
		},
		{
			name:      "empty_version",
			mutate:    func(in *Inputs) { in.Version = "" },
			wantField: InputVersion,
		},
		{
			name:      "too_many_args",
			mutate:    func(in *Inputs) { in.Args = make([]string, MaxArgCount+1) },
			wantField: "args",
		},
		{
			name:      "owner_with_slash",
			mutate:    func(in *Inputs) { in.Owner = "Nivl/voorhees" },
			wantField: "owner",
		},
		{
			name:      "empty_repo",
			mutate:    func(in *Inputs) { in.Repo = "" },
			wantField: "repo",
		},
		{
			name:      "ftp_release_url",
			mutate:    func(in *Inputs) { in.ReleaseBaseURL = "ftp://example.com/releases" },
			wantField: "release-base-url",
		},
		{
			name:      "api_url_without_host",
			mutate:    func(in *Inputs) { in.APIBaseURL = "https://" },
			wantField: "api-base-url",
		},
		{
			name:      "empty_api_url",
			mutate:    func(in *Inputs) { in.APIBaseURL = "" },
			wantField: "api-base-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			tt.mutate(in)
			err := in.Validate()

			switch {
			case tt.wantField != "":
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("Validate() error = %v, want ValidationError", err)
				}
				if valErr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", valErr.Field, tt.wantField)
				}
			case tt.wantErr != "":
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestMissingInputError(t *testing.T) {
	err := error(&MissingInputError{Input: InputGoListFile, Path: "/work/golist.json"})
	if !errors.Is(err, ErrMissingInput) {
		t.Error("MissingInputError should match ErrMissingInput")
	}
	if got := err.Error(); got != "could not find /work/golist.json" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "version", Message: "cannot be empty"}
	if got := err.Error(); got != "invalid input version: cannot be empty" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ValidationError{Message: "bad"}).Error(); !strings.HasPrefix(got, "invalid input: ") {
		t.Errorf("Error() = %q", got)
	}
}
