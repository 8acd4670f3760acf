// Package config resolves the action inputs.
//
// Inputs come from the GitHub Actions environment (INPUT_<NAME>) and,
// optionally, from a Lua config file evaluated in a sandboxed gopher-lua VM.
// The environment wins; the Lua file fills whatever the workflow left empty;
// defaults fill the rest.
//
// # Config file
//
// The file is the config-file input, or voorhees-action.lua in the working
// directory when it exists. It must define a global voorhees table:
//
//	voorhees = {
//	  go_list_file = "golist.json",
//	  version = platform.is_windows and "1.2" or "latest",
//	  verify_checksum = true,
//	  args = {
//	    "-ignore", "golang.org/x/*",
//	    platform.when(platform.is_linux, "-v"),
//	  },
//	}
//
// A read-only platform table describing the host is available while the
// file runs. The os, io and debug libraries and every way to load further
// code are removed, and evaluation stops when the context is cancelled.
//
// The GitHub token is never read from the file. A file that looks like it
// contains a token or a private key is still evaluated, but a warning is
// logged.
//
// # Errors
//
// Lua failures are reported as *ParseError; FormatError trims the stack
// traceback unless verbose output is requested. Missing required inputs
// match ErrMissingInput and bad values are reported as *ValidationError.
package config
