// Package runner spawns the installed voorhees binary with a file piped into
// its standard input and reports how it exited.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// ErrSubprocess is matched by every *ExitError.
var ErrSubprocess = errors.New("subprocess failed")

// ExitError reports a non-zero exit or a termination by signal.
type ExitError struct {
	Name   string
	Code   int    // -1 when terminated by a signal
	Signal string // empty unless terminated by a signal
	err    error
}

// Error returns a message suitable for the failure sink.
func (e *ExitError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("%s was terminated by signal %s", e.Name, e.Signal)
	}
	return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
}

// Unwrap returns the underlying *exec.ExitError.
func (e *ExitError) Unwrap() error {
	return e.err
}

// Is reports whether target is ErrSubprocess.
func (e *ExitError) Is(target error) bool {
	return target == ErrSubprocess
}

// Options describes one invocation.
type Options struct {
	// Path is the executable to run.
	Path string
	// Args are passed after the executable name.
	Args []string
	// Dir is the working directory (default: the current one).
	Dir string
	// InputFile is opened and connected to the child's stdin.
	InputFile string
	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Env replaces the inherited environment when non-nil.
	Env []string
}

// Run starts opts.Path, streams opts.InputFile into it and waits for it to
// exit. A zero exit status returns nil; anything else returns *ExitError.
// A cancelled context kills the child.
func Run(ctx context.Context, opts Options) error {
	if opts.Path == "" {
		return fmt.Errorf("executable path is required")
	}

	var stdin io.Reader
	if opts.InputFile != "" {
		f, err := os.Open(opts.InputFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		stdin = f
	}

	cmd := exec.CommandContext(ctx, opts.Path, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = stdin
	cmd.Stdout = orDefault(opts.Stdout, os.Stdout)
	cmd.Stderr = orDefault(opts.Stderr, os.Stderr)
	if opts.Env != nil {
		cmd.Env = opts.Env
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	return translateError(ctx, filepath.Base(opts.Path), err)
}

func translateError(ctx context.Context, name string, err error) error {
	// the child is killed on cancellation, so its exit status says nothing
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out: %w", name, ctxErr)
		}
		return fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("start %s: %w", name, err)
	}

	out := &ExitError{Name: name, Code: exitErr.ExitCode(), err: exitErr}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		out.Signal = status.Signal().String()
	}
	return out
}

func orDefault(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
