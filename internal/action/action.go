// Package action is the surface the step talks to GitHub Actions through:
// log output, collapsible groups and the failure status.
//
// Under GitHub Actions (GITHUB_ACTIONS=true) output is written as workflow
// commands. Anywhere else it is written as colored console lines. Debug
// output is only enabled when RUNNER_DEBUG=1, which the runner sets when a
// job is re-run with debug logging.
package action

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Action writes logs and failures for one run of the step.
type Action struct {
	mu       sync.Mutex
	out      io.Writer
	commands bool
	logger   *slog.Logger
	failed   bool
}

// New creates an Action writing to out. getenv is used to detect the
// runner; nil means os.Getenv.
func New(out io.Writer, getenv func(string) string) *Action {
	if getenv == nil {
		getenv = os.Getenv
	}
	if out == nil {
		out = os.Stdout
	}

	a := &Action{
		out:      out,
		commands: getenv("GITHUB_ACTIONS") == "true",
	}

	level := slog.LevelInfo
	if getenv("RUNNER_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	a.logger = slog.New(newHandler(out, &a.mu, a.commands, level))
	return a
}

// Logger returns the structured logger. It satisfies the Logger interfaces
// of the config and binary packages.
func (a *Action) Logger() *slog.Logger {
	return a.logger
}

// SetFailed reports msg as the step's error and marks the step failed.
func (a *Action) SetFailed(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failed = true
	if a.commands {
		_, _ = io.WriteString(a.out, "::error::"+escapeData(msg)+"\n")
		return
	}
	_, _ = io.WriteString(a.out, color.RedString(" ✘ %s", msg)+"\n")
}

// Failed reports whether SetFailed was called.
func (a *Action) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// ExitCode is 1 after a failure and 0 otherwise.
func (a *Action) ExitCode() int {
	if a.Failed() {
		return 1
	}
	return 0
}

// Group runs fn inside a collapsible log group and returns its error.
func (a *Action) Group(name string, fn func() error) error {
	a.write("::group::"+escapeData(name), color.BlueString(" •")+" "+name)
	defer a.write("::endgroup::", "")
	return fn()
}

// write emits command under Actions and console elsewhere. An empty line
// is not written.
func (a *Action) write(command, console string) {
	line := console
	if a.commands {
		line = command
	}
	if line == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = io.WriteString(a.out, line+"\n")
}
