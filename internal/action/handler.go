package action

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// handler is a slog.Handler that writes one line per record, either as a
// GitHub workflow command or as a colored console line.
type handler struct {
	mu       *sync.Mutex
	w        io.Writer
	commands bool
	level    slog.Leveler
	attrs    []slog.Attr
	group    string
}

func newHandler(w io.Writer, mu *sync.Mutex, commands bool, level slog.Leveler) *handler {
	return &handler{mu: mu, w: w, commands: commands, level: level}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(r.Message)
	for _, a := range h.attrs {
		appendAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.group, a)
		return true
	})

	var line string
	if h.commands {
		line = commandLine(r.Level, buf.String())
	} else {
		line = consoleLine(r.Level, buf.String())
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(buf, prefix+a.Key+".", ga)
		}
		return
	}

	val := a.Value.String()
	if val == "" || strings.ContainsAny(val, " \t\"=") {
		val = strconv.Quote(val)
	}
	fmt.Fprintf(buf, " %s%s=%s", prefix, a.Key, val)
}

// commandLine formats a record as a workflow command. Info records are
// plain log lines.
func commandLine(level slog.Level, msg string) string {
	switch {
	case level >= slog.LevelError:
		return "::error::" + escapeData(msg)
	case level >= slog.LevelWarn:
		return "::warning::" + escapeData(msg)
	case level >= slog.LevelInfo:
		return msg
	default:
		return "::debug::" + escapeData(msg)
	}
}

func consoleLine(level slog.Level, msg string) string {
	switch {
	case level >= slog.LevelError:
		return color.RedString(" ✘ %s", msg)
	case level >= slog.LevelWarn:
		return color.YellowString(" ! %s", msg)
	case level >= slog.LevelInfo:
		return fmt.Sprint(color.BlueString(" •"), " ", color.New(color.FgHiBlack).Sprint(msg))
	default:
		return color.New(color.FgHiBlack).Sprint("   └ " + msg)
	}
}

// escapeData escapes the message part of a workflow command.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
