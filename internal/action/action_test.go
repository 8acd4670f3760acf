package action

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/testutil"
)

var actionsEnv = map[string]string{"GITHUB_ACTIONS": "true"}

func TestLogger_WorkflowCommands(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf, testutil.Env(map[string]string{"GITHUB_ACTIONS": "true", "RUNNER_DEBUG": "1"}))
	logger := a.Logger()

	logger.Debug("resolving", "version", "1.2")
	logger.Info("installed voorhees", "path", "/work/voorhees")
	logger.Warn("ignoring unknown config field", "field", "versoin")
	logger.Error("line one\nline two 100%")

	want := strings.Join([]string{
		"::debug::resolving version=1.2",
		"installed voorhees path=/work/voorhees",
		"::warning::ignoring unknown config field field=versoin",
		"::error::line one%0Aline two 100%25",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestLogger_DebugNeedsRunnerDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, testutil.Env(actionsEnv)).Logger().Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output without RUNNER_DEBUG: %q", buf.String())
	}
}

func TestLogger_Attrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, testutil.Env(actionsEnv)).Logger()

	logger.With("step", "install").WithGroup("asset").Info("downloading", "url", "https://example.test/a b", "size", 0)

	want := `downloading step=install asset.url="https://example.test/a b" asset.size=0` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, testutil.Env(nil)).Logger()

	logger.Info("installed voorhees")
	logger.Warn("careful")
	logger.Error("broken")

	out := buf.String()
	for _, want := range []string{"installed voorhees", "careful", "broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "::") {
		t.Errorf("console output contains workflow commands: %q", out)
	}
}

func TestSetFailed(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf, testutil.Env(actionsEnv))

	if a.Failed() || a.ExitCode() != 0 {
		t.Fatal("new Action should not be failed")
	}

	a.SetFailed("could not find /work/golist.json\r\nsecond line")

	if !a.Failed() || a.ExitCode() != 1 {
		t.Error("SetFailed should mark the action failed")
	}
	if got, want := buf.String(), "::error::could not find /work/golist.json%0D%0Asecond line\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSetFailed_Console(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf, testutil.Env(nil))
	a.SetFailed("no version found for 9")

	if !strings.Contains(buf.String(), "no version found for 9") {
		t.Errorf("output = %q", buf.String())
	}
	if a.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", a.ExitCode())
	}
}

func TestGroup(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf, testutil.Env(actionsEnv))

	errBoom := errors.New("boom")
	err := a.Group("Run voorhees", func() error {
		a.Logger().Info("inside")
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("Group() error = %v, want errBoom", err)
	}

	want := "::group::Run voorhees\ninside\n::endgroup::\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEscapeData(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		"50%":        "50%25",
		"a\nb":       "a%0Ab",
		"a\r\nb":     "a%0D%0Ab",
		"%0A":        "%250A",
		"::error::x": "::error::x",
	}
	for in, want := range tests {
		if got := escapeData(in); got != want {
			t.Errorf("escapeData(%q) = %q, want %q", in, got, want)
		}
	}
}
