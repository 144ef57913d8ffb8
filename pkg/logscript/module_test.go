package logscript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotate.js")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_RequiresRegister(t *testing.T) {
	path := writeScript(t, `var x = 1;`)
	_, err := LoadFromFile(path, Options{})
	require.ErrorIs(t, err, ErrNoRegister)
}

func TestLoadFromFile_RequiresAnnotate(t *testing.T) {
	path := writeScript(t, `register({ name: "broken" });`)
	_, err := LoadFromFile(path, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "annotate")
}

func TestAnnotate_ObjectResult(t *testing.T) {
	path := writeScript(t, `
register({
  name: "deploy-errors",
  annotate: function(line, ctx) {
    if (line.indexOf("ERROR") !== -1) {
      return { level: "error", message: line, tags: ["deploy"] };
    }
    return null;
  },
});
`)
	m, err := LoadFromFile(path, Options{})
	require.NoError(t, err)
	require.Equal(t, "deploy-errors", m.Name())

	ann, err := m.Annotate("ERROR: build failed", 3)
	require.NoError(t, err)
	require.NotNil(t, ann)
	require.Equal(t, "ERROR", ann.Level)
	require.Equal(t, []string{"deploy"}, ann.Tags)
	require.Equal(t, int64(3), ann.LineNumber)

	ann, err = m.Annotate("Uploading...", 4)
	require.NoError(t, err)
	require.Nil(t, ann)

	require.Equal(t, int64(2), m.Stats().LinesProcessed)
	require.Equal(t, int64(1), m.Stats().Annotated)
	require.Equal(t, int64(1), m.Stats().Skipped)
}

func TestAnnotate_StringShorthand(t *testing.T) {
	path := writeScript(t, `
register({
  name: "shorthand",
  annotate: function(line) { return "prefixed: " + line; },
});
`)
	m, err := LoadFromFile(path, Options{})
	require.NoError(t, err)

	ann, err := m.Annotate("hello", 1)
	require.NoError(t, err)
	require.Equal(t, "prefixed: hello", ann.Message)
	require.Equal(t, "INFO", ann.Level)
}

func TestAnnotate_StatePersistsAcrossLines(t *testing.T) {
	path := writeScript(t, `
register({
  name: "counter",
  annotate: function(line, ctx) {
    ctx.state.n = (ctx.state.n || 0) + 1;
    return { message: line, tags: ["n" + ctx.state.n] };
  },
});
`)
	m, err := LoadFromFile(path, Options{})
	require.NoError(t, err)

	ann, err := m.Annotate("a", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"n1"}, ann.Tags)

	ann, err = m.Annotate("b", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"n2"}, ann.Tags)
}

func TestAnnotate_ParseTimestampHelper(t *testing.T) {
	path := writeScript(t, `
register({
  name: "ts",
  annotate: function(line, ctx) {
    var d = log.parseTimestamp(line.slice(0, 19));
    if (d === null) { return null; }
    return { message: line, timestamp: d.toISOString() };
  },
});
`)
	m, err := LoadFromFile(path, Options{})
	require.NoError(t, err)

	ann, err := m.Annotate("2026-08-27 10:30:00 deploy started", 1)
	require.NoError(t, err)
	require.NotNil(t, ann)
	require.NotNil(t, ann.Timestamp)
	require.Contains(t, *ann.Timestamp, "2026-08-27")
}

func TestAnnotate_HookTimeout(t *testing.T) {
	path := writeScript(t, `
register({
  name: "spin",
  annotate: function(line) { while (true) {} },
});
`)
	m, err := LoadFromFile(path, Options{HookTimeout: "50ms"})
	require.NoError(t, err)

	_, err = m.Annotate("anything", 1)
	require.Error(t, err)
	require.Equal(t, int64(1), m.Stats().HookTimeouts)
}
