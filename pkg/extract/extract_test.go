package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLastJSONObject_TrailingRecord(t *testing.T) {
	out := "Building...\nUploading...\n{\"type\":\"Success\",\"url\":\"myapp.vercel.app\"}\n"
	rec, ok := LastJSONObject(out)
	require.True(t, ok)
	require.Equal(t, "Success", rec.Type())
	require.Equal(t, "myapp.vercel.app", rec.URL())
}

func TestLastJSONObject_NoObject(t *testing.T) {
	_, ok := LastJSONObject("plain progress text\nwith no record\n")
	require.False(t, ok)

	_, ok = LastJSONObject("")
	require.False(t, ok)
}

func TestLastJSONObject_NestedObjects(t *testing.T) {
	out := "deploying\n{\"type\":\"Success\",\"meta\":{\"region\":\"fra1\",\"build\":{\"ms\":1200}},\"id\":\"d-1\"}\n"
	rec, ok := LastJSONObject(out)
	require.True(t, ok)
	require.Equal(t, "Success", rec.Type())
	require.Equal(t, "d-1", rec.ID())

	meta, ok2 := rec["meta"].(map[string]any)
	require.True(t, ok2)
	require.Equal(t, "fra1", meta["region"])
}

func TestLastJSONObject_BracesInProse(t *testing.T) {
	// Stray braces in the log prose must not shadow the real record.
	out := "warn: template {placeholder} unresolved\n{\"type\":\"Warning\",\"message\":\"partial {deploy}\"}\n"
	rec, ok := LastJSONObject(out)
	require.True(t, ok)
	require.Equal(t, "Warning", rec.Type())
	require.Equal(t, "partial {deploy}", rec.Message())
}

func TestLastJSONObject_ObjectFollowedByProse(t *testing.T) {
	// A record that is not the last top-level value is an embedded
	// fragment, not the trailing record.
	out := "{\"type\":\"Success\"} and then more prose\n"
	_, ok := LastJSONObject(out)
	require.False(t, ok)
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	rec := Record{"type": "Success", "url": "app.netlify.app"}
	parsed, ok := LastJSONObject(rec.JSON())
	require.True(t, ok)
	require.Equal(t, rec.URL(), parsed.URL())
}
