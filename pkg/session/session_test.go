package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_SessionID(t *testing.T) {
	s := NewStore()
	id := s.SessionID()
	require.True(t, strings.HasPrefix(id, "s-"))
	require.Len(t, id, 10)
	require.Equal(t, id, s.SessionID())

	s2 := NewStoreWithID("s-cafe1234")
	require.Equal(t, "s-cafe1234", s2.SessionID())
}

func TestStore_MergeLastWriteWins(t *testing.T) {
	s := NewStore()

	got := s.Merge(Prefs{Provider: "netlify"})
	require.Equal(t, Prefs{Provider: "netlify"}, got)

	got = s.Merge(Prefs{Method: "cli"})
	require.Equal(t, Prefs{Provider: "netlify", Method: "cli"}, got)

	// Overriding one field leaves the others intact.
	got = s.Merge(Prefs{Provider: "vercel"})
	require.Equal(t, Prefs{Provider: "vercel", Method: "cli"}, got)
}

func TestStore_MergeIdempotent(t *testing.T) {
	s := NewStore()
	partial := Prefs{Provider: "vercel", OutputDir: "dist"}

	first := s.Merge(partial)
	second := s.Merge(partial)
	require.Equal(t, first, second)
}

func TestStore_LogBuffer(t *testing.T) {
	s := NewStore()
	s.AppendLog("Building...")
	s.AppendLog("Uploading...")
	require.Equal(t, []string{"Building...", "Uploading..."}, s.LogLines())
	require.Equal(t, "Building...\nUploading...\n", s.LogText())

	s.ResetLog()
	require.Empty(t, s.LogLines())
	require.Equal(t, "", s.LogText())
}

func TestNormalizeURL(t *testing.T) {
	require.Equal(t, "https://myapp.vercel.app", NormalizeURL("myapp.vercel.app"))
	require.Equal(t, "https://example.com", NormalizeURL("//example.com"))
	require.Equal(t, "http://localhost:3000", NormalizeURL("http://localhost:3000"))
	require.Equal(t, "https://a.b", NormalizeURL("  a.b "))
	require.Equal(t, "", NormalizeURL(""))
}
