package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefs holds the per-session deployment preferences layered under every
// invocation. All fields are optional; empty means "not set".
type Prefs struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Method    string `json:"method,omitempty" yaml:"method,omitempty"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Domain    string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

func (p Prefs) merged(partial Prefs) Prefs {
	if partial.Provider != "" {
		p.Provider = partial.Provider
	}
	if partial.Method != "" {
		p.Method = partial.Method
	}
	if partial.OutputDir != "" {
		p.OutputDir = partial.OutputDir
	}
	if partial.Domain != "" {
		p.Domain = partial.Domain
	}
	return p
}

// Store owns one conversation session's mutable state: preferences, the
// session identifier, the last known preview URL and the log buffer of
// the current invocation. One store per session, never shared across
// sessions; reads may happen concurrently with the goroutine driving the
// current invocation.
type Store struct {
	mu         sync.Mutex
	id         string
	prefs      Prefs
	previewURL string
	logLines   []string
}

// NewStore creates a session store with a generated session id.
func NewStore() *Store {
	return NewStoreWithID("s-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// NewStoreWithID creates a session store with an explicit session id,
// used to resume correlation with the external tool's persisted history.
func NewStoreWithID(id string) *Store {
	return &Store{id: id}
}

// SessionID is stable for the lifetime of the store.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Store) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Merge applies a partial preference set, field-wise last-write-wins.
// Absent fields are left untouched; merging the same partial twice is a
// no-op the second time.
func (s *Store) Merge(partial Prefs) Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = s.prefs.merged(partial)
	return s.prefs
}

func (s *Store) SetPreviewURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewURL = u
}

func (s *Store) PreviewURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewURL
}

// ResetLog clears the buffer at the start of a new invocation. The
// previous invocation's lines stay readable until then.
func (s *Store) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLines = nil
}

func (s *Store) AppendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLines = append(s.logLines, line)
}

func (s *Store) LogLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.logLines...)
}

// LogText is the point-in-time concatenation exposed for copy/download.
func (s *Store) LogText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.logLines) == 0 {
		return ""
	}
	return strings.Join(s.logLines, "\n") + "\n"
}

// NormalizeURL ensures a URL carries an explicit scheme, defaulting to
// https. Supports bare hosts ("example.com"), protocol-relative inputs
// ("//example.com") and full URLs.
func NormalizeURL(u string) string {
	s := strings.TrimSpace(u)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	return "https://" + s
}
