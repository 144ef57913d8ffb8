package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

const (
	StateDirName    = "state"
	HistoryFilename = "deployments.json"
)

// Record is one persisted deployment attempt as written by the external
// tool. Only Id and LogsPath are part of the read contract; the rest is
// carried for display.
type Record struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	URL       string `json:"url,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Method    string `json:"method,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	LogsPath  string `json:"logsPath,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CreatedTime parses the record timestamp, accepting whatever format the
// external tool happened to write.
func (r Record) CreatedTime() (time.Time, bool) {
	if r.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(r.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Path returns the history file location under a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, StateDirName, HistoryFilename)
}

// Load reads the ordered history file (oldest first, newest last).
func Load(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read history")
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, errors.Wrap(err, "parse history json")
	}
	return records, nil
}

// FindLatest returns the most recent record with the given id. The file
// is append-ordered, so a later entry wins, except when duplicate ids
// both carry timestamps and they disagree with file order: then the
// newest CreatedAt wins. Records the tool rewrote out of order keep
// resolving to the genuinely latest attempt.
func FindLatest(records []Record, id string) (Record, bool) {
	var best Record
	found := false
	for _, r := range records {
		if r.ID != id {
			continue
		}
		if !found {
			best, found = r, true
			continue
		}
		bt, bok := best.CreatedTime()
		rt, rok := r.CreatedTime()
		if bok && rok && rt.Before(bt) {
			continue
		}
		best = r
	}
	return best, found
}
