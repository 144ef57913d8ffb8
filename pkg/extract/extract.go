package extract

import (
	"encoding/json"
	"strings"
)

// Record is the structured result recovered from a finished invocation.
// The external tool defines the schema; we only inspect a few well-known
// fields and pass the rest through untouched.
type Record map[string]any

func (r Record) Type() string    { return r.stringField("type") }
func (r Record) URL() string     { return r.stringField("url") }
func (r Record) Message() string { return r.stringField("message") }
func (r Record) ID() string      { return r.stringField("id") }

func (r Record) stringField(key string) string {
	if r == nil {
		return ""
	}
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// JSON returns the record serialized as compact JSON.
func (r Record) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// LastJSONObject recovers the trailing JSON object from mixed tool output.
//
// It scans from the last character backward for each '{' and tries to
// decode the suffix starting there as a complete object. The first suffix
// that decodes (the rightmost viable start) wins, so nested braces inside
// the record do not confuse the scan as long as the record is the last
// top-level value in the stream. Returns false when no suffix decodes.
func LastJSONObject(text string) (Record, bool) {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] != '{' {
			continue
		}
		candidate := text[i:]
		var obj Record
		dec := json.NewDecoder(strings.NewReader(candidate))
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		// Anything but whitespace after the object means the candidate
		// was an embedded fragment, not the trailing record.
		if strings.TrimSpace(candidate[dec.InputOffset():]) != "" {
			continue
		}
		return obj, true
	}
	return nil, false
}
