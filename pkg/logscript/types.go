package logscript

// Annotation is the classification a script attaches to one streamed
// deploy log line. A nil annotation means "leave the line as-is".
type Annotation struct {
	Level     string   `json:"level"`
	Message   string   `json:"message"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"`

	Raw        string `json:"raw"`
	LineNumber int64  `json:"lineNumber"`
}

type Stats struct {
	LinesProcessed int64
	Annotated      int64
	Skipped        int64
	HookErrors     int64
	HookTimeouts   int64
}

type Options struct {
	// HookTimeout bounds one annotate() call, e.g. "200ms". Empty means
	// no timeout.
	HookTimeout string
}
