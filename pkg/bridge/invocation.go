package bridge

// Invocation is one fully-resolved execution of the external deployment
// tool. It is built fresh per call from explicit arguments layered over
// the session store and is immutable once built.
type Invocation struct {
	Op   string
	Path string

	Provider  string
	Method    string
	SessionID string

	JSONOnly       bool
	DryRun         bool
	NonInteractive bool

	LogPath  string
	RecordID string
}

// Argv renders the invocation as an argument list appended to the tool's
// argv prefix. Always a list, never a shell string, so paths and ids
// containing special characters are passed through verbatim.
func (inv Invocation) Argv(cli []string) []string {
	argv := append([]string{}, cli...)
	argv = append(argv, inv.Op)
	if inv.Path != "" {
		argv = append(argv, "--path", inv.Path)
	}
	if inv.Provider != "" {
		argv = append(argv, "--provider", inv.Provider)
	}
	if inv.Method != "" {
		argv = append(argv, "--method", inv.Method)
	}
	if inv.SessionID != "" {
		argv = append(argv, "--session", inv.SessionID)
	}
	if inv.JSONOnly {
		argv = append(argv, "--json-only")
	}
	if inv.DryRun {
		argv = append(argv, "--dry-run")
	}
	if inv.NonInteractive {
		argv = append(argv, "--yes", "--non-interactive")
	}
	if inv.LogPath != "" {
		argv = append(argv, "--log", inv.LogPath)
	}
	if inv.RecordID != "" {
		argv = append(argv, "--id", inv.RecordID)
	}
	return argv
}
