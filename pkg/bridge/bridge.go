package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/dipole/pkg/bus"
	"github.com/go-go-golems/dipole/pkg/extract"
	"github.com/go-go-golems/dipole/pkg/history"
	"github.com/go-go-golems/dipole/pkg/logscript"
	"github.com/go-go-golems/dipole/pkg/progress"
	"github.com/go-go-golems/dipole/pkg/runner"
	"github.com/go-go-golems/dipole/pkg/session"
)

// Options configures a Bridge for one session.
type Options struct {
	// CLI is the argv prefix of the external deployment tool, e.g.
	// ["dipole-cli"] or ["python", "-m", "dipole"]. Operation verbs and
	// flags are appended to it.
	CLI []string

	// ProjectRoot is both the working directory for spawned commands and
	// the root under which the tool keeps its state directory.
	ProjectRoot string

	// Env entries are merged over the inherited environment for every
	// spawned command.
	Env map[string]string

	// LineBatch is how many streamed lines accumulate before a log_batch
	// event is published. Display cadence only; the session buffer gets
	// every line immediately. Defaults to 5.
	LineBatch int

	// HistoryPath overrides the deployments history file location.
	// Defaults to <ProjectRoot>/state/deployments.json.
	HistoryPath string

	// TailLineCount bounds how many trailing log lines TailLogs returns.
	// Defaults to 200.
	TailLineCount int

	ShutdownTimeout time.Duration

	// Annotator optionally classifies streamed deploy lines for display.
	Annotator *logscript.Module
}

// Bridge exposes the deployment tool's operations to a conversational
// caller. Operations are invoked one at a time per session; the bridge
// serializes nothing itself beyond what the underlying stores guard.
type Bridge struct {
	opts    Options
	runner  *runner.Runner
	sess    *session.Store
	tracker *progress.Tracker
	pub     message.Publisher
}

// New builds a bridge around an existing session store. pub may be nil
// for headless use; events are then dropped.
func New(opts Options, sess *session.Store, pub message.Publisher) *Bridge {
	if opts.LineBatch <= 0 {
		opts.LineBatch = 5
	}
	if opts.TailLineCount <= 0 {
		opts.TailLineCount = 200
	}
	if opts.HistoryPath == "" {
		opts.HistoryPath = history.Path(opts.ProjectRoot)
	}
	return &Bridge{
		opts: opts,
		runner: runner.New(runner.Options{
			WorkDir:         opts.ProjectRoot,
			Env:             opts.Env,
			ShutdownTimeout: opts.ShutdownTimeout,
		}),
		sess:    sess,
		tracker: progress.NewTracker(),
		pub:     pub,
	}
}

func (b *Bridge) Session() *session.Store  { return b.sess }
func (b *Bridge) Progress() progress.State { return b.tracker.State() }

// PlanArgs are the inputs to a plan invocation. Provider and Method fall
// back to session preferences when empty; explicit values win.
type PlanArgs struct {
	Path      string
	Provider  string
	Method    string
	SessionID string
}

// Plan runs the tool's planning step and returns the plan as a string.
// When the output carries a JSON plan it is returned compact; otherwise
// the raw output is returned as-is.
func (b *Bridge) Plan(ctx context.Context, args PlanArgs) (string, error) {
	if strings.TrimSpace(args.Path) == "" {
		return "", errors.New("project path is required")
	}

	b.setProgress(b.tracker.Begin(progress.StepPlan))

	prefs := b.sess.Prefs()
	inv := Invocation{
		Op:        "plan",
		Path:      args.Path,
		Provider:  firstNonEmpty(args.Provider, prefs.Provider),
		Method:    firstNonEmpty(args.Method, prefs.Method),
		SessionID: firstNonEmpty(args.SessionID, b.sess.SessionID()),
		JSONOnly:  true,
	}

	res := b.stream(ctx, inv)
	if res.errMsg != "" {
		b.setProgress(b.tracker.Fail())
		b.publishEnded(inv.Op, res.exitCode, res.errMsg, nil)
		return "", errors.New(res.errMsg)
	}

	// Completion follows the parse, not the exit code: a plan that came
	// back readable is a finished plan step even when the tool grumbled.
	out, parsed := planOutput(res.fullText)
	if parsed {
		b.setProgress(b.tracker.Advance(progress.StepPlan, progress.StatusCompleted))
	}
	b.publishEnded(inv.Op, res.exitCode, "", nil)
	if res.exitCode != 0 {
		log.Warn().Int("exit_code", res.exitCode).Bool("parsed", parsed).Msg("plan finished with non-zero exit")
	}
	return out, nil
}

// planOutput prefers a parsed JSON plan, compacted, over raw text. The
// tool is asked for --json-only but still emits the occasional banner.
// The second return reports whether a plan actually parsed.
func planOutput(full string) (string, bool) {
	trimmed := strings.TrimSpace(full)
	if json.Valid([]byte(trimmed)) && trimmed != "" {
		var compact bytes.Buffer
		if json.Compact(&compact, []byte(trimmed)) == nil {
			return compact.String(), true
		}
		return trimmed, true
	}
	if rec, ok := extract.LastJSONObject(full); ok {
		return rec.JSON(), true
	}
	return trimmed, false
}

// DeployArgs are the inputs to a deploy invocation.
type DeployArgs struct {
	Path      string
	SessionID string
	DryRun    bool

	// AssumeYes makes the tool skip its own confirmation prompts. Callers
	// driving a non-interactive surface always set it.
	AssumeYes bool
}

// Deploy runs a deployment, streaming output into the session log buffer
// and publishing batched display updates. It always returns a record:
// either the one the tool printed as its trailing JSON line, or a
// synthetic error record when extraction missed.
func (b *Bridge) Deploy(ctx context.Context, args DeployArgs) (extract.Record, error) {
	if strings.TrimSpace(args.Path) == "" {
		return nil, errors.New("project path is required")
	}

	b.setProgress(b.tracker.Begin(progress.StepDeploy))

	prefs := b.sess.Prefs()
	inv := Invocation{
		Op:             "deploy",
		Path:           args.Path,
		Provider:       prefs.Provider,
		Method:         prefs.Method,
		SessionID:      firstNonEmpty(args.SessionID, b.sess.SessionID()),
		DryRun:         args.DryRun,
		NonInteractive: args.AssumeYes,
	}

	res := b.stream(ctx, inv)
	if res.errMsg != "" {
		b.setProgress(b.tracker.Fail())
		b.publishEnded(inv.Op, res.exitCode, res.errMsg, nil)
		return nil, errors.New(res.errMsg)
	}

	b.setProgress(b.tracker.Advance(progress.StepVerify, progress.StatusActive))

	// Extraction, URL caching and phase completion do not branch on the
	// exit code: the tracker mirrors how far the flow got, while success
	// or failure lives in the returned record and the ended event's Ok.
	rec, ok := extract.LastJSONObject(res.fullText)
	if !ok {
		rec = extract.Record{
			"type":    "Error",
			"message": "Deploy finished but no JSON record captured.",
		}
	}

	if u := rec.URL(); u != "" {
		b.sess.SetPreviewURL(session.NormalizeURL(u))
		b.setProgress(b.tracker.Advance(progress.StepPreview, progress.StatusCompleted))
	} else {
		b.setProgress(b.tracker.Advance(progress.StepVerify, progress.StatusCompleted))
	}

	b.publishEnded(inv.Op, res.exitCode, "", rec)
	if res.exitCode != 0 {
		log.Warn().Int("exit_code", res.exitCode).Str("record_type", rec.Type()).Msg("deploy finished with non-zero exit")
	} else {
		log.Info().Str("record_type", rec.Type()).Str("url", rec.URL()).Msg("deploy finished")
	}
	return rec, nil
}

// DiagnoseArgs name either a log file or a past deployment record to
// analyze. At least one of LogPath and RecordID must be set.
type DiagnoseArgs struct {
	Path     string
	LogPath  string
	RecordID string
}

// Diagnose asks the tool to analyze a failed deployment's logs. Missing
// inputs fail before anything is spawned.
func (b *Bridge) Diagnose(ctx context.Context, args DiagnoseArgs) (string, error) {
	if args.LogPath == "" && args.RecordID == "" {
		return "", errors.New("provide a log path or a deployment record id")
	}

	inv := Invocation{
		Op:       "diagnose",
		Path:     args.Path,
		JSONOnly: true,
		LogPath:  args.LogPath,
		RecordID: args.RecordID,
	}

	res := b.stream(ctx, inv)
	if res.errMsg != "" {
		b.publishEnded(inv.Op, res.exitCode, res.errMsg, nil)
		return "", errors.New(res.errMsg)
	}
	b.publishEnded(inv.Op, res.exitCode, "", nil)
	if res.exitCode != 0 {
		return strings.TrimSpace(res.fullText), errors.Errorf("diagnose exited with code %d", res.exitCode)
	}
	out, _ := planOutput(res.fullText)
	return out, nil
}

// TailLogs reads the trailing lines of a past deployment's log file via
// the tool's persisted history. Lookup misses are answers, not errors:
// the caller relays them to the user verbatim.
func (b *Bridge) TailLogs(recordID string) (string, error) {
	if strings.TrimSpace(recordID) == "" {
		return "", errors.New("deployment record id is required")
	}

	records, err := history.Load(b.opts.HistoryPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "No deployments.json found.", nil
		}
		return "", err
	}

	rec, ok := history.FindLatest(records, recordID)
	if !ok {
		return fmt.Sprintf("No record found for id %s.", recordID), nil
	}
	if rec.LogsPath == "" {
		return fmt.Sprintf("No log file recorded for id %s.", recordID), nil
	}

	lines, err := history.TailLines(rec.LogsPath, b.opts.TailLineCount, 0)
	if err != nil {
		return fmt.Sprintf("No logs found at %s.", rec.LogsPath), nil
	}
	return strings.Join(lines, "\n"), nil
}

// ModifyPreferences merges a partial preference set into the session and
// returns the full resulting set.
func (b *Bridge) ModifyPreferences(partial session.Prefs) session.Prefs {
	merged := b.sess.Merge(partial)
	log.Debug().Interface("prefs", merged).Msg("session preferences updated")
	return merged
}

// ShowPreview normalizes a preview URL, caches it on the session and
// returns the normalized form.
func (b *Bridge) ShowPreview(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", errors.New("url is required")
	}
	u := session.NormalizeURL(rawURL)
	b.sess.SetPreviewURL(u)
	return u, nil
}

type streamResult struct {
	fullText string
	exitCode int
	errMsg   string
}

// stream runs one invocation to completion: resets the session log,
// publishes a started event, forwards every line into the buffer and
// batches display updates. Exactly one of errMsg or fullText is the
// meaningful output.
func (b *Bridge) stream(ctx context.Context, inv Invocation) streamResult {
	argv := inv.Argv(b.opts.CLI)
	b.sess.ResetLog()

	log.Info().Str("op", inv.Op).Strs("argv", argv).Msg("invocation started")
	b.publish(bus.TypeInvocationStarted, bus.InvocationStarted{
		Op:        inv.Op,
		SessionID: inv.SessionID,
		Argv:      argv,
		At:        time.Now(),
	})

	var res streamResult
	var batch []string
	total := 0
	lineNo := int64(0)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.publish(bus.TypeLogBatch, bus.LogBatch{
			Op:    inv.Op,
			Lines: batch,
			Total: total,
			At:    time.Now(),
		})
		batch = nil
	}

	for ev := range b.runner.Run(ctx, argv) {
		switch ev.Kind {
		case runner.EventLine:
			lineNo++
			b.sess.AppendLog(ev.Line)
			total++
			batch = append(batch, b.displayLine(inv.Op, ev.Line, lineNo))
			if len(batch) >= b.opts.LineBatch {
				flush()
			}
		case runner.EventEnd:
			flush()
			res.fullText = ev.FullText
			res.exitCode = ev.ExitCode
		case runner.EventError:
			flush()
			res.errMsg = ev.Err
		}
	}
	return res
}

// displayLine runs the optional annotator over deploy output. The session
// buffer always keeps the raw line; only the published display copy is
// rewritten.
func (b *Bridge) displayLine(op, line string, lineNo int64) string {
	if b.opts.Annotator == nil || op != "deploy" {
		return line
	}
	ann, err := b.opts.Annotator.Annotate(line, lineNo)
	if err != nil {
		log.Debug().Err(err).Int64("line", lineNo).Msg("annotator hook failed")
		return line
	}
	if ann == nil {
		return line
	}
	if ann.Level != "" && ann.Level != "INFO" {
		return "[" + ann.Level + "] " + ann.Message
	}
	return ann.Message
}

func (b *Bridge) setProgress(st progress.State) {
	b.publish(bus.TypeProgress, bus.Progress{State: st, At: time.Now()})
}

func (b *Bridge) publishEnded(op string, exitCode int, errMsg string, rec extract.Record) {
	ended := bus.InvocationEnded{
		Op:       op,
		ExitCode: exitCode,
		Ok:       exitCode == 0 && errMsg == "",
		Error:    errMsg,
		At:       time.Now(),
	}
	if rec != nil {
		ended.Record = json.RawMessage(rec.JSON())
	}
	b.publish(bus.TypeInvocationEnded, ended)
}

func (b *Bridge) publish(typ string, payload any) {
	if err := bus.Publish(b.pub, typ, payload); err != nil {
		log.Debug().Err(err).Str("type", typ).Msg("event publish failed")
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
