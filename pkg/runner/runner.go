package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type EventKind string

const (
	EventLine  EventKind = "line"
	EventEnd   EventKind = "end"
	EventError EventKind = "error"
)

// Event is one element of an invocation's output stream. A run produces
// zero or more line events followed by exactly one end or error event;
// nothing is emitted after the terminal event.
type Event struct {
	Kind EventKind

	// Line carries the output line (without trailing newline) for
	// EventLine events.
	Line string

	// ExitCode and FullText are set on EventEnd. FullText is the full
	// concatenation of everything read, not just a suffix.
	ExitCode int
	FullText string

	// Err is the human-readable failure message on EventError.
	Err string
}

type Options struct {
	// WorkDir is the working directory for spawned commands. Defaults to
	// the process working directory.
	WorkDir string

	// Env entries are merged over the inherited environment. Values are
	// passed through verbatim; the runner never interprets them.
	Env map[string]string

	ShutdownTimeout time.Duration
}

// Runner spawns an external command with stderr merged into stdout so log
// ordering reflects the interleaving the tool emitted. It performs no
// retries and defines no internal timeout; callers wanting a deadline
// cancel the context.
type Runner struct {
	opts Options
}

func New(opts Options) *Runner {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 3 * time.Second
	}
	return &Runner{opts: opts}
}

// Run launches argv (no shell interpretation) and returns the event
// channel for this invocation. The channel is closed after the terminal
// event. Spawn failures surface as an error event, not a Go error, so
// callers consume a single stream either way.
func (r *Runner) Run(ctx context.Context, argv []string) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		r.run(ctx, argv, out)
	}()
	return out
}

func (r *Runner) run(ctx context.Context, argv []string, out chan<- Event) {
	if len(argv) == 0 {
		out <- Event{Kind: EventError, Err: "empty command"}
		return
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		out <- Event{Kind: EventError, Err: errors.Wrap(err, "open output pipe").Error()}
		return
	}

	// #nosec G204 -- argv is built from structured invocation fields.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.opts.WorkDir
	cmd.Env = mergeEnv(os.Environ(), r.opts.Env)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		out <- Event{Kind: EventError, Err: errors.Wrap(err, "start command").Error()}
		return
	}
	// The child holds its own copy of the write end; closing ours makes
	// the read loop see EOF when the child exits.
	_ = pw.Close()

	log.Debug().Strs("argv", argv).Int("pid", cmd.Process.Pid).Msg("command started")

	var full strings.Builder
	br := bufio.NewReader(pr)
	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			full.WriteString(line)
			out <- Event{Kind: EventLine, Line: strings.TrimRight(line, "\r\n")}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			_ = pr.Close()
			terminateGroup(cmd, r.opts.ShutdownTimeout)
			out <- Event{Kind: EventError, Err: errors.Wrap(readErr, "read output").Error()}
			return
		}
	}
	_ = pr.Close()

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			out <- Event{Kind: EventError, Err: errors.Wrap(err, "wait command").Error()}
			return
		}
	}

	out <- Event{Kind: EventEnd, ExitCode: exitCode, FullText: full.String()}
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := append([]string{}, base...)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}

func terminateGroup(cmd *exec.Cmd, timeout time.Duration) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		if err == nil {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		} else {
			_ = syscall.Kill(pid, syscall.SIGKILL)
		}
		<-done
	}
}
