package progress

import "sync"

// Steps of the deployment flow, matching the UI stepper.
const (
	StepNone    = 0
	StepPlan    = 1
	StepDeploy  = 2
	StepVerify  = 3
	StepPreview = 4
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// State is the full tracker state: the pair (step, status).
type State struct {
	Step   int    `json:"step"`
	Status Status `json:"status"`
}

// Terminal reports whether the state ends an invocation's display flow.
func (s State) Terminal() bool {
	if s.Status == StatusFailed {
		return true
	}
	return s.Status == StatusCompleted && s.Step >= StepVerify
}

// StepName returns the display name for a step.
func StepName(step int) string {
	switch step {
	case StepPlan:
		return "Plan"
	case StepDeploy:
		return "Deploy"
	case StepVerify:
		return "Verify"
	case StepPreview:
		return "Preview"
	default:
		return "Idle"
	}
}

// Tracker records which deployment phase is active or completed. It is
// purely observational: transitions are driven by the operation call
// sites, never by the tracker itself, and nothing branches on its state.
//
// Within one invocation the step only increases and the status only
// advances forward. Begin starts a new invocation: it clears a previous
// invocation's terminal state first, so a second deploy never shows a
// stale "completed" badge.
type Tracker struct {
	mu  sync.Mutex
	cur State
}

func NewTracker() *Tracker {
	return &Tracker{cur: State{Step: StepNone, Status: StatusIdle}}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// Begin marks the start of a new invocation at the given step.
func (t *Tracker) Begin(step int) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Terminal() {
		t.cur = State{Step: StepNone, Status: StatusIdle}
	}
	if step > t.cur.Step {
		t.cur = State{Step: step, Status: StatusActive}
	} else if step == t.cur.Step && t.cur.Status == StatusIdle {
		t.cur.Status = StatusActive
	}
	return t.cur
}

// Advance moves the tracker forward. Transitions that would regress the
// step, or rewind the status within a step, are ignored.
func (t *Tracker) Advance(step int, status Status) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Status == StatusFailed {
		return t.cur
	}
	if step < t.cur.Step {
		return t.cur
	}
	if step == t.cur.Step && statusRank(status) <= statusRank(t.cur.Status) {
		return t.cur
	}
	// No transition skips straight from idle to completed.
	if status == StatusCompleted && t.cur.Status == StatusIdle {
		t.cur = State{Step: step, Status: StatusActive}
		return t.cur
	}
	t.cur = State{Step: step, Status: status}
	return t.cur
}

// Fail marks the current step failed. Failed is terminal for the
// invocation's display purposes.
func (t *Tracker) Fail() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.Step == StepNone {
		t.cur.Step = StepPlan
	}
	t.cur.Status = StatusFailed
	return t.cur
}

func statusRank(s Status) int {
	switch s {
	case StatusIdle:
		return 0
	case StatusActive:
		return 1
	case StatusCompleted:
		return 2
	case StatusFailed:
		return 3
	default:
		return 0
	}
}
