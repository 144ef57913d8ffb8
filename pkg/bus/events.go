package bus

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"

	"github.com/go-go-golems/dipole/pkg/progress"
)

// TopicInvocationEvents carries everything the bridge observes about one
// running invocation.
const TopicInvocationEvents = "dipole.invocation.events"

const (
	TypeInvocationStarted = "invocation.started"
	TypeLogBatch          = "invocation.log_batch"
	TypeProgress          = "invocation.progress"
	TypeInvocationEnded   = "invocation.ended"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(typ string, payload any) (Envelope, error) {
	if typ == "" {
		return Envelope{}, errors.New("empty envelope type")
	}
	if payload == nil {
		return Envelope{Type: typ}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "marshal envelope payload")
	}
	return Envelope{Type: typ, Payload: b}, nil
}

func (e Envelope) MarshalJSONBytes() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "marshal envelope")
	}
	return b, nil
}

type InvocationStarted struct {
	Op        string    `json:"op"`
	SessionID string    `json:"session_id,omitempty"`
	Argv      []string  `json:"argv"`
	At        time.Time `json:"at"`
}

// LogBatch is a display refresh, not the buffer: it carries the lines
// accumulated since the previous batch and the running total.
type LogBatch struct {
	Op    string    `json:"op"`
	Lines []string  `json:"lines"`
	Total int       `json:"total"`
	At    time.Time `json:"at"`
}

type Progress struct {
	State progress.State `json:"state"`
	At    time.Time      `json:"at"`
}

type InvocationEnded struct {
	Op       string          `json:"op"`
	ExitCode int             `json:"exit_code"`
	Ok       bool            `json:"ok"`
	Error    string          `json:"error,omitempty"`
	Record   json.RawMessage `json:"record,omitempty"`
	At       time.Time       `json:"at"`
}

// Publish wraps a payload in an envelope and sends it on the invocation
// topic. A nil publisher is a no-op so headless callers skip the bus
// entirely.
func Publish(pub message.Publisher, typ string, payload any) error {
	if pub == nil {
		return nil
	}
	env, err := NewEnvelope(typ, payload)
	if err != nil {
		return err
	}
	b, err := env.MarshalJSONBytes()
	if err != nil {
		return err
	}
	return pub.Publish(TopicInvocationEvents, message.NewMessage(watermill.NewUUID(), b))
}
