package tui

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/go-go-golems/dipole/pkg/bus"
)

// RegisterUIForwarder routes invocation events from the bus into the
// bubbletea program as typed messages.
func RegisterUIForwarder(b *bus.Bus, p *tea.Program) {
	b.AddInvocationHandler("dipole-ui-forward", func(msg *message.Message) error {
		defer msg.Ack()

		var env bus.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return errors.Wrap(err, "unmarshal ui envelope")
		}

		switch env.Type {
		case bus.TypeInvocationStarted:
			var started bus.InvocationStarted
			if err := json.Unmarshal(env.Payload, &started); err != nil {
				return errors.Wrap(err, "unmarshal started payload")
			}
			p.Send(InvocationStartedMsg{Started: started})
		case bus.TypeLogBatch:
			var batch bus.LogBatch
			if err := json.Unmarshal(env.Payload, &batch); err != nil {
				return errors.Wrap(err, "unmarshal log batch payload")
			}
			p.Send(LogBatchMsg{Batch: batch})
		case bus.TypeProgress:
			var prog bus.Progress
			if err := json.Unmarshal(env.Payload, &prog); err != nil {
				return errors.Wrap(err, "unmarshal progress payload")
			}
			p.Send(ProgressMsg{Progress: prog})
		case bus.TypeInvocationEnded:
			var ended bus.InvocationEnded
			if err := json.Unmarshal(env.Payload, &ended); err != nil {
				return errors.Wrap(err, "unmarshal ended payload")
			}
			p.Send(InvocationEndedMsg{Ended: ended})
		}
		return nil
	})
}
