package tui

import (
	"github.com/go-go-golems/dipole/pkg/bus"
)

// Messages delivered to the bubbletea program by the bus forwarder.

type InvocationStartedMsg struct {
	Started bus.InvocationStarted
}

type LogBatchMsg struct {
	Batch bus.LogBatch
}

type ProgressMsg struct {
	Progress bus.Progress
}

type InvocationEndedMsg struct {
	Ended bus.InvocationEnded
}
