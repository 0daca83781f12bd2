package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything posted into the loop.
type Message interface{}

// Controller runs once per loop iteration in its stage.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// Stage orders controllers inside one iteration.
type Stage int

// Stages, executed in order.
const (
	// StageSense reads devices.
	StageSense Stage = iota
	// StageControl consumes messages and decides actions.
	StageControl
	// StageReport publishes the results of the iteration.
	StageReport

	stageCount
)

// ControlContext provides the context of current control iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// Stage gets the current stage.
	Stage() Stage
	// Messages retrieves messages collected when this iteration starts.
	Messages() MessageStore

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration immediately.
	TriggerNext()
}

// MessageStore provides access to the messages of an iteration.
type MessageStore interface {
	// ProcessMessages calls fn on each message; a message for which
	// fn returns true is taken and not seen by later controllers.
	ProcessMessages(fn func(Message) bool)
}
