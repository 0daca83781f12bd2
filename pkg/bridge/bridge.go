// Package bridge connects a NanoBoard to Scratch: board readings are
// reported as sensor updates and Scratch messages drive the motor.
package bridge

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/nanoboard/pkg/framework"
	"github.com/robotalks/nanoboard/pkg/nanoboard"
	"github.com/robotalks/nanoboard/pkg/scratch"
	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Bridge polls the board in the sense stage, applies Scratch messages
// in the control stage and reports changes in the report stage.
type Bridge struct {
	Board  *nanoboard.Board
	Client *scratch.Client
	// Publisher is optional.
	Publisher *Publisher
	// Interval overrides the loop interval when positive.
	Interval time.Duration

	closers  []io.Closer
	polled   bool
	pollErr  error
	reported changeTracker
}

type broadcastMsg struct {
	name string
}

type sensorUpdateMsg struct {
	values []msgs.SensorValue
}

// New creates a Bridge.
func New(board *nanoboard.Board, client *scratch.Client) *Bridge {
	return &Bridge{
		Board:    board,
		Client:   client,
		reported: make(changeTracker),
	}
}

// WithPublisher sets the Publisher.
func (b *Bridge) WithPublisher(p *Publisher) *Bridge {
	b.Publisher = p
	return b
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	if b.Interval > 0 {
		loop.Interval = b.Interval
	}
	loop.AddRunnable(fx.NamedRun("scratch", b))
	loop.AddController(fx.StageSense, fx.ControlFunc(b.sense))
	loop.AddController(fx.StageControl, fx.ControlFunc(b.control))
	loop.AddController(fx.StageReport, fx.ControlFunc(b.report))
}

// Run implements Runnable. It runs the Scratch receive loop and
// posts the received messages to the loop.
func (b *Bridge) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	post := func(msg fx.Message) {
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
	}
	b.Client.WithHandler(&scratch.HandlerFuncs{
		Broadcast: func(_ context.Context, name string) {
			post(&broadcastMsg{name: name})
		},
		SensorUpdate: func(_ context.Context, values []msgs.SensorValue) {
			post(&sensorUpdateMsg{values: values})
		},
	})
	return b.Client.Run(ctx)
}

// Close closes the Scratch connection, the board and anything added
// with AddCloser.
func (b *Bridge) Close() error {
	errs := &fx.AggregatedError{}
	errs.Add(b.Client.Close(), b.Board.Close())
	for _, c := range b.closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}

// AddCloser registers a resource closed with the bridge.
func (b *Bridge) AddCloser(c io.Closer) *Bridge {
	b.closers = append(b.closers, c)
	return b
}

func (b *Bridge) sense(cc fx.ControlContext) error {
	err := b.Board.Update()
	switch {
	case err == nil && b.pollErr != nil:
		glog.Info("board responding again")
	case err != nil && b.pollErr == nil:
		glog.Warningf("board poll failed: %v", err)
	}
	b.pollErr = err
	if err == nil {
		b.polled = true
	}
	return nil
}

func (b *Bridge) control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(func(m fx.Message) bool {
		switch msg := m.(type) {
		case *broadcastMsg:
			b.handleBroadcast(msg.name)
			return true
		case *sensorUpdateMsg:
			for _, v := range msg.values {
				b.handleSensor(v)
			}
			return true
		}
		return false
	})
	return nil
}

func (b *Bridge) handleBroadcast(name string) {
	if b.Publisher != nil {
		if err := b.Publisher.PublishBroadcast(name); err != nil {
			glog.Warning(err)
		}
	}
	var err error
	switch strings.ToLower(name) {
	case BroadcastMotorOn:
		err = b.Board.MotorOn()
	case BroadcastMotorOff:
		err = b.Board.MotorOff()
	case BroadcastMotorReverse:
		err = b.Board.MotorDirection(nanoboard.DirectionToggle)
	default:
		glog.V(2).Infof("broadcast %q ignored", name)
		return
	}
	b.logMotorErr(name, err)
}

func (b *Bridge) handleSensor(v msgs.SensorValue) {
	name := strings.ToLower(v.Name)
	if name != SensorMotorSpeed && name != SensorMotorDirection {
		glog.V(2).Infof("sensor %q ignored", v.Name)
		return
	}
	n, ok := v.Value.Num()
	if !ok {
		glog.Warningf("sensor %s: number expected, got %s", v.Name, v.Value)
		return
	}
	var err error
	if name == SensorMotorSpeed {
		err = b.Board.MotorSpeed(n)
	} else {
		err = b.Board.MotorDirection(nanoboard.Direction(n))
	}
	b.logMotorErr(v.Name, err)
}

func (b *Bridge) logMotorErr(what string, err error) {
	switch {
	case err == nanoboard.ErrNoMotor:
		glog.V(1).Infof("%s: %v", what, err)
	case err != nil:
		glog.Warningf("%s: %v", what, err)
	}
}

func (b *Bridge) report(cc fx.ControlContext) error {
	if !b.polled {
		return nil
	}
	values := SensorValues(b.Board.Reading())
	changed := b.reported.changed(values)
	if len(changed) == 0 {
		return nil
	}
	if err := b.Client.UpdateSensors(changed...); err != nil {
		return err
	}
	b.reported.commit(changed)
	if b.Publisher != nil {
		return b.Publisher.PublishReading(values)
	}
	return nil
}
