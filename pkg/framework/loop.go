package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the loop interval when none is set.
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers stage by stage on every tick, and the
// registered Runnables in the background.
type Loop struct {
	Interval time.Duration

	controllers [stageCount][]Controller
	runners     []Runnable

	messages []Message
	lock     sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets LoopControl from a context passed to Runnables
// or controllers of the loop.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers in a stage.
func (l *Loop) AddController(stage Stage, ctls ...Controller) *Loop {
	l.controllers[stage] = append(l.controllers[stage], ctls...)
	return l
}

// AddRunnable adds Runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It returns when ctx is done or any
// Runnable of the loop stops.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	defer cancel()

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	stopped := runner.Stopped()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			runner.Wait()
			return ctx.Err()
		case <-stopped:
			if err := ctx.Err(); err != nil {
				runner.Wait()
				return err
			}
			cancel()
			return runner.Wait()
		case <-ticker.C:
			l.RunIteration(ctx)
		case <-l.wakeUpCh:
			l.RunIteration(ctx)
		}
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages = append(l.messages, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunIteration runs all stages once with the messages posted so far.
func (l *Loop) RunIteration(ctx context.Context) {
	iter := &iteration{Loop: l, ctx: ctx, time: time.Now()}
	l.lock.Lock()
	iter.messages, l.messages = l.messages, nil
	l.lock.Unlock()
	for stage := Stage(0); stage < stageCount; stage++ {
		iter.stage = stage
		for _, ctl := range l.controllers[stage] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error at stage %d: %v", stage, err)
			}
		}
	}
}

type iteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	stage    Stage
	messages []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) Stage() Stage             { return t.stage }
func (t *iteration) Messages() MessageStore   { return t }

func (t *iteration) ProcessMessages(fn func(Message) bool) {
	remains := t.messages[:0]
	for _, msg := range t.messages {
		if !fn(msg) {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(t.messages); i++ {
		t.messages[i] = nil
	}
	t.messages = remains
}
