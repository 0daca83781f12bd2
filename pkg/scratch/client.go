// Package scratch implements a client of the Scratch remote sensor
// protocol: it sends broadcasts and sensor updates, and dispatches
// the messages received from the peer.
package scratch

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/nanoboard/pkg/comm"
	fx "github.com/robotalks/nanoboard/pkg/framework"
	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Client sends messages and runs the receive loop over one connection.
//
// Sending and receiving are independent: senders only share the send
// lock among themselves, and the receive loop owns the read side of
// the connection exclusively.
type Client struct {
	ReadWriter comm.PacketReadWriter
	Handler    Handler

	handlers map[string]MessageHandler
	sendLock sync.Mutex
	closed   int32
	doneCh   chan struct{}
	err      error
}

// NewClient creates a client on a connected transport.
func NewClient(rw comm.PacketReadWriter) *Client {
	c := &Client{
		ReadWriter: rw,
		Handler:    LogHandler{},
		doneCh:     make(chan struct{}),
	}
	c.handlers = map[string]MessageHandler{
		msgs.VerbBroadcast:    HandleMessageFunc(c.handleBroadcast),
		msgs.VerbSensorUpdate: HandleMessageFunc(c.handleSensorUpdate),
	}
	return c
}

// WithHandler sets Handler.
func (c *Client) WithHandler(h Handler) *Client {
	c.Handler = h
	return c
}

// Handle registers a handler for an extra verb. It must be called
// before Run.
func (c *Client) Handle(verb string, h MessageHandler) *Client {
	c.handlers[verb] = h
	return c
}

// Send renders and sends a message.
func (c *Client) Send(msg *msgs.Message) error {
	if c.IsClosed() {
		return &ConnectionError{Op: "send", Err: ErrConnectionClosed}
	}
	body := msg.Bytes()
	c.sendLock.Lock()
	err := c.ReadWriter.WritePacket(body)
	c.sendLock.Unlock()
	if err != nil {
		return &ConnectionError{Op: "send", Err: err}
	}
	glog.V(3).Infof("SND %s", body)
	return nil
}

// Broadcast sends a broadcast of the event name.
func (c *Client) Broadcast(name string) error {
	return c.Send(msgs.Broadcast(name))
}

// UpdateSensor sends the value of a single sensor.
func (c *Client) UpdateSensor(name string, value msgs.Arg) error {
	return c.Send(msgs.SensorUpdate(msgs.SensorValue{Name: name, Value: value}))
}

// UpdateSensors sends multiple sensor values in one message.
func (c *Client) UpdateSensors(values ...msgs.SensorValue) error {
	if len(values) == 0 {
		return nil
	}
	return c.Send(msgs.SensorUpdate(values...))
}

// Run implements Runnable. It runs the receive loop until the
// connection is closed, a read fails or ctx is done, and closes the
// connection before returning. Except for cancellation the error
// satisfies errors.Is(err, ErrConnectionClosed).
func (c *Client) Run(ctx context.Context) error {
	err := fx.RunWithContextCloser(ctx, c, func() error {
		return c.receive(ctx)
	})
	c.err = err
	close(c.doneCh)
	return err
}

// Done is closed when Run returns.
func (c *Client) Done() <-chan struct{} {
	return c.doneCh
}

// Err returns the result of Run after Done is closed.
func (c *Client) Err() error {
	<-c.doneCh
	return c.err
}

// IsClosed reports whether Close was called.
func (c *Client) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

// Close marks the client closed and closes the connection. The
// receive loop stops at its next read.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if closer, ok := c.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) receive(ctx context.Context) error {
	for {
		pkt, err := c.ReadWriter.ReadPacket()
		if err != nil {
			if c.IsClosed() {
				return &ClosedError{}
			}
			if os.IsTimeout(err) {
				continue
			}
			glog.V(2).Infof("receive stopped: %v", err)
			return &ClosedError{Err: err}
		}
		c.dispatch(ctx, pkt)
	}
}

func (c *Client) dispatch(ctx context.Context, pkt []byte) {
	msg, err := msgs.Parse(pkt)
	if msg == nil {
		glog.V(2).Infof("ignore message %q: %v", pkt, err)
		return
	}
	h := c.handlers[msg.Verb]
	if h == nil {
		glog.V(2).Infof("ignore verb %q", msg.Verb)
		return
	}
	glog.V(3).Infof("RCV %s", pkt)
	if err != nil {
		c.handler().HandleMalformed(ctx, pkt, err)
		return
	}
	h.HandleMessage(ctx, msg)
}

func (c *Client) handler() Handler {
	if h := c.Handler; h != nil {
		return h
	}
	return LogHandler{}
}

func (c *Client) handleBroadcast(ctx context.Context, msg *msgs.Message) {
	name, _ := msg.BroadcastName()
	c.handler().HandleBroadcast(ctx, name)
}

func (c *Client) handleSensorUpdate(ctx context.Context, msg *msgs.Message) {
	values, _ := msg.SensorValues()
	c.handler().HandleSensorUpdate(ctx, values)
}
