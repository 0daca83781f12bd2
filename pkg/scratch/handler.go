package scratch

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Handler receives the messages of the known verbs.
// Methods are called from the receive loop, one at a time.
type Handler interface {
	HandleBroadcast(ctx context.Context, name string)
	HandleSensorUpdate(ctx context.Context, values []msgs.SensorValue)
	// HandleMalformed is called when a message of a handled verb
	// doesn't parse. The receive loop continues afterwards.
	HandleMalformed(ctx context.Context, body []byte, err error)
}

// MessageHandler handles a parsed message of any verb.
type MessageHandler interface {
	HandleMessage(context.Context, *msgs.Message)
}

// HandleMessageFunc is func form of MessageHandler.
type HandleMessageFunc func(context.Context, *msgs.Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg *msgs.Message) {
	f(ctx, msg)
}

// LogHandler is the default Handler which writes events to the log.
type LogHandler struct{}

// HandleBroadcast implements Handler.
func (LogHandler) HandleBroadcast(ctx context.Context, name string) {
	glog.Infof("broadcast: %s", name)
}

// HandleSensorUpdate implements Handler.
func (LogHandler) HandleSensorUpdate(ctx context.Context, values []msgs.SensorValue) {
	for _, v := range values {
		glog.Infof("sensor-update: %s = %s", v.Name, v.Value)
	}
}

// HandleMalformed implements Handler.
func (LogHandler) HandleMalformed(ctx context.Context, body []byte, err error) {
	glog.Warningf("%v: %q", err, body)
}

// HandlerFuncs adapts optional funcs to Handler; nil funcs fall back
// to LogHandler.
type HandlerFuncs struct {
	Broadcast    func(ctx context.Context, name string)
	SensorUpdate func(ctx context.Context, values []msgs.SensorValue)
	Malformed    func(ctx context.Context, body []byte, err error)
}

// HandleBroadcast implements Handler.
func (h *HandlerFuncs) HandleBroadcast(ctx context.Context, name string) {
	if fn := h.Broadcast; fn != nil {
		fn(ctx, name)
		return
	}
	LogHandler{}.HandleBroadcast(ctx, name)
}

// HandleSensorUpdate implements Handler.
func (h *HandlerFuncs) HandleSensorUpdate(ctx context.Context, values []msgs.SensorValue) {
	if fn := h.SensorUpdate; fn != nil {
		fn(ctx, values)
		return
	}
	LogHandler{}.HandleSensorUpdate(ctx, values)
}

// HandleMalformed implements Handler.
func (h *HandlerFuncs) HandleMalformed(ctx context.Context, body []byte, err error) {
	if fn := h.Malformed; fn != nil {
		fn(ctx, body, err)
		return
	}
	LogHandler{}.HandleMalformed(ctx, body, err)
}
