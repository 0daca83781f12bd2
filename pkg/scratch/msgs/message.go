package msgs

import (
	"strings"
)

// Known verbs.
const (
	VerbBroadcast    = "broadcast"
	VerbSensorUpdate = "sensor-update"
)

// Message is a verb with its positional arguments.
type Message struct {
	Verb string
	Args []Arg
}

// SensorValue is one name/value pair of a sensor-update.
type SensorValue struct {
	Name  string
	Value Arg
}

// Broadcast creates a broadcast message.
func Broadcast(name string) *Message {
	return &Message{Verb: VerbBroadcast, Args: []Arg{String(name)}}
}

// SensorUpdate creates a sensor-update message carrying all values.
func SensorUpdate(values ...SensorValue) *Message {
	msg := &Message{Verb: VerbSensorUpdate, Args: make([]Arg, 0, len(values)*2)}
	for _, v := range values {
		msg.Args = append(msg.Args, String(v.Name), v.Value)
	}
	return msg
}

// Render produces the body text of a message.
func Render(verb string, args ...Arg) string {
	var sb strings.Builder
	sb.WriteString(verb)
	for _, arg := range args {
		sb.WriteByte(' ')
		sb.WriteString(arg.Token())
	}
	return sb.String()
}

// String renders the message body.
func (m *Message) String() string {
	return Render(m.Verb, m.Args...)
}

// Bytes renders the message body as bytes.
func (m *Message) Bytes() []byte {
	return []byte(m.String())
}

// BroadcastName returns the event name of a broadcast.
func (m *Message) BroadcastName() (string, error) {
	if m.Verb != VerbBroadcast {
		return "", malformed(m.Verb, "not a broadcast")
	}
	if len(m.Args) != 1 {
		return "", malformed(m.Verb, "expects exactly one argument, got %d", len(m.Args))
	}
	return m.Args[0].Str(), nil
}

// SensorValues returns the name/value pairs of a sensor-update.
func (m *Message) SensorValues() ([]SensorValue, error) {
	if m.Verb != VerbSensorUpdate {
		return nil, malformed(m.Verb, "not a sensor-update")
	}
	if len(m.Args) == 0 || len(m.Args)%2 != 0 {
		return nil, malformed(m.Verb, "expects name value pairs, got %d arguments", len(m.Args))
	}
	values := make([]SensorValue, 0, len(m.Args)/2)
	for i := 0; i < len(m.Args); i += 2 {
		name := m.Args[i]
		if name.Kind() != KindString {
			return nil, malformed(m.Verb, "sensor name %s is a %s", name.Token(), name.Kind())
		}
		values = append(values, SensorValue{Name: name.Str(), Value: m.Args[i+1]})
	}
	return values, nil
}

// checkShape validates the arguments of known verbs.
func (m *Message) checkShape() error {
	var err error
	switch m.Verb {
	case VerbBroadcast:
		_, err = m.BroadcastName()
	case VerbSensorUpdate:
		_, err = m.SensorValues()
	}
	return err
}

// IsKnownVerb reports whether the verb has a defined argument shape.
func IsKnownVerb(verb string) bool {
	return verb == VerbBroadcast || verb == VerbSensorUpdate
}
