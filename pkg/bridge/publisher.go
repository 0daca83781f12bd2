package bridge

import (
	"fmt"
	"sort"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"

	"github.com/robotalks/nanoboard/pkg/scratch/msgs"
)

// Topics relative to the queue prefix, formatted with the bridge id.
const (
	TopicReading   = "nanoboard/%s/reading"
	TopicBroadcast = "nanoboard/%s/broadcast"
)

// DefaultPublishTimeout bounds waiting for a publish to complete.
const DefaultPublishTimeout = 5 * time.Second

// Pubber publishes a payload, implemented by mqtt.Queue.
type Pubber interface {
	Pub(topic string, payload []byte) paho.Token
}

// Publisher publishes readings and broadcasts as protobuf Struct.
type Publisher struct {
	Pubber  Pubber
	ID      string
	Timeout time.Duration
}

// NewPublisher creates a Publisher.
func NewPublisher(pubber Pubber, id string) *Publisher {
	return &Publisher{Pubber: pubber, ID: id, Timeout: DefaultPublishTimeout}
}

// ReadingTopic is the topic of readings.
func (p *Publisher) ReadingTopic() string {
	return fmt.Sprintf(TopicReading, p.ID)
}

// BroadcastTopic is the topic of broadcasts received from Scratch.
func (p *Publisher) BroadcastTopic() string {
	return fmt.Sprintf(TopicBroadcast, p.ID)
}

// PublishReading publishes the sensor values.
func (p *Publisher) PublishReading(values []msgs.SensorValue) error {
	return p.publish(p.ReadingTopic(), StructFromValues(values))
}

// PublishBroadcast publishes a broadcast name as {"name": name}.
func (p *Publisher) PublishBroadcast(name string) error {
	return p.publish(p.BroadcastTopic(), &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"name": {Kind: &structpb.Value_StringValue{StringValue: name}},
		},
	})
}

func (p *Publisher) publish(topic string, s *structpb.Struct) error {
	payload, err := proto.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "encode %s", topic)
	}
	token := p.Pubber.Pub(topic, payload)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return errors.Errorf("publish %s timeout", topic)
	}
	return errors.Wrapf(token.Error(), "publish %s", topic)
}

// StructFromValues converts sensor values to a protobuf Struct.
func StructFromValues(values []msgs.SensorValue) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(values))}
	for _, v := range values {
		s.Fields[v.Name] = valueFromArg(v.Value)
	}
	return s
}

// ValuesFromStruct is the inverse of StructFromValues. The values are
// sorted by name.
func ValuesFromStruct(s *structpb.Struct) []msgs.SensorValue {
	values := make([]msgs.SensorValue, 0, len(s.GetFields()))
	for name, val := range s.GetFields() {
		values = append(values, msgs.SensorValue{Name: name, Value: argFromValue(val)})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	return values
}

func valueFromArg(a msgs.Arg) *structpb.Value {
	switch a.Kind() {
	case msgs.KindNumber:
		n, _ := a.Num()
		return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
	case msgs.KindBoolean:
		b, _ := a.Bool()
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: b}}
	default:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: a.Str()}}
	}
}

func argFromValue(v *structpb.Value) msgs.Arg {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return msgs.Number(k.NumberValue)
	case *structpb.Value_BoolValue:
		return msgs.Bool(k.BoolValue)
	default:
		return msgs.String(v.GetStringValue())
	}
}
