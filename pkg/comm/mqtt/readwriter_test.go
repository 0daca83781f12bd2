package mqtt

import (
	"io"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	paho.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

type pubMsg struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	paho.Client

	lock       sync.Mutex
	subscribed []string
	removed    []string
	published  []pubMsg
	handler    paho.MessageHandler
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.subscribed = append(c.subscribed, topic)
	c.handler = callback
	return &paho.DummyToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.removed = append(c.removed, topics...)
	return &paho.DummyToken{}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.published = append(c.published, pubMsg{topic: topic, payload: payload.([]byte)})
	return &paho.DummyToken{}
}

func (c *fakeClient) deliver(topic string, payload []byte) {
	c.lock.Lock()
	h := c.handler
	c.lock.Unlock()
	h(c, &fakeMessage{topic: topic, payload: payload})
}

func TestReadWriter(t *testing.T) {
	client := &fakeClient{}
	q := &Queue{Client: client, TopicPrefix: "lab/"}
	rw := NewPacketReadWriter(q, "scratch/in", "scratch/out")
	require.Equal(t, []string{"lab/scratch/in"}, client.subscribed)

	payload := []byte(`broadcast "hello"`)
	client.deliver("lab/scratch/in", payload)
	client.deliver("lab/scratch/out", []byte(`broadcast "echo"`))
	client.deliver("other/scratch/in", []byte(`broadcast "foreign"`))
	client.deliver("lab/scratch/in", []byte(`sensor-update "a" 1`))
	payload[0] = 'X'

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, `broadcast "hello"`, string(pkt))
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, `sensor-update "a" 1`, string(pkt))

	require.NoError(t, rw.WritePacket([]byte(`broadcast "out"`)))
	require.Equal(t, []pubMsg{{topic: "lab/scratch/out", payload: []byte(`broadcast "out"`)}}, client.published)

	read := make(chan error, 1)
	go func() {
		_, err := rw.ReadPacket()
		read <- err
	}()
	require.NoError(t, rw.Close())
	require.NoError(t, rw.Close())
	select {
	case err := <-read:
		require.Equal(t, io.EOF, err)
	case <-time.After(time.Second):
		t.Fatal("ReadPacket not unblocked by Close")
	}
	require.Equal(t, []string{"lab/scratch/in"}, client.removed)

	client.deliver("lab/scratch/in", []byte(`broadcast "late"`))
	_, err = rw.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestQueueSharedSubscription(t *testing.T) {
	client := &fakeClient{}
	q := &Queue{Client: client}
	var got []string
	s1 := q.Sub("nanoboard/+/reading", func(topic string, _ []byte) { got = append(got, "1:"+topic) })
	s2 := q.Sub("nanoboard/+/reading", func(topic string, _ []byte) { got = append(got, "2:"+topic) })
	require.Len(t, client.subscribed, 1)

	client.deliver("nanoboard/a/reading", nil)
	require.ElementsMatch(t, []string{"1:nanoboard/a/reading", "2:nanoboard/a/reading"}, got)

	require.NoError(t, s1.Close())
	require.Empty(t, client.removed)
	require.NoError(t, s2.Close())
	require.Equal(t, []string{"nanoboard/+/reading"}, client.removed)
}
