package mqtt

import (
	"io"
	"sync"
)

// ReadWriter implements PacketReadWriter, one frame per MQTT message.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	sub       *Subscription
	packetCh  chan []byte
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter and subscribes SubTopic.
func NewPacketReadWriter(q *Queue, sub, pub string) *ReadWriter {
	p := &ReadWriter{
		Queue:    q,
		SubTopic: sub,
		PubTopic: pub,
		packetCh: make(chan []byte, 16),
		doneCh:   make(chan struct{}),
	}
	p.sub = q.Sub(sub, p.handleMsg)
	return p
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close unsubscribes and unblocks ReadPacket. The Queue stays open.
func (p *ReadWriter) Close() (err error) {
	p.closeOnce.Do(func() {
		close(p.doneCh)
		err = p.sub.Close()
	})
	return
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	pkt := make([]byte, len(payload))
	copy(pkt, payload)
	select {
	case p.packetCh <- pkt:
	case <-p.doneCh:
	}
}
