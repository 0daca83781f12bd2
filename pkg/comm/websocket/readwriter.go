// Package websocket carries frames as websocket binary messages.
package websocket

import (
	"net/url"
	"time"

	"golang.org/x/net/websocket"
)

// ReadWriter implements PacketReadWriter, one frame per message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Origin returns the http form of a websocket url: ws maps to http,
// wss to https, with the same host.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	scheme := "http"
	if u.Scheme == "wss" || u.Scheme == "https" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: "/"}).String(), nil
}

// Dial connects to a websocket server. The origin defaults to
// Origin(rawURL) when empty.
func Dial(rawURL, origin string) (*ReadWriter, error) {
	if origin == "" {
		var err error
		if origin, err = Origin(rawURL); err != nil {
			return nil, err
		}
	}
	conn, err := websocket.Dial(rawURL, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return New(conn), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// SetReadDeadline lets callers bound ReadPacket.
func (p *ReadWriter) SetReadDeadline(t time.Time) error {
	return (*websocket.Conn)(p).SetReadDeadline(t)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
