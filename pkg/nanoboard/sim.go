package nanoboard

import (
	"bytes"
	"sync"
)

// Simulator is a Port answering polls with a settable Reading.
type Simulator struct {
	lock     sync.Mutex
	reading  Reading
	commands []byte
	pending  bytes.Buffer
	closed   bool
}

// NewSimulator creates a Simulator with all sensors at zero.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// SetReading sets the reading returned by the following polls.
func (s *Simulator) SetReading(r Reading) {
	s.lock.Lock()
	s.reading = r
	s.lock.Unlock()
}

// SetSensor sets a single channel.
func (s *Simulator) SetSensor(channel int, value uint16) {
	s.lock.Lock()
	s.reading.Sensors[channel] = value & MaxValue
	s.lock.Unlock()
}

// LastCommand returns the most recent command byte and whether any
// was received.
func (s *Simulator) LastCommand() (byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.commands) == 0 {
		return 0, false
	}
	return s.commands[len(s.commands)-1], true
}

// Commands returns all command bytes received.
func (s *Simulator) Commands() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]byte(nil), s.commands...)
}

// Write implements io.Writer, each byte is a poll.
func (s *Simulator) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return 0, ErrPortClosed
	}
	for _, b := range p {
		s.commands = append(s.commands, b)
		s.pending.Write(EncodeResponse(s.reading))
	}
	return len(p), nil
}

// Read implements io.Reader. It returns 0 bytes when nothing is
// pending, the same as a serial read timeout.
func (s *Simulator) Read(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return 0, ErrPortClosed
	}
	if s.pending.Len() == 0 {
		return 0, nil
	}
	return s.pending.Read(p)
}

// ResetInputBuffer implements Port.
func (s *Simulator) ResetInputBuffer() error {
	s.lock.Lock()
	s.pending.Reset()
	s.lock.Unlock()
	return nil
}

// Close implements io.Closer.
func (s *Simulator) Close() error {
	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()
	return nil
}
