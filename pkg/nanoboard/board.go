package nanoboard

import (
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	// ErrNoMotor is returned by motor operations on a board without motor.
	ErrNoMotor = errors.New("board has no motor")
	// ErrPortClosed is returned by a closed Simulator.
	ErrPortClosed = errors.New("port closed")
)

// Port is the serial connection to the board. A Read returning no
// data and no error is treated as a read timeout.
type Port interface {
	io.ReadWriter
	// ResetInputBuffer discards bytes received but not read yet.
	ResetInputBuffer() error
}

// Board polls a board over a Port. It is not safe for concurrent
// use; there is at most one poll in flight.
type Board struct {
	Port Port
	// Motor is nil for a board without motor, which is polled with
	// PollCommand.
	Motor *MotorCommand

	reading Reading
	buf     [ResponseSize]byte
}

// NewBoard creates a Board without motor.
func NewBoard(port Port) *Board {
	return &Board{Port: port}
}

// NewMotorBoard creates a Board driving one motor.
func NewMotorBoard(port Port) *Board {
	return &Board{Port: port, Motor: &MotorCommand{}}
}

// Command returns the command byte sent on the next poll.
func (b *Board) Command() byte {
	if b.Motor == nil {
		return PollCommand
	}
	return b.Motor.Byte()
}

// Reading returns the result of the last successful poll.
func (b *Board) Reading() Reading {
	return b.reading
}

// Update sends the command byte and decodes the response.
func (b *Board) Update() error {
	if err := b.Port.ResetInputBuffer(); err != nil {
		return errors.Wrap(err, "flush input")
	}
	cmd := b.Command()
	if _, err := b.Port.Write([]byte{cmd}); err != nil {
		return errors.Wrap(err, "write command")
	}
	if err := readFull(b.Port, b.buf[:]); err != nil {
		return err
	}
	if err := b.reading.Decode(b.buf[:]); err != nil {
		return err
	}
	if glog.V(4) {
		glog.Infof("POLL %02x: id=%d %v", cmd, b.reading.ID, b.reading.Sensors[:8])
	}
	return nil
}

// Poll updates and returns the reading.
func (b *Board) Poll() (Reading, error) {
	err := b.Update()
	return b.reading, err
}

// MotorOn starts the motor.
func (b *Board) MotorOn() error {
	return b.updateMotor(func(m *MotorCommand) { m.Run = true })
}

// MotorOff stops the motor.
func (b *Board) MotorOff() error {
	return b.updateMotor(func(m *MotorCommand) { m.Run = false })
}

// MotorDirection sets the direction, DirectionToggle flips it.
func (b *Board) MotorDirection(d Direction) error {
	return b.updateMotor(func(m *MotorCommand) { m.SetDirection(d) })
}

// MotorSpeed sets the speed in percent, clamped to 0-100.
func (b *Board) MotorSpeed(speed float64) error {
	return b.updateMotor(func(m *MotorCommand) { m.SetSpeed(speed) })
}

func (b *Board) updateMotor(fn func(*MotorCommand)) error {
	if b.Motor == nil {
		return ErrNoMotor
	}
	fn(b.Motor)
	return b.Update()
}

// Close closes the port if it is an io.Closer.
func (b *Board) Close() error {
	if closer, ok := b.Port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func readFull(r io.Reader, buf []byte) error {
	for n := 0; n < len(buf); {
		m, err := r.Read(buf[n:])
		n += m
		if n >= len(buf) {
			break
		}
		if err == io.EOF || (err == nil && m == 0) {
			return errors.Wrapf(ErrShortRead, "received %d of %d bytes", n, len(buf))
		}
		if err != nil {
			return errors.Wrap(err, "read response")
		}
	}
	return nil
}
