package nanoboard

import "math"

// PollCommand is the command byte of a board without motor.
const PollCommand byte = 0x01

// Direction of the motor.
type Direction int

// Directions. DirectionToggle is resolved against the current
// direction and never reaches the board.
const (
	DirectionForward Direction = 0
	DirectionReverse Direction = 1
	DirectionToggle  Direction = 2
)

// MotorCommand is the motor state sent with every poll.
type MotorCommand struct {
	Run       bool
	Direction Direction
	// Speed in percent, 0-100.
	Speed float64
}

// SetDirection sets an absolute direction, or flips it for
// DirectionToggle. Other values are ignored.
func (m *MotorCommand) SetDirection(d Direction) {
	switch d {
	case DirectionForward, DirectionReverse:
		m.Direction = d
	case DirectionToggle:
		m.Direction ^= 1
	}
}

// SetSpeed sets the speed clamped to 0-100.
func (m *MotorCommand) SetSpeed(speed float64) {
	switch {
	case speed < 0:
		m.Speed = 0
	case speed > 100:
		m.Speed = 100
	default:
		m.Speed = speed
	}
}

// Byte encodes the command byte: 0 when stopped, otherwise the
// direction in bit 7 and floor(0x7f*speed/100) in bits 0-6.
func (m MotorCommand) Byte() byte {
	if !m.Run {
		return 0
	}
	clamped := m
	clamped.SetSpeed(m.Speed)
	return byte(m.Direction&1)<<7 | byte(math.Floor(0x7f*clamped.Speed/100))
}
