package nanoboard

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeWord(t *testing.T) {
	tests := []struct {
		word    uint16
		channel int
		value   uint16
	}{
		{0x0000, 0, 0},
		{0x0B01, 1, 385},
		{0x7F7F, 15, 1023},
		{0x8080, 0, 0},
		{0x207F, 4, 127},
		{0x3900, 7, 128},
	}
	for _, test := range tests {
		ch, val := DecodeWord(test.word)
		require.Equal(t, test.channel, ch, "word %04x", test.word)
		require.Equal(t, test.value, val, "word %04x", test.word)
	}
}

func TestEncodeWord(t *testing.T) {
	for ch := 0; ch < 16; ch++ {
		for _, val := range []uint16{0, 1, 127, 128, 385, 512, MaxValue} {
			w := EncodeWord(ch, val)
			gotCh, gotVal := DecodeWord(w)
			require.Equal(t, ch, gotCh)
			require.Equal(t, val, gotVal)
		}
	}
	require.Equal(t, uint16(0x0B01), EncodeWord(1, 385))
}

func TestReadingDecode(t *testing.T) {
	var expected Reading
	expected.ID = 42
	for ch := 0; ch < 8; ch++ {
		expected.Sensors[ch] = uint16(ch*100 + 3)
	}
	var r Reading
	require.NoError(t, r.Decode(EncodeResponse(expected)))
	require.Equal(t, expected, r)
}

func TestReadingDecodeOnlyTouchesReportedChannels(t *testing.T) {
	var r Reading
	r.Sensors[ChLight] = 77
	r.ID = 3

	resp := make([]byte, ResponseSize)
	for i := 0; i < WordCount; i++ {
		binary.BigEndian.PutUint16(resp[i*2:], EncodeWord(1, 385))
	}
	binary.BigEndian.PutUint16(resp[2:], EncodeWord(9, 12))
	require.NoError(t, r.Decode(resp))
	require.Equal(t, uint16(385), r.Sensors[ChResistanceC])
	require.Equal(t, uint16(12), r.Sensors[9])
	require.Equal(t, uint16(77), r.Sensors[ChLight])
	require.Equal(t, uint16(3), r.ID)
}

func TestReadingDecodeErrors(t *testing.T) {
	var r Reading
	r.ID = 7
	resp := EncodeResponse(Reading{ID: 1})

	err := r.Decode(resp[:ResponseSize-1])
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrShortRead))

	err = r.Decode(append(resp, 0))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrShortRead))

	require.Equal(t, Reading{ID: 7}, r)
}

func TestMotorCommandByte(t *testing.T) {
	tests := []struct {
		cmd      MotorCommand
		expected byte
	}{
		{MotorCommand{Run: true, Direction: DirectionReverse, Speed: 50}, 0xBF},
		{MotorCommand{Run: false, Direction: DirectionReverse, Speed: 50}, 0x00},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 100}, 0x7F},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 150}, 0x7F},
		{MotorCommand{Run: true, Direction: DirectionReverse, Speed: -3}, 0x80},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 1}, 0x01},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 0}, 0x00},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 50.4}, 0x40},
		{MotorCommand{Run: true, Direction: DirectionReverse, Speed: 50.4}, 0xC0},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 0.6}, 0x00},
		{MotorCommand{Run: true, Direction: DirectionForward, Speed: 99.9}, 0x7E},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, test.cmd.Byte(), "%+v", test.cmd)
	}
}

func TestMotorCommandSetters(t *testing.T) {
	var m MotorCommand
	m.SetDirection(DirectionToggle)
	require.Equal(t, DirectionReverse, m.Direction)
	m.SetDirection(DirectionToggle)
	require.Equal(t, DirectionForward, m.Direction)
	m.SetDirection(DirectionReverse)
	require.Equal(t, DirectionReverse, m.Direction)
	m.SetDirection(Direction(5))
	require.Equal(t, DirectionReverse, m.Direction)

	m.SetSpeed(120)
	require.Equal(t, 100.0, m.Speed)
	m.SetSpeed(-1)
	require.Equal(t, 0.0, m.Speed)
	m.SetSpeed(33.5)
	require.Equal(t, 33.5, m.Speed)
}

func TestReadingUnits(t *testing.T) {
	var r Reading
	r.Sensors[ChResistanceA] = 512
	r.Sensors[ChResistanceB] = 512
	r.Sensors[ChResistanceC] = 1023
	r.Sensors[ChResistanceD] = 0
	r.Sensors[ChSlider] = 256
	require.InDelta(t, 50.0489, r.ResistanceA(), 0.001)
	require.Equal(t, 50.0, r.ResistanceB())
	require.Equal(t, 100.0, r.ResistanceC())
	require.Equal(t, 0.0, r.ResistanceD())
	require.Equal(t, 25.0, r.Slider())

	require.False(t, r.Button())
	r.Sensors[ChButton] = 1
	require.True(t, r.Button())

	lights := map[uint16]float64{0: 100, 10: 90, 24: 76, 25: 75, 1023: 0}
	for raw, expected := range lights {
		r.Sensors[ChLight] = raw
		require.Equal(t, expected, r.Light(), "light %d", raw)
	}

	sounds := map[uint16]float64{0: 0, 18: 0, 19: 0, 49: 15, 68: 25, 1023: 100}
	for raw, expected := range sounds {
		r.Sensors[ChSound] = raw
		require.Equal(t, expected, r.Sound(), "sound %d", raw)
	}
}

type scriptPort struct {
	written bytes.Buffer
	resp    bytes.Buffer
	eof     bool
	resets  int
}

func (p *scriptPort) Read(b []byte) (int, error) {
	if p.resp.Len() == 0 {
		if p.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	// deliver one byte at a time
	return p.resp.Read(b[:1])
}

func (p *scriptPort) Write(b []byte) (int, error) {
	return p.written.Write(b)
}

func (p *scriptPort) ResetInputBuffer() error {
	p.resets++
	return nil
}

func TestBoardUpdate(t *testing.T) {
	expected := Reading{ID: 5}
	expected.Sensors[ChSlider] = 1000
	port := &scriptPort{}
	port.resp.Write(EncodeResponse(expected))

	b := NewBoard(port)
	r, err := b.Poll()
	require.NoError(t, err)
	require.Equal(t, expected, r)
	require.Equal(t, expected, b.Reading())
	require.Equal(t, []byte{PollCommand}, port.written.Bytes())
	require.Equal(t, 1, port.resets)
}

func TestBoardShortRead(t *testing.T) {
	for _, eof := range []bool{false, true} {
		port := &scriptPort{eof: eof}
		port.resp.Write(EncodeResponse(Reading{ID: 1})[:10])
		b := NewBoard(port)
		err := b.Update()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrShortRead), "eof=%v: %v", eof, err)
		require.Equal(t, Reading{}, b.Reading())
	}
}

func TestBoardMotor(t *testing.T) {
	sim := NewSimulator()
	sim.SetSensor(ChLight, 10)
	b := NewMotorBoard(sim)
	require.Equal(t, byte(0), b.Command())

	require.NoError(t, b.MotorSpeed(50))
	require.NoError(t, b.MotorDirection(DirectionToggle))
	require.NoError(t, b.MotorOn())
	cmd, ok := sim.LastCommand()
	require.True(t, ok)
	require.Equal(t, byte(0xBF), cmd)
	require.Equal(t, 90.0, b.Reading().Light())

	require.NoError(t, b.MotorOff())
	require.Equal(t, []byte{0, 0, 0xBF, 0}, sim.Commands())

	require.NoError(t, b.Close())
	require.Error(t, b.Update())
}

func TestBoardWithoutMotor(t *testing.T) {
	b := NewBoard(NewSimulator())
	require.Equal(t, ErrNoMotor, b.MotorOn())
	require.Equal(t, ErrNoMotor, b.MotorSpeed(10))
	require.NoError(t, b.Update())
}

func TestConfigOpenSimulator(t *testing.T) {
	conf := NewConfig()
	conf.Port = SimulatorPort
	conf.Motor = true
	b, err := conf.Open()
	require.NoError(t, err)
	require.NotNil(t, b.Motor)
	_, ok := b.Port.(*Simulator)
	require.True(t, ok)
	require.NoError(t, b.Close())
}
