package stream

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		expect  []byte
	}{
		{"empty", nil, []byte{0, 0, 0, 0}},
		{"short", []byte("hi"), []byte{0, 0, 0, 2, 'h', 'i'}},
		{"long", make([]byte, 0x0102), append([]byte{0, 0, 1, 2}, make([]byte, 0x0102)...)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, Encode(tc.payload))
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tc.payload))
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

// chunkReader returns at most the next chunk size on each Read.
type chunkReader struct {
	r      io.Reader
	chunks []int
	n      int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	size := c.chunks[c.n%len(c.chunks)]
	c.n++
	if size < len(p) {
		p = p[:size]
	}
	return c.r.Read(p)
}

func TestReadFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte(`broadcast "go"`),
		bytes.Repeat([]byte{0xaa}, 3000),
		{0},
	}
	var stream bytes.Buffer
	for _, p := range payloads {
		stream.Write(Encode(p))
	}
	encoded := stream.Bytes()

	readers := map[string]func() io.Reader{
		"whole":    func() io.Reader { return bytes.NewReader(encoded) },
		"one byte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(encoded)) },
		"chunks": func() io.Reader {
			return &chunkReader{r: bytes.NewReader(encoded), chunks: []int{3, 1, 7, 2, 1024, 5}}
		},
		"half": func() io.Reader { return iotest.HalfReader(bytes.NewReader(encoded)) },
	}
	for name, newReader := range readers {
		t.Run(name, func(t *testing.T) {
			r := NewReader(newReader())
			for _, p := range payloads {
				frame, err := r.ReadFrame()
				require.NoError(t, err)
				require.Equal(t, len(p), len(frame))
				require.Equal(t, p, frame)
			}
			_, err := r.ReadFrame()
			require.Equal(t, io.EOF, err)
		})
	}
}

func TestReadFrameRandomSplits(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		payload := make([]byte, rnd.Intn(2048))
		rnd.Read(payload)
		chunks := []int{1 + rnd.Intn(9), 1 + rnd.Intn(100), 1 + rnd.Intn(3)}
		r := NewReader(&chunkReader{r: bytes.NewReader(Encode(payload)), chunks: chunks})
		frame, err := r.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, payload, frame)
		require.Zero(t, r.Buffered())
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 1, 2, 3}))
	r.MaxFrameSize = 16
	_, err := r.ReadFrame()
	require.True(t, errors.Is(err, ErrFrameTooLarge))
	require.Contains(t, err.Error(), "4294967295")
}

func TestReadFrameUnexpectedEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0, 0, 5, 'a', 'b'}))
	_, err := r.ReadFrame()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

// stallReader fails with a timeout once after delivering the first part.
type stallReader struct {
	parts [][]byte
	n     int
}

func (s *stallReader) Read(p []byte) (int, error) {
	if s.n >= len(s.parts) {
		return 0, io.EOF
	}
	part := s.parts[s.n]
	s.n++
	if part == nil {
		return 0, timeoutErr{}
	}
	return copy(p, part), nil
}

func TestReadFrameKeepsPartialOnError(t *testing.T) {
	encoded := Encode([]byte("sensor-update \"x\" 1"))
	r := NewReader(&stallReader{parts: [][]byte{encoded[:6], nil, encoded[6:]}})
	_, err := r.ReadFrame()
	require.Equal(t, timeoutErr{}, err)
	require.Equal(t, 6, r.Buffered())
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, "sensor-update \"x\" 1", string(frame))
}

func TestReadWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte("one")))
	require.NoError(t, rw.WritePacket(nil))
	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("one"), pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	require.NoError(t, rw.Close())

	rw = New(bytes.NewBuffer(Encode(make([]byte, 100)))).WithMaxFrameSize(10)
	_, err = rw.ReadPacket()
	require.True(t, errors.Is(err, ErrFrameTooLarge))
}
