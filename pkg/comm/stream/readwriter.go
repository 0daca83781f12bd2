// Package stream implements the length prefixed framing of the
// Scratch remote sensor protocol over a byte stream.
//
// Each frame is a 4-byte big-endian unsigned length followed by
// exactly that many payload bytes. There is no terminator and no
// checksum.
package stream

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of the length prefix.
	HeaderSize = 4
	// DefaultMaxFrameSize caps the accepted payload length.
	DefaultMaxFrameSize uint32 = 1 << 20

	readChunkSize = 1024
)

// ErrFrameTooLarge indicates the length prefix exceeds the configured cap.
var ErrFrameTooLarge = errors.New("frame too large")

// Encode prepends the length prefix to payload.
func Encode(payload []byte) []byte {
	b := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(payload)))
	copy(b[HeaderSize:], payload)
	return b
}

// WriteFrame writes one frame with a single Write call so frames
// from concurrent writers can't interleave at the stream level.
func WriteFrame(w io.Writer, payload []byte) error {
	_, err := w.Write(Encode(payload))
	return err
}

// Reader decodes frames from a stream. The buffer of a partially
// received frame survives read errors, so a ReadFrame failing with a
// timeout can simply be called again.
// A Reader must only be used by one goroutine.
type Reader struct {
	R io.Reader
	// MaxFrameSize is the largest accepted payload, 0 for no limit.
	MaxFrameSize uint32

	buf   []byte
	chunk []byte
	err   error
}

// NewReader creates a Reader with DefaultMaxFrameSize.
func NewReader(r io.Reader) *Reader {
	return &Reader{R: r, MaxFrameSize: DefaultMaxFrameSize}
}

// Buffered returns the number of bytes received but not yet consumed.
func (r *Reader) Buffered() int {
	return len(r.buf)
}

// ReadFrame blocks until a whole frame is received and returns its payload.
func (r *Reader) ReadFrame() ([]byte, error) {
	for {
		if len(r.buf) >= HeaderSize {
			size := binary.BigEndian.Uint32(r.buf)
			if r.MaxFrameSize > 0 && size > r.MaxFrameSize {
				return nil, errors.Wrapf(ErrFrameTooLarge, "length %d exceeds %d", size, r.MaxFrameSize)
			}
			if uint64(len(r.buf)) >= HeaderSize+uint64(size) {
				end := HeaderSize + int(size)
				payload := make([]byte, size)
				copy(payload, r.buf[HeaderSize:end])
				r.buf = r.buf[:copy(r.buf, r.buf[end:])]
				return payload, nil
			}
		}
		if err := r.err; err != nil {
			r.err = nil
			if err == io.EOF && len(r.buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if r.chunk == nil {
			r.chunk = make([]byte, readChunkSize)
		}
		n, err := r.R.Read(r.chunk)
		r.buf = append(r.buf, r.chunk[:n]...)
		r.err = err
	}
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

// ReadWriter implements comm.PacketReadWriter over a stream.
type ReadWriter struct {
	io.ReadWriter

	// ReadTimeout bounds every underlying Read if the stream
	// supports SetReadDeadline. Zero disables it.
	ReadTimeout time.Duration

	reader Reader
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{
		ReadWriter: s,
		reader:     Reader{R: s, MaxFrameSize: DefaultMaxFrameSize},
	}
}

// WithMaxFrameSize changes the frame size cap, 0 for no limit.
func (p *ReadWriter) WithMaxFrameSize(size uint32) *ReadWriter {
	p.reader.MaxFrameSize = size
	return p
}

// WithReadTimeout sets ReadTimeout.
func (p *ReadWriter) WithReadTimeout(timeout time.Duration) *ReadWriter {
	p.ReadTimeout = timeout
	return p
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	if d, ok := p.ReadWriter.(readDeadliner); ok && p.ReadTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(p.ReadTimeout)); err != nil {
			return nil, err
		}
	}
	return p.reader.ReadFrame()
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return WriteFrame(p.ReadWriter, pkt)
}

// Close closes the underlying stream if it is an io.Closer.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
