package nanoboard

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Response layout.
const (
	// WordCount is the number of words in a poll response.
	WordCount = 9
	// ResponseSize is the poll response size in bytes.
	ResponseSize = WordCount * 2
	// ChannelID is the channel reporting the board id.
	ChannelID = 15
	// ChannelCount is the number of sensor channels, excluding ChannelID.
	ChannelCount = 15
	// MaxValue is the largest value a word can carry.
	MaxValue = 0x3ff
)

// ErrShortRead indicates the board replied with less than a full response.
var ErrShortRead = errors.New("short read")

// DecodeWord extracts the channel and the value from a response word.
//
//	bit  15 14-11 10-8 7 6-0
//	     -  chan  hi   - lo
//
// value = hi<<7 | lo. Bits 15 and 7 are not used.
func DecodeWord(w uint16) (channel int, value uint16) {
	return int(w&0x7800) >> 11, (w&0x0700)>>1 | w&0x007f
}

// EncodeWord is the inverse of DecodeWord.
func EncodeWord(channel int, value uint16) uint16 {
	return uint16(channel&0x0f)<<11 | (value<<1)&0x0700 | value&0x007f
}

// Decode updates the reading from a full poll response. The reading
// is only modified when the whole response decodes.
func (r *Reading) Decode(resp []byte) error {
	if len(resp) < ResponseSize {
		return errors.Wrapf(ErrShortRead, "response has %d of %d bytes", len(resp), ResponseSize)
	}
	if len(resp) > ResponseSize {
		return errors.Errorf("response has %d bytes, expect %d", len(resp), ResponseSize)
	}
	decoded := *r
	for i := 0; i < WordCount; i++ {
		ch, val := DecodeWord(binary.BigEndian.Uint16(resp[i*2:]))
		if ch == ChannelID {
			decoded.ID = val
		} else {
			decoded.Sensors[ch] = val
		}
	}
	*r = decoded
	return nil
}

// EncodeResponse produces the response a board sends for the reading:
// channels 0-7 followed by the id.
func EncodeResponse(r Reading) []byte {
	resp := make([]byte, ResponseSize)
	for ch := 0; ch < WordCount-1; ch++ {
		binary.BigEndian.PutUint16(resp[ch*2:], EncodeWord(ch, r.Sensors[ch]))
	}
	binary.BigEndian.PutUint16(resp[ResponseSize-2:], EncodeWord(ChannelID, r.ID))
	return resp
}
