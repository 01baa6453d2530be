package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned when a Reader is asked for more bytes than remain.
var ErrTruncated = errors.New("buffer: truncated")

// Reader walks a byte slice forward with a read cursor. It is used to decode
// the length-prefixed, front-to-back wire payloads (package records,
// directory-patch records, instruction streams) — the counterpart of Buffer's
// end-relative push/pop protocol, which exists for symmetric round-tripping
// rather than for decoding a format produced by someone else.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reading from the front.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Done reports whether the cursor has consumed the entire payload.
func (r *Reader) Done() bool {
	return r.pos >= len(r.data)
}

// ReadRaw consumes and returns the next n bytes. n is compared against
// Remaining() rather than via r.pos+n, which would overflow int for a
// forged huge length prefix (e.g. a blob_length near 2^64 decoded off an
// attacker-controlled payload) and wrap into passing the bounds check.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, ErrTruncated
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// ReadUint64 consumes the next 8 bytes as a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	raw, err := r.ReadRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// ReadUint8 consumes the next byte.
func (r *Reader) ReadUint8() (uint8, error) {
	raw, err := r.ReadRaw(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

// ReadString consumes a uint64 length prefix followed by that many bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return "", err
	}
	raw, err := r.ReadRaw(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
