// Package buffer implements Buffer, an owning, growable byte container with
// a cursor-based push/pop protocol, plus Reader, a forward sequential cursor
// used to walk the wire payloads described throughout this module.
package buffer

import (
	"encoding/binary"
	"errors"

	"github.com/Yattabyte/Installer/internal/memrange"
)

// ErrUnderflow is returned when a pop is attempted against a buffer that
// doesn't hold enough bytes for the requested type.
var ErrUnderflow = errors.New("buffer: underflow")

// Buffer owns a growable byte allocation. The zero Buffer is empty and ready
// to use. Size is always <= capacity; Resize up to the current capacity never
// reallocates, Resize above it doubles (at least) the requested size.
type Buffer struct {
	data []byte // cap(data) == capacity; data[:size] is the logical content
	size int
}

// New allocates a Buffer with the given initial size (capacity equal to
// size).
func New(size int) *Buffer {
	b := &Buffer{}
	b.Reserve(size)
	b.Resize(size)
	return b
}

// FromBytes wraps an existing slice as a Buffer's initial content. The slice
// is copied; the returned Buffer owns its own storage.
func FromBytes(data []byte) *Buffer {
	b := &Buffer{data: append([]byte(nil), data...)}
	b.size = len(data)
	return b
}

// Empty reports whether the buffer holds no allocation.
func (b *Buffer) Empty() bool {
	return cap(b.data) == 0
}

// Size returns the logical length of the buffer's content.
func (b *Buffer) Size() int {
	return b.size
}

// Capacity returns the number of bytes currently allocated.
func (b *Buffer) Capacity() int {
	return cap(b.data)
}

// Bytes returns the logical content as a slice. The slice aliases the
// buffer's storage and is invalidated by any subsequent call that grows the
// buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.size]
}

// Range returns a memrange.Range view over the buffer's logical content.
func (b *Buffer) Range() memrange.Range {
	return memrange.New(b.Bytes())
}

// Reserve raises capacity to at least n without changing size.
func (b *Buffer) Reserve(n int) {
	if cap(b.data) >= n {
		return
	}
	grown := make([]byte, b.size, n)
	copy(grown, b.data[:b.size])
	b.data = grown
}

// Resize raises size to n, growing capacity to at least 2n if the current
// capacity is insufficient. Shrinking size never releases capacity.
func (b *Buffer) Resize(n int) {
	if n > cap(b.data) {
		b.Reserve(2 * n)
	}
	if n > len(b.data) {
		b.data = b.data[:cap(b.data)]
	}
	b.size = n
}

// Shrink releases capacity down to the current size.
func (b *Buffer) Shrink() {
	if cap(b.data) == b.size {
		return
	}
	shrunk := make([]byte, b.size)
	copy(shrunk, b.data[:b.size])
	b.data = shrunk
}

// Clear frees the buffer's allocation entirely.
func (b *Buffer) Clear() {
	b.data = nil
	b.size = 0
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	return FromBytes(b.Bytes())
}

// PushRaw appends data at the logical end, growing the buffer as needed.
func (b *Buffer) PushRaw(data []byte) {
	at := b.size
	b.Resize(b.size + len(data))
	copy(b.data[at:b.size], data)
}

// PushUint64 appends v as 8 little-endian bytes.
func (b *Buffer) PushUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.PushRaw(tmp[:])
}

// PushUint8 appends the single byte v.
func (b *Buffer) PushUint8(v uint8) {
	b.PushRaw([]byte{v})
}

// PushString appends s's bytes followed by its uint64 length. The length
// trails (rather than leads, as it does in every on-wire record format in
// this module) so that PopString, mirroring the generic pop-from-the-end
// protocol below, can read the length first without needing to know it in
// advance. The on-wire formats are produced with PushUint64/PushRaw and
// consumed with Reader instead, where the length legitimately leads a forward
// read.
func (b *Buffer) PushString(s string) {
	b.PushRaw([]byte(s))
	b.PushUint64(uint64(len(s)))
}

// PopRaw removes and returns the last n bytes of the buffer. It fails with
// ErrUnderflow if the buffer is shorter than n.
func (b *Buffer) PopRaw(n int) ([]byte, error) {
	if n > b.size {
		return nil, ErrUnderflow
	}
	at := b.size - n
	out := append([]byte(nil), b.data[at:b.size]...)
	b.size = at
	return out, nil
}

// PopUint64 removes and returns the trailing 8 bytes as a little-endian
// uint64.
func (b *Buffer) PopUint64() (uint64, error) {
	raw, err := b.PopRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// PopUint8 removes and returns the trailing byte.
func (b *Buffer) PopUint8() (uint8, error) {
	raw, err := b.PopRaw(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

// PopString is the inverse of PushString: it pops the trailing length, then
// the string bytes beneath it.
func (b *Buffer) PopString() (string, error) {
	n, err := b.PopUint64()
	if err != nil {
		return "", err
	}
	raw, err := b.PopRaw(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
