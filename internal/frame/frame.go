// Package frame implements the 24-byte header every compressed or
// differenced buffer in this module carries: a 16-byte ASCII tag followed by
// an 8-byte little-endian size field whose meaning is tag-dependent.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// TagSize is the width of the fixed ASCII tag at offset 0.
const TagSize = 16

// HeaderSize is the total header width: a TagSize tag plus an 8-byte size
// field.
const HeaderSize = TagSize + 8

// ErrBadHeader is returned when a tag doesn't match what the reader expected,
// or the buffer is shorter than HeaderSize.
var ErrBadHeader = errors.New("frame: bad header")

// Header is the parsed form of a frame prefix.
type Header struct {
	Tag  string
	Size uint64
}

// Encode writes tag (padded/truncated to TagSize) and size into a HeaderSize
// byte slice.
func Encode(tag string, size uint64) []byte {
	out := make([]byte, HeaderSize)
	copy(out[:TagSize], []byte(tag))
	binary.LittleEndian.PutUint64(out[TagSize:HeaderSize], size)
	return out
}

// Parse reads a header from the front of data and verifies its tag equals
// wantTag. It fails with ErrBadHeader if data is shorter than HeaderSize or
// the tag doesn't match.
func Parse(data []byte, wantTag string) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, ErrBadHeader
	}
	tagBytes := data[:TagSize]
	want := make([]byte, TagSize)
	copy(want, []byte(wantTag))
	if !bytes.Equal(tagBytes, want) {
		return Header{}, nil, ErrBadHeader
	}
	size := binary.LittleEndian.Uint64(data[TagSize:HeaderSize])
	return Header{Tag: wantTag, Size: size}, data[HeaderSize:], nil
}
