// Package codec implements the compress/decompress pair wrapping every
// framed buffer in this module. Compression is deterministic and
// single-shot: the same input always produces the same output within a
// process, which is all the round-trip guarantees in spec.md §8 require.
package codec

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/frame"
	"github.com/Yattabyte/Installer/internal/memrange"
)

// ErrCompressFailure and ErrDecompressFailure wrap an underlying codec error
// or a compressed/decompressed size mismatch.
var (
	ErrCompressFailure   = errors.New("codec: compress failure")
	ErrDecompressFailure = errors.New("codec: decompress failure")
)

// ErrBadHeader re-exports frame.ErrBadHeader for callers that only import
// codec.
var ErrBadHeader = frame.ErrBadHeader

// Compress wraps input in a "yatta compress" frame whose size field is the
// uncompressed length, followed by the compressed payload. This is the
// public library operation from spec.md §6.
func Compress(input memrange.Range) (*buffer.Buffer, error) {
	compressed, err := RawCompress(input.Bytes())
	if err != nil {
		return nil, err
	}
	return Frame(yatta.TagCompress, uint64(input.Size()), compressed), nil
}

// Decompress parses a "yatta compress" frame from input and returns the
// decompressed payload, sized exactly to the header's promised length.
func Decompress(input memrange.Range) (*buffer.Buffer, error) {
	h, rest, err := frame.Parse(input.Bytes(), yatta.TagCompress)
	if err != nil {
		return nil, err
	}
	decoded, err := RawDecompress(rest, h.Size)
	if err != nil {
		return nil, err
	}
	return buffer.FromBytes(decoded), nil
}

// RawCompress runs the underlying deterministic compressor with no framing.
// It is shared by the "yatta compress", "yatta patch", and "yatta package"
// frame wrappers, each of which applies its own tag/size header around this
// same payload transform.
//
// The s2 writer streams into an in-memory writerseeker sink rather than
// directly into a pre-sized Buffer, because the compressed length isn't known
// until the stream finishes; the sink's bytes are then the exact compressed
// payload — the allocate/stream/truncate shape spec.md §4.2 describes, with
// "allocate" deferred to whichever frame wrapper sizes the final buffer.
func RawCompress(input []byte) ([]byte, error) {
	sink := &writerseeker.WriterSeeker{}
	w := s2.NewWriter(sink)
	if _, err := w.Write(input); err != nil {
		return nil, xerrors.Errorf("%w: %v", ErrCompressFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, xerrors.Errorf("%w: %v", ErrCompressFailure, err)
	}
	compressed, err := io.ReadAll(sink.Reader())
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", ErrCompressFailure, err)
	}
	return compressed, nil
}

// RawDecompress inflates compressed and fails with ErrDecompressFailure if
// the underlying decoder errors or produces a length other than wantSize.
func RawDecompress(compressed []byte, wantSize uint64) ([]byte, error) {
	decoded, err := RawDecompressUnsized(compressed)
	if err != nil {
		return nil, err
	}
	if uint64(len(decoded)) != wantSize {
		return nil, xerrors.Errorf("%w: promised %d bytes, got %d", ErrDecompressFailure, wantSize, len(decoded))
	}
	return decoded, nil
}

// RawDecompressUnsized inflates compressed with no expected-length check.
// It's used where a frame's size field carries something other than the raw
// payload's own uncompressed byte count — the "yatta patch  " tag's size
// field is the reconstructed target size (buffer diffs) or the record count
// (directory diffs), neither of which bounds the instruction payload's own
// length.
func RawDecompressUnsized(compressed []byte) ([]byte, error) {
	decoded, err := io.ReadAll(s2.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", ErrDecompressFailure, err)
	}
	return decoded, nil
}

// Frame assembles tag | size | payload into a single Buffer. delta and pack
// use it directly with their own tags ("yatta patch  " / "yatta package ")
// around a RawCompress'd payload, rather than nesting a "yatta compress"
// frame inside their own.
func Frame(tag string, size uint64, payload []byte) *buffer.Buffer {
	out := buffer.New(frame.HeaderSize + len(payload))
	copy(out.Bytes(), frame.Encode(tag, size))
	copy(out.Bytes()[frame.HeaderSize:], payload)
	return out
}
