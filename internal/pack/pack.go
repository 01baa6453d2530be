// Package pack implements the Packager: serializing a vfile.Model to a
// single compressed buffer and back.
package pack

import (
	"errors"

	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/codec"
	"github.com/Yattabyte/Installer/internal/frame"
	"github.com/Yattabyte/Installer/internal/memrange"
	"github.com/Yattabyte/Installer/internal/vfile"
)

// ErrTruncated is returned when the package payload ends mid-record.
var ErrTruncated = errors.New("pack: truncated")

// ErrBadPath re-exports vfile.ErrBadPath for callers that only import pack.
var ErrBadPath = vfile.ErrBadPath

// ErrBadHeader re-exports frame.ErrBadHeader for callers that only import
// pack.
var ErrBadHeader = frame.ErrBadHeader

// Pack serializes model's files as
// (uint64 path_length | path_bytes | uint64 data_length | data_bytes)* and
// wraps the result in a "yatta package " frame whose size field is the
// uncompressed payload length.
func Pack(model *vfile.Model) (*buffer.Buffer, error) {
	payload := buffer.New(0)
	for _, f := range model.Files() {
		payload.PushUint64(uint64(len(f.RelativePath)))
		payload.PushRaw([]byte(f.RelativePath))
		payload.PushUint64(uint64(f.Data.Size()))
		payload.PushRaw(f.Data.Bytes())
	}

	compressed, err := codec.RawCompress(payload.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("pack.Pack: %w", err)
	}
	return codec.Frame(yatta.TagPackage, uint64(payload.Size()), compressed), nil
}

// Unpack parses a "yatta package " frame and reconstructs the model it
// describes, preserving file order.
func Unpack(buf memrange.Range) (*vfile.Model, error) {
	h, compressed, err := frame.Parse(buf.Bytes(), yatta.TagPackage)
	if err != nil {
		return nil, err
	}
	payload, err := codec.RawDecompress(compressed, h.Size)
	if err != nil {
		return nil, err
	}

	model := vfile.New()
	r := buffer.NewReader(payload)
	for !r.Done() {
		path, err := r.ReadString()
		if err != nil {
			return nil, xerrors.Errorf("pack.Unpack: %w", ErrTruncated)
		}
		dataLen, err := r.ReadUint64()
		if err != nil {
			return nil, xerrors.Errorf("pack.Unpack: %w", ErrTruncated)
		}
		data, err := r.ReadRaw(int(dataLen))
		if err != nil {
			return nil, xerrors.Errorf("pack.Unpack: %w", ErrTruncated)
		}
		if err := model.Add(path, buffer.FromBytes(data)); err != nil {
			return nil, err
		}
	}
	return model, nil
}
