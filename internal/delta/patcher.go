package delta

import (
	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/codec"
	"github.com/Yattabyte/Installer/internal/frame"
	"github.com/Yattabyte/Installer/internal/memrange"
)

// Patch reconstructs a target byte range from source and a diff buffer
// produced by Diff. It does not hash-verify the result; that is the caller's
// responsibility (see internal/dirpatch for the directory-level flow that
// does).
func Patch(source, diff memrange.Range) (*buffer.Buffer, error) {
	h, compressed, err := frame.Parse(diff.Bytes(), yatta.TagPatch)
	if err != nil {
		return nil, err
	}
	payload, err := codec.RawDecompressUnsized(compressed)
	if err != nil {
		return nil, err
	}

	S := source.Bytes()
	target := buffer.New(int(h.Size))
	out := target.Bytes()
	w := 0

	r := buffer.NewReader(payload)
	for !r.Done() {
		ins, err := decodeInstruction(r)
		if err != nil {
			return nil, err
		}
		if ins.Copy {
			// Checked as two bounded comparisons rather than
			// ins.Offset+ins.Length > uint64(len(S)): a forged instruction
			// can set Length near 2^64, and the addition would wrap to a
			// small value that slips past the guard, leading to a
			// low>high panic on the slice expression below instead of the
			// ErrBadInstruction spec.md §8 property 8 requires.
			if ins.Offset > uint64(len(S)) || ins.Length > uint64(len(S))-ins.Offset {
				return nil, ErrBadInstruction
			}
			if ins.Length > h.Size-uint64(w) {
				return nil, ErrBadInstruction
			}
			end := ins.Offset + ins.Length
			copy(out[w:], S[ins.Offset:end])
			w += int(ins.Length)
			continue
		}
		if ins.Length > h.Size-uint64(w) || uint64(len(ins.Bytes)) != ins.Length {
			return nil, ErrBadInstruction
		}
		copy(out[w:], ins.Bytes)
		w += int(ins.Length)
	}

	if uint64(w) != h.Size {
		return nil, xerrors.Errorf("delta.Patch: %w", ErrTruncated)
	}
	return target, nil
}
