// Package dirdiff implements the DirectoryDiffer: computing the per-file
// add/remove/update instruction set between two vfile.Models.
package dirdiff

import (
	"context"
	"errors"

	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/batch"
	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/codec"
	"github.com/Yattabyte/Installer/internal/delta"
	"github.com/Yattabyte/Installer/internal/frame"
	"github.com/Yattabyte/Installer/internal/memrange"
	"github.com/Yattabyte/Installer/internal/vfile"
)

// Record operation tags.
const (
	OpUpdate byte = 'U'
	OpNew    byte = 'N'
	OpDelete byte = 'D'
)

// ErrTruncated is returned when a directory patch payload ends mid-record or
// its record count disagrees with the frame header.
var ErrTruncated = errors.New("dirdiff: truncated")

// ErrBadHeader re-exports frame.ErrBadHeader for callers that only import
// dirdiff.
var ErrBadHeader = frame.ErrBadHeader

// Record is one decoded entry of a directory patch payload.
type Record struct {
	Path    string
	Op      byte
	OldHash uint64 // 0 when Op == OpNew
	NewHash uint64 // 0 when Op == OpDelete
	Blob    []byte // buffer-level diff for U/N; empty for D
}

// Diff computes the directory patch between oldModel and newModel: a U
// record per modified shared path, an N record per path only in newModel, a
// D record per path only in oldModel. Unchanged shared paths get no record.
// The result is wrapped in a "yatta patch  " frame whose size field is the
// record count. Equivalent to DiffConcurrent with a single-worker Ctx.
func Diff(oldModel, newModel *vfile.Model) (*buffer.Buffer, error) {
	return DiffConcurrent(context.Background(), &batch.Ctx{Workers: 1}, oldModel, newModel)
}

// DiffConcurrent is Diff with the per-file blob computation (the expensive
// part: each U/N record runs a full delta.Diff) fanned out across bc's
// worker pool. Record order in the result is unaffected by scheduling order:
// each job writes into a slot reserved for it up front.
func DiffConcurrent(ctx context.Context, bc *batch.Ctx, oldModel, newModel *vfile.Model) (*buffer.Buffer, error) {
	slots := make([]*Record, 0, newModel.Len())
	var jobs []batch.Job

	for _, nf := range newModel.Files() {
		nf := nf
		of, ok := oldModel.Get(nf.RelativePath)
		if !ok {
			slot := new(Record)
			slots = append(slots, slot)
			jobs = append(jobs, func(ctx context.Context) error {
				blob, err := delta.Diff(memrange.New(nil), nf.Data.Range())
				if err != nil {
					return xerrors.Errorf("dirdiff.Diff: new file %s: %w", nf.RelativePath, err)
				}
				*slot = Record{
					Path:    nf.RelativePath,
					Op:      OpNew,
					NewHash: nf.Data.Range().Hash(),
					Blob:    blob.Bytes(),
				}
				return nil
			})
			continue
		}

		oldHash := of.Data.Range().Hash()
		newHash := nf.Data.Range().Hash()
		if oldHash == newHash {
			continue
		}

		of := of
		slot := new(Record)
		slots = append(slots, slot)
		jobs = append(jobs, func(ctx context.Context) error {
			blob, err := delta.Diff(of.Data.Range(), nf.Data.Range())
			if err != nil {
				return xerrors.Errorf("dirdiff.Diff: update %s: %w", nf.RelativePath, err)
			}
			*slot = Record{
				Path:    nf.RelativePath,
				Op:      OpUpdate,
				OldHash: oldHash,
				NewHash: newHash,
				Blob:    blob.Bytes(),
			}
			return nil
		})
	}

	if err := bc.Run(ctx, jobs); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(slots)+oldModel.Len())
	for _, s := range slots {
		records = append(records, *s)
	}

	for _, of := range oldModel.Files() {
		if _, ok := newModel.Get(of.RelativePath); ok {
			continue
		}
		records = append(records, Record{
			Path:    of.RelativePath,
			Op:      OpDelete,
			OldHash: of.Data.Range().Hash(),
		})
	}

	payload := buffer.New(0)
	for _, rec := range records {
		encode(payload, rec)
	}

	compressed, err := codec.RawCompress(payload.Bytes())
	if err != nil {
		return nil, xerrors.Errorf("dirdiff.Diff: %w", err)
	}
	return codec.Frame(yatta.TagPatch, uint64(len(records)), compressed), nil
}

func encode(b *buffer.Buffer, rec Record) {
	b.PushUint64(uint64(len(rec.Path)))
	b.PushRaw([]byte(rec.Path))
	b.PushUint8(rec.Op)
	b.PushUint64(rec.OldHash)
	b.PushUint64(rec.NewHash)
	b.PushUint64(uint64(len(rec.Blob)))
	b.PushRaw(rec.Blob)
}

// Decode parses a directory patch buffer into its Records, verifying the
// frame header and that the record count matches the header's promise.
func Decode(buf memrange.Range) ([]Record, error) {
	h, compressed, err := frame.Parse(buf.Bytes(), yatta.TagPatch)
	if err != nil {
		return nil, err
	}
	payload, err := codec.RawDecompressUnsized(compressed)
	if err != nil {
		return nil, err
	}

	var records []Record
	r := buffer.NewReader(payload)
	for !r.Done() {
		path, err := r.ReadString()
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		op, err := r.ReadUint8()
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		oldHash, err := r.ReadUint64()
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		newHash, err := r.ReadUint64()
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		blobLen, err := r.ReadUint64()
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		blob, err := r.ReadRaw(int(blobLen))
		if err != nil {
			return nil, xerrors.Errorf("dirdiff.Decode: %w", ErrTruncated)
		}
		records = append(records, Record{
			Path:    path,
			Op:      op,
			OldHash: oldHash,
			NewHash: newHash,
			Blob:    append([]byte(nil), blob...),
		})
	}
	if uint64(len(records)) != h.Size {
		return nil, xerrors.Errorf("dirdiff.Decode: %w: header promised %d records, found %d", ErrTruncated, h.Size, len(records))
	}
	return records, nil
}
