// Package dirpatch implements the DirectoryPatcher: applying a directory
// patch (produced by dirdiff.Diff) against a filesystem tree in two phases —
// validate everything in memory first, then reflect the staged changes to
// disk — so a bad patch never leaves a tree half-updated.
package dirpatch

import (
	"context"
	"errors"
	"log"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/delta"
	"github.com/Yattabyte/Installer/internal/dirdiff"
	"github.com/Yattabyte/Installer/internal/memrange"
	"github.com/Yattabyte/Installer/internal/vfile"
)

// ErrMissingFile is returned when a U record names a path absent from the
// current tree. A D record with no matching path is not an error (see
// validate's OpDelete case): the file is already gone, which is what a
// second apply of the same patch looks like.
var ErrMissingFile = errors.New("dirpatch: missing file")

// ErrVersionMismatch is returned when a U record's current file hash is
// neither the record's NewHash (already up to date) nor its OldHash (the
// expected pre-image) — the patch was built against a different version of
// the file than the one on disk.
var ErrVersionMismatch = errors.New("dirpatch: version mismatch")

// ErrHashMismatch is returned when reconstructing a U or N record's content
// produces a hash other than NewHash, meaning the stored blob didn't
// reproduce the version the record promises.
var ErrHashMismatch = errors.New("dirpatch: hash mismatch")

type staged struct {
	path   string
	delete bool
	data   []byte
}

// Apply scans root into a Model, validates patch's records against it
// entirely in memory, and only then writes the result back to root. A
// validation failure leaves root untouched; a failure partway through the
// disk-reflection phase leaves whatever files were already written in place,
// same as vfile.Model.Write.
//
// ctx is checked between records in both phases, the safe boundary spec.md
// §5 identifies for preempting a long-running directory operation: a
// canceled ctx abandons the apply before its next record rather than mid-
// write. Pass context.Background() for a non-interruptible caller.
func Apply(ctx context.Context, root string, patch memrange.Range, exclusions []string, logger *log.Logger) error {
	current, err := vfile.Scan(root, exclusions, logger)
	if err != nil {
		return err
	}
	records, err := dirdiff.Decode(patch)
	if err != nil {
		return err
	}

	plan, err := validate(ctx, current, records)
	if err != nil {
		return err
	}
	return reflect(ctx, root, plan, logger)
}

// validate implements spec.md §4.8 Phase 1. A record that is already at its
// target state (an update/new record whose path already hashes to NewHash)
// is skipped rather than staged, which is what makes re-applying the same
// patch a no-op: the second run finds every file already at NewHash and
// stages nothing.
func validate(ctx context.Context, current *vfile.Model, records []dirdiff.Record) ([]staged, error) {
	plan := make([]staged, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, xerrors.Errorf("dirpatch: validate: %w", err)
		}
		switch rec.Op {
		case dirdiff.OpNew:
			if f, ok := current.Get(rec.Path); ok && f.Data.Range().Hash() == rec.NewHash {
				continue
			}
			data, err := reconstruct(memrange.New(nil), rec)
			if err != nil {
				return nil, err
			}
			plan = append(plan, staged{path: rec.Path, data: data})

		case dirdiff.OpUpdate:
			f, ok := current.Get(rec.Path)
			if !ok {
				return nil, xerrors.Errorf("dirpatch: update %s: %w", rec.Path, ErrMissingFile)
			}
			curHash := f.Data.Range().Hash()
			if curHash == rec.NewHash {
				continue
			}
			if curHash != rec.OldHash {
				return nil, xerrors.Errorf("dirpatch: update %s: %w", rec.Path, ErrVersionMismatch)
			}
			data, err := reconstruct(f.Data.Range(), rec)
			if err != nil {
				return nil, err
			}
			plan = append(plan, staged{path: rec.Path, data: data})

		case dirdiff.OpDelete:
			// Per spec.md §4.8: if the path is gone already, or has already
			// moved past the version this record expects, leave it alone
			// rather than failing — this is what makes re-applying (or
			// applying against a tree that deleted the file some other way)
			// a no-op instead of an error.
			f, ok := current.Get(rec.Path)
			if ok && f.Data.Range().Hash() == rec.OldHash {
				plan = append(plan, staged{path: rec.Path, delete: true})
			}

		default:
			return nil, xerrors.Errorf("dirpatch: %s: unknown op %q", rec.Path, rec.Op)
		}
	}
	return plan, nil
}

func reconstruct(source memrange.Range, rec dirdiff.Record) ([]byte, error) {
	result, err := delta.Patch(source, memrange.New(rec.Blob))
	if err != nil {
		return nil, xerrors.Errorf("dirpatch: reconstruct %s: %w", rec.Path, err)
	}
	if result.Range().Hash() != rec.NewHash {
		return nil, xerrors.Errorf("dirpatch: reconstruct %s: %w", rec.Path, ErrHashMismatch)
	}
	return result.Bytes(), nil
}

func reflect(ctx context.Context, root string, plan []staged, logger *log.Logger) error {
	log := vfile.Sink(logger)
	for _, s := range plan {
		if err := ctx.Err(); err != nil {
			return xerrors.Errorf("dirpatch: reflect: %w", err)
		}
		if s.delete {
			if err := vfile.DeleteFile(root, s.path); err != nil {
				return err
			}
			continue
		}
		if err := vfile.WriteFile(root, s.path, s.data); err != nil {
			return err
		}
	}
	log.Printf("dirpatch: applied %d records to %s", len(plan), root)
	return nil
}
