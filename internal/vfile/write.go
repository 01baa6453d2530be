package vfile

import (
	"log"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
)

// writeAtomic writes data to dest via a renameio temp file, the same
// library and call pattern the teacher uses throughout internal/build and
// internal/install. The pending file's Cleanup is registered with
// yatta.RegisterAtExit instead of a local defer: Cleanup is a safe no-op once
// CloseAtomicallyReplace has succeeded, and if this write fails before that
// point, the leftover temp file is removed when cmd/yatta calls
// yatta.RunAtExit as the command ends, whether the command succeeded or
// failed.
func writeAtomic(dest string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xerrors.Errorf("%w: mkdir for %s: %v", ErrIO, dest, err)
	}
	t, err := renameio.TempFile("", dest)
	if err != nil {
		return xerrors.Errorf("%w: tempfile for %s: %v", ErrIO, dest, err)
	}
	yatta.RegisterAtExit(t.Cleanup)
	if err := t.Chmod(mode); err != nil {
		return xerrors.Errorf("%w: chmod %s: %v", ErrIO, dest, err)
	}
	if _, err := t.Write(data); err != nil {
		return xerrors.Errorf("%w: write %s: %v", ErrIO, dest, err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("%w: replace %s: %v", ErrIO, dest, err)
	}
	return nil
}

// Write reflects every file in the model onto disk under root, creating
// parent directories as needed and overwriting existing files. Each file is
// written atomically so a concurrent reader never observes a partial write;
// spec.md §4.5 notes the overall operation is not atomic across files, so a
// failure partway through aborts with ErrIO and leaves whatever files were
// already written in place.
func (m *Model) Write(root string, logger *log.Logger) error {
	log := Sink(logger)
	for _, f := range m.files {
		dest := filepath.Join(root, filepath.FromSlash(f.RelativePath))
		if err := writeAtomic(dest, f.Data.Bytes(), 0o644); err != nil {
			return err
		}
		log.Printf("vfile: wrote %s (%d bytes)", f.RelativePath, f.Data.Size())
	}
	return nil
}

// WriteFile reflects a single file onto disk, used by the directory patcher
// to apply one staged update/new record at a time without rewriting every
// other file in the model.
func WriteFile(root, relPath string, data []byte) error {
	dest := filepath.Join(root, filepath.FromSlash(relPath))
	return writeAtomic(dest, data, 0o644)
}

// DeleteFile removes a single file from disk, used by the directory patcher
// to apply a staged deletion. A missing file is not an error.
func DeleteFile(root, relPath string) error {
	dest := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return xerrors.Errorf("%w: delete %s: %v", ErrIO, relPath, err)
	}
	return nil
}
