package vfile

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/buffer"
)

// Sink returns logger, or a discard logger if logger is nil — per spec.md
// §9's "caller-supplied sink, no process-wide state" design note. Exported
// so callers outside this package (e.g. internal/dirpatch, which logs its
// own summary line after reusing vfile's scan/write machinery) standardize
// on the same nil-safe helper instead of repeating the nil check.
func Sink(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return discardLogger
}

var discardLogger = log.New(devNull{}, "", 0)

type devNull struct{}

func (devNull) Write(p []byte) (int, error) { return len(p), nil }

// excluded reports whether relPath should be skipped per exclusions: an
// entry matches if it equals the relative path outright, or equals the
// file's extension (including the leading dot).
func excluded(relPath string, exclusions []string) bool {
	ext := filepath.Ext(relPath)
	for _, e := range exclusions {
		if e == "" {
			continue
		}
		if e == relPath || e == ext {
			return true
		}
	}
	return false
}

// Scan walks root recursively, reading every regular file into the returned
// Model keyed by its slash-separated path relative to root. Entries matching
// exclusions (by exact relative path or file extension) are skipped.
func Scan(root string, exclusions []string, logger *log.Logger) (*Model, error) {
	log := Sink(logger)
	m := New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, exclusions) {
			log.Printf("vfile: skipping excluded file %s", rel)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		log.Printf("vfile: read %s (%d bytes)", rel, len(data))
		return m.Add(rel, buffer.FromBytes(data))
	})
	if err != nil {
		return nil, xerrors.Errorf("%w: scan %s: %v", ErrIO, root, err)
	}
	return m, nil
}

