// Package vfile implements the in-memory directory representation
// (spec.md's DirectoryModel): an ordered collection of virtual files, each a
// relative path paired with its bytes, loaded from and written back to a
// filesystem root.
package vfile

import (
	"errors"
	"strings"

	"github.com/Yattabyte/Installer/internal/buffer"
)

// ErrBadPath is returned when a relative path violates the invariants: it
// must be non-empty, use '/' as separator, and contain no ".." segment.
var ErrBadPath = errors.New("vfile: bad path")

// ErrDuplicatePath is returned when adding a path already present in the
// model.
var ErrDuplicatePath = errors.New("vfile: duplicate path")

// ErrIO is wrapped by the error Scan or Write returns on a filesystem
// failure. The underlying error is included in the message text only; it is
// not itself reachable through errors.Is/errors.As.
var ErrIO = errors.New("vfile: io failure")

// VirtualFile is one entry of a Model: a path relative to the model's root,
// and its content.
type VirtualFile struct {
	RelativePath string
	Data         *buffer.Buffer
}

// Model is an ordered list of VirtualFiles. The zero Model is empty and
// ready to use. Order is insertion order and is preserved across package
// round-trips.
type Model struct {
	files []VirtualFile
	index map[string]int
}

// New returns an empty Model.
func New() *Model {
	return &Model{index: make(map[string]int)}
}

// ValidatePath checks path against the invariants from spec.md §3: non-empty,
// '/'-separated, and free of ".." segments.
func ValidatePath(path string) error {
	if path == "" {
		return ErrBadPath
	}
	if strings.Contains(path, `\`) {
		return ErrBadPath
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." || seg == "" {
			return ErrBadPath
		}
	}
	return nil
}

// Files returns the model's entries in insertion order. The returned slice
// must not be mutated.
func (m *Model) Files() []VirtualFile {
	return m.files
}

// Len returns the number of files in the model.
func (m *Model) Len() int {
	return len(m.files)
}

// Get looks up a file by relative path.
func (m *Model) Get(path string) (*VirtualFile, bool) {
	if m.index == nil {
		return nil, false
	}
	i, ok := m.index[path]
	if !ok {
		return nil, false
	}
	return &m.files[i], true
}

// Add appends a new file to the model. It fails with ErrBadPath if the path
// is invalid, or ErrDuplicatePath if the path already exists.
func (m *Model) Add(path string, data *buffer.Buffer) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, exists := m.index[path]; exists {
		return ErrDuplicatePath
	}
	m.index[path] = len(m.files)
	m.files = append(m.files, VirtualFile{RelativePath: path, Data: data})
	return nil
}

// Replace overwrites the content of an existing file in place, preserving
// its position.
func (m *Model) Replace(path string, data *buffer.Buffer) error {
	i, ok := m.index[path]
	if !ok {
		return ErrBadPath
	}
	m.files[i].Data = data
	return nil
}

// Remove deletes a file by path, preserving the relative order of the
// remaining entries. It reports whether the path was present.
func (m *Model) Remove(path string) bool {
	i, ok := m.index[path]
	if !ok {
		return false
	}
	m.files = append(m.files[:i], m.files[i+1:]...)
	delete(m.index, path)
	for p, idx := range m.index {
		if idx > i {
			m.index[p] = idx - 1
		}
	}
	return true
}
