package dirpatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/dirdiff"
	"github.com/Yattabyte/Installer/internal/vfile"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestApplyAddUpdateDelete(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), []byte("keep me"))
	writeFile(t, filepath.Join(root, "old.txt"), []byte("old content"))
	writeFile(t, filepath.Join(root, "gone.txt"), []byte("delete me"))

	oldModel, err := vfile.Scan(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	newModel := vfile.New()
	must(t, newModel.Add("keep.txt", buffer.FromBytes([]byte("keep me"))))
	must(t, newModel.Add("old.txt", buffer.FromBytes([]byte("new content, longer than before"))))
	must(t, newModel.Add("added.txt", buffer.FromBytes([]byte("fresh file"))))

	patch, err := dirdiff.Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}

	if err := Apply(context.Background(), root, patch.Range(), nil, nil); err != nil {
		t.Fatal(err)
	}

	got, err := vfile.Scan(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("Len = %d, want 3", got.Len())
	}
	assertContent(t, got, "keep.txt", "keep me")
	assertContent(t, got, "old.txt", "new content, longer than before")
	assertContent(t, got, "added.txt", "fresh file")
	if _, ok := got.Get("gone.txt"); ok {
		t.Fatal("gone.txt should have been deleted")
	}
}

func TestApplyRejectsStaleBase(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("version one"))

	oldModel, err := vfile.Scan(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	newModel := vfile.New()
	must(t, newModel.Add("a.txt", buffer.FromBytes([]byte("version two"))))

	patch, err := dirdiff.Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}

	// Mutate the tree out from under the patch before applying it.
	writeFile(t, filepath.Join(root, "a.txt"), []byte("a different version entirely"))

	if err := Apply(context.Background(), root, patch.Range(), nil, nil); err == nil {
		t.Fatal("expected validation failure against a stale base")
	}
	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a different version entirely" {
		t.Fatal("tree should be untouched after a failed validation")
	}
}

// A D record whose target is already absent from disk is left alone rather
// than failing (spec.md §4.8): applying a patch against a tree where the
// file was already removed some other way is a no-op for that record, not
// an error.
func TestApplyMissingDeleteTargetIsNoop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("stays"))

	oldModel := vfile.New()
	must(t, oldModel.Add("a.txt", buffer.FromBytes([]byte("stays"))))
	must(t, oldModel.Add("b.txt", buffer.FromBytes([]byte("already gone on disk"))))
	newModel := vfile.New()
	must(t, newModel.Add("a.txt", buffer.FromBytes([]byte("stays"))))

	patch, err := dirdiff.Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}

	if err := Apply(context.Background(), root, patch.Range(), nil, nil); err != nil {
		t.Fatalf("Apply should tolerate an already-missing delete target, got %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "stays" {
		t.Fatal("a.txt should be untouched")
	}
}

// A canceled ctx is honored at the next record boundary instead of being
// silently ignored.
func TestApplyHonorsCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("one"))

	oldModel := vfile.New()
	must(t, oldModel.Add("a.txt", buffer.FromBytes([]byte("one"))))
	newModel := vfile.New()
	must(t, newModel.Add("a.txt", buffer.FromBytes([]byte("two"))))

	patch, err := dirdiff.Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Apply(ctx, root, patch.Range(), nil, nil); err == nil {
		t.Fatal("expected Apply to fail against an already-canceled context")
	}
	got, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "one" {
		t.Fatal("a.txt should be untouched after a canceled apply")
	}
}

// Re-applying the same patch after a successful apply must be a no-op: every
// U/N record's path is already at NewHash, and the D record's target is
// already gone, so validate stages nothing.
func TestApplyTwiceIsNoop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), []byte("keep me"))
	writeFile(t, filepath.Join(root, "old.txt"), []byte("old content"))
	writeFile(t, filepath.Join(root, "gone.txt"), []byte("delete me"))

	oldModel, err := vfile.Scan(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	newModel := vfile.New()
	must(t, newModel.Add("keep.txt", buffer.FromBytes([]byte("keep me"))))
	must(t, newModel.Add("old.txt", buffer.FromBytes([]byte("new content, longer than before"))))
	must(t, newModel.Add("added.txt", buffer.FromBytes([]byte("fresh file"))))

	patch, err := dirdiff.Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(context.Background(), root, patch.Range(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := Apply(context.Background(), root, patch.Range(), nil, nil); err != nil {
		t.Fatalf("second Apply should be a no-op, got %v", err)
	}

	got, err := vfile.Scan(root, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Fatalf("Len = %d, want 3", got.Len())
	}
	assertContent(t, got, "keep.txt", "keep me")
	assertContent(t, got, "old.txt", "new content, longer than before")
	assertContent(t, got, "added.txt", "fresh file")
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func assertContent(t *testing.T, m *vfile.Model, path, want string) {
	t.Helper()
	f, ok := m.Get(path)
	if !ok {
		t.Fatalf("%s missing from model", path)
	}
	if string(f.Data.Bytes()) != want {
		t.Fatalf("%s = %q, want %q", path, f.Data.Bytes(), want)
	}
}
