package dirdiff

import (
	"testing"

	"github.com/Yattabyte/Installer/internal/buffer"
	"github.com/Yattabyte/Installer/internal/vfile"
)

func mustAdd(t *testing.T, m *vfile.Model, path string, data []byte) {
	t.Helper()
	if err := m.Add(path, buffer.FromBytes(data)); err != nil {
		t.Fatal(err)
	}
}

func TestDiffAddUpdateDeleteUnchanged(t *testing.T) {
	oldModel := vfile.New()
	mustAdd(t, oldModel, "a.txt", []byte("unchanged"))
	mustAdd(t, oldModel, "b.txt", []byte("old b"))
	mustAdd(t, oldModel, "c.txt", []byte("gone soon"))

	newModel := vfile.New()
	mustAdd(t, newModel, "a.txt", []byte("unchanged"))
	mustAdd(t, newModel, "b.txt", []byte("new b"))
	mustAdd(t, newModel, "d.txt", []byte("brand new"))

	diff, err := Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}
	records, err := Decode(diff.Range())
	if err != nil {
		t.Fatal(err)
	}

	byPath := map[string]Record{}
	for _, r := range records {
		byPath[r.Path] = r
	}

	if _, ok := byPath["a.txt"]; ok {
		t.Fatal("unchanged file a.txt should not produce a record")
	}
	if r, ok := byPath["b.txt"]; !ok || r.Op != OpUpdate {
		t.Fatalf("expected U record for b.txt, got %+v, ok=%v", r, ok)
	}
	if r, ok := byPath["d.txt"]; !ok || r.Op != OpNew {
		t.Fatalf("expected N record for d.txt, got %+v, ok=%v", r, ok)
	}
	if r, ok := byPath["c.txt"]; !ok || r.Op != OpDelete {
		t.Fatalf("expected D record for c.txt, got %+v, ok=%v", r, ok)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
}

func TestDiffIdenticalModelsProduceNoRecords(t *testing.T) {
	oldModel := vfile.New()
	mustAdd(t, oldModel, "a.txt", []byte("same"))
	newModel := vfile.New()
	mustAdd(t, newModel, "a.txt", []byte("same"))

	diff, err := Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}
	records, err := Decode(diff.Range())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("len(records) = %d, want 0", len(records))
	}
}

func TestDiffDeleteRecordHasNoNewHash(t *testing.T) {
	oldModel := vfile.New()
	mustAdd(t, oldModel, "gone.txt", []byte("bye"))
	newModel := vfile.New()

	diff, err := Diff(oldModel, newModel)
	if err != nil {
		t.Fatal(err)
	}
	records, err := Decode(diff.Range())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Op != OpDelete || rec.NewHash != 0 || rec.OldHash == 0 {
		t.Fatalf("unexpected delete record: %+v", rec)
	}
}
