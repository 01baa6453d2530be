package memrange

import "testing"

func TestEmpty(t *testing.T) {
	var r Range
	if !r.Empty() {
		t.Fatal("zero Range should be empty")
	}
	if got := New([]byte{1}).Empty(); got {
		t.Fatal("non-empty slice should not be empty")
	}
}

func TestAtBounds(t *testing.T) {
	r := New([]byte{1, 2, 3})
	b, err := r.At(1)
	if err != nil {
		t.Fatal(err)
	}
	if b != 2 {
		t.Fatalf("At(1) = %d, want 2", b)
	}
	if _, err := r.At(3); err != ErrOutOfBounds {
		t.Fatalf("At(3) err = %v, want ErrOutOfBounds", err)
	}
	if _, err := r.At(-1); err != ErrOutOfBounds {
		t.Fatalf("At(-1) err = %v, want ErrOutOfBounds", err)
	}
}

func TestReadWriteAt(t *testing.T) {
	r := New(make([]byte, 8))
	if err := r.WriteAt([]byte{9, 9}, 3); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, 2)
	if err := r.ReadAt(dst, 3, 2); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 9 || dst[1] != 9 {
		t.Fatalf("ReadAt = %v, want [9 9]", dst)
	}
	if err := r.WriteAt([]byte{1, 2, 3}, 7); err != ErrOutOfBounds {
		t.Fatalf("WriteAt overflow err = %v, want ErrOutOfBounds", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	h1 := New(data).Hash()
	h2 := New(append([]byte(nil), data...)).Hash()
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %d != %d", h1, h2)
	}
}

func TestHashSensitivity(t *testing.T) {
	a := New([]byte("abcdefgh")).Hash()
	b := New([]byte("abcdefgi")).Hash()
	if a == b {
		t.Fatal("single-byte change should (almost certainly) change the hash")
	}
}

func TestHashTrailingBytes(t *testing.T) {
	// exercises the non-8-aligned remainder path
	h := New([]byte("12345")).Hash()
	if h == 0 {
		t.Fatal("hash should not be zero for non-empty input")
	}
}

func TestSlice(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5})
	sub, err := r.Slice(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Size() != 3 {
		t.Fatalf("Slice size = %d, want 3", sub.Size())
	}
	if _, err := r.Slice(4, 1); err != ErrOutOfBounds {
		t.Fatalf("Slice(4,1) err = %v, want ErrOutOfBounds", err)
	}
	if _, err := r.Slice(0, 6); err != ErrOutOfBounds {
		t.Fatalf("Slice(0,6) err = %v, want ErrOutOfBounds", err)
	}
}
