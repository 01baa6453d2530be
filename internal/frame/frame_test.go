package frame

import "testing"

func TestEncodeParseRoundTrip(t *testing.T) {
	header := Encode("yatta compress", 1234)
	payload := append(header, []byte("payload")...)

	h, rest, err := Parse(payload, "yatta compress")
	if err != nil {
		t.Fatal(err)
	}
	if h.Size != 1234 {
		t.Fatalf("size = %d, want 1234", h.Size)
	}
	if string(rest) != "payload" {
		t.Fatalf("rest = %q, want payload", rest)
	}
}

func TestParseTagMismatch(t *testing.T) {
	header := Encode("yatta compress", 1)
	if _, _, err := Parse(header, "yatta patch  "); err != ErrBadHeader {
		t.Fatalf("err = %v, want ErrBadHeader", err)
	}
}

func TestParseTooShort(t *testing.T) {
	if _, _, err := Parse([]byte{1, 2, 3}, "yatta compress"); err != ErrBadHeader {
		t.Fatalf("err = %v, want ErrBadHeader", err)
	}
}

func TestBitFlipInTagFails(t *testing.T) {
	header := Encode("yatta compress", 1)
	for i := 0; i < TagSize; i++ {
		corrupt := append([]byte(nil), header...)
		corrupt[i] ^= 0x01
		if _, _, err := Parse(corrupt, "yatta compress"); err != ErrBadHeader {
			t.Fatalf("bit flip at %d: err = %v, want ErrBadHeader", i, err)
		}
	}
}
