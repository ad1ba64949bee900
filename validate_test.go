package marq

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
	noisy := bytes.Repeat([]byte{'a', 'b', 'c', 0x01}, 32)
	if err := ValidateInput(noisy); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput for control-heavy input, got %v", err)
	}
}

func TestValidateInputAcceptsFormFeed(t *testing.T) {
	data := []byte(strings.Repeat("page\f", 40))
	if err := ValidateInput(data); err != nil {
		t.Fatalf("form feeds must count as text, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	src := []byte("a\x00b\xffc\x1bd\te\f\r\n")
	got := Sanitize(nil, src)
	if string(got) != "abcd\te\f\r\n" {
		t.Fatalf("unexpected sanitized output %q", got)
	}
	buf := make([]byte, 0, 64)
	if out := Sanitize(buf, []byte("ok")); &out[0] != &buf[:1][0] {
		t.Fatalf("expected dst to be reused")
	}
}

func TestParseReaderValidates(t *testing.T) {
	_, _, err := ParseReader(ParseRequest{Reader: bytes.NewReader([]byte{0xff, 'a'})})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	root, _, err := ParseReader(ParseRequest{Reader: bytes.NewReader([]byte("a\x00b")), Sanitize: true})
	if err != nil {
		t.Fatalf("sanitized parse: %v", err)
	}
	if root.Text() != "ab" {
		t.Fatalf("unexpected text %q", root.Text())
	}
	if _, _, err := ParseReader(ParseRequest{}); err == nil {
		t.Fatalf("expected error for nil reader")
	}
}
