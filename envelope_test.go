package sealant

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteReadHeader_RoundTrip(t *testing.T) {
	iv := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	var buf bytes.Buffer
	writeHeader(&buf, iv)
	buf.Write([]byte("ciphertext"))

	got, rest, err := readHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("readHeader() error: %v", err)
	}
	if !bytes.Equal(got, iv) {
		t.Errorf("IV = %v, want %v", got, iv)
	}
	if string(rest) != "ciphertext" {
		t.Errorf("rest = %q, want %q", rest, "ciphertext")
	}
}

func TestWriteHeader_Layout(t *testing.T) {
	iv := make([]byte, 16)
	var buf bytes.Buffer
	writeHeader(&buf, iv)

	b := buf.Bytes()
	if b[0] != 0x01 {
		t.Errorf("version byte = %#x, want 0x01", b[0])
	}
	if got := int(b[1]) | int(b[2])<<8; got != 16 {
		t.Errorf("IV length = %d, want 16 (little-endian)", got)
	}
	if len(b) != 3+16 {
		t.Errorf("header length = %d, want 19", len(b))
	}
}

func TestReadHeader_UnsupportedVersion(t *testing.T) {
	b := []byte{0x02, 16, 0}
	b = append(b, make([]byte, 32)...)

	_, _, err := readHeader(b)
	if !errors.Is(err, ErrUnsupportedProtocol) {
		t.Errorf("readHeader() error = %v, want ErrUnsupportedProtocol", err)
	}

	// The version byte is judged before length accounting: a short
	// input still reports the wrong version, not truncation.
	_, _, err = readHeader([]byte{0x02})
	if !errors.Is(err, ErrUnsupportedProtocol) {
		t.Errorf("readHeader() error = %v, want ErrUnsupportedProtocol", err)
	}
}

func TestReadHeader_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "version only", input: []byte{0x01}},
		{name: "short iv", input: []byte{0x01, 16, 0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readHeader(tt.input)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("readHeader(%v) error = %v, want ErrTruncated", tt.input, err)
			}
		})
	}
}

func TestIsEnveloped(t *testing.T) {
	envelope16 := append([]byte{0x01, 16, 0}, make([]byte, 16)...)
	envelope8 := append([]byte{0x01, 8, 0}, make([]byte, 8)...)

	tests := []struct {
		name  string
		input []byte
		want  bool
	}{
		{name: "aes shaped", input: envelope16, want: true},
		{name: "des shaped", input: envelope8, want: true},
		{name: "wrong version", input: append([]byte{0x02, 16, 0}, make([]byte, 16)...), want: false},
		{name: "odd iv length", input: append([]byte{0x01, 12, 0}, make([]byte, 16)...), want: false},
		{name: "declared iv missing", input: []byte{0x01, 16, 0, 1, 2}, want: false},
		{name: "too short", input: []byte{0x01, 8}, want: false},
		{name: "empty", input: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEnveloped(tt.input); got != tt.want {
				t.Errorf("IsEnveloped() = %v, want %v", got, tt.want)
			}
		})
	}
}
