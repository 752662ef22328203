package sealant

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// envelopeVersion is the only framing version this package understands.
// A version byte lets the framing evolve without breaking existing
// ciphertexts.
const envelopeVersion = 0x01

// headerLen is the fixed prefix before the IV: version byte plus the
// little-endian uint16 IV length.
const headerLen = 3

// writeHeader frames the version byte, IV length and IV into buf.
func writeHeader(buf *bytes.Buffer, iv []byte) {
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(iv)))
	buf.WriteByte(envelopeVersion)
	buf.Write(n[:])
	buf.Write(iv)
}

// readHeader parses the envelope prefix of b and returns the IV and the
// remaining ciphertext bytes.
func readHeader(b []byte) (iv, ciphertext []byte, err error) {
	if len(b) == 0 {
		return nil, nil, fmt.Errorf("%w: empty envelope", ErrTruncated)
	}
	// The version byte is judged before any length accounting.
	if b[0] != envelopeVersion {
		return nil, nil, fmt.Errorf("%w: %#x", ErrUnsupportedProtocol, b[0])
	}
	if len(b) < headerLen {
		return nil, nil, fmt.Errorf("%w: %d header bytes", ErrTruncated, len(b))
	}
	ivLen := int(binary.LittleEndian.Uint16(b[1:headerLen]))
	if len(b) < headerLen+ivLen {
		return nil, nil, fmt.Errorf("%w: declared IV length %d, %d bytes available",
			ErrTruncated, ivLen, len(b)-headerLen)
	}
	return b[headerLen : headerLen+ivLen], b[headerLen+ivLen:], nil
}

// IsEnveloped reports whether b has the shape of a ciphertext envelope:
// version 1, a declared IV length of 8 or 16, and at least that many IV
// bytes present. This is a shape probe, not authentication; adversarial
// input can produce false positives. Ciphertext bytes are never
// inspected.
func IsEnveloped(b []byte) bool {
	if len(b) < headerLen || b[0] != envelopeVersion {
		return false
	}
	ivLen := int(binary.LittleEndian.Uint16(b[1:headerLen]))
	if ivLen != 8 && ivLen != 16 {
		return false
	}
	return len(b) >= headerLen+ivLen
}
