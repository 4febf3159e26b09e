// Package hex wraps hexadecimal encoding with the short call names used
// throughout the codebase, plus validation helpers for the fixed-width hex
// fields of the protocol.
package hex

import (
	"encoding/hex"

	"quill.dev/pkg/utils/errorf"
)

// Enc encodes b as lowercase hex.
func Enc(b []byte) string { return hex.EncodeToString(b) }

// Dec decodes a hex string.
func Dec(s string) (b []byte, err error) { return hex.DecodeString(s) }

// DecLen decodes a hex string and requires the result to be exactly n bytes.
func DecLen(s string, n int) (b []byte, err error) {
	if b, err = hex.DecodeString(s); err != nil {
		return
	}
	if len(b) != n {
		return nil, errorf.E("hex: got %d bytes, want %d", len(b), n)
	}
	return
}

// Valid reports whether s is well-formed hex of even length.
func Valid(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
