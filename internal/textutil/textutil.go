package textutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HasBOM reports whether data starts with a UTF-8 byte-order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf8BOM)
}

// StripBOM removes a leading UTF-8 byte-order mark if present.
func StripBOM(data []byte) []byte {
	if HasBOM(data) {
		return data[len(utf8BOM):]
	}
	return data
}

// Hash computes a SHA-256 hex hash of a byte slice, used to detect
// unchanged files and no-op rewrites.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
