package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// binarySniffLen is how many leading bytes are inspected for a NUL byte when
// deciding whether content is binary.
const binarySniffLen = 8000

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content",
// mirroring Git's object hashing but with SHA-256.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashBlob returns the hash a file's content will be stored under: the
// object hash of its line-ending normalized form.
func HashBlob(data []byte) Hash {
	return HashObject(TypeBlob, NormalizeLineEndings(data))
}

// NormalizeLineEndings rewrites CRLF sequences to LF. Binary content (a NUL
// byte within the first 8000 bytes) is returned unchanged.
func NormalizeLineEndings(data []byte) []byte {
	if IsBinary(data) || !bytes.Contains(data, []byte("\r\n")) {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

// IsBinary reports whether data looks like binary content.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// ValidHash reports whether h is a well-formed 64-character lowercase hex
// digest.
func ValidHash(h Hash) bool {
	if len(h) != 64 {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns the first 8 characters of h for display.
func (h Hash) Short() string {
	s := string(h)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
