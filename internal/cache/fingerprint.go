package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Fingerprint is a hex-encoded SHA-256 digest of a file's raw bytes. It is
// a pure function of content: two files with identical bytes share one
// fingerprint regardless of name, path, or timestamps.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// FingerprintFile hashes the file at path and returns its fingerprint.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// fingerprintBytes hashes an in-memory buffer.
func fingerprintBytes(b []byte) Fingerprint {
	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:]))
}
