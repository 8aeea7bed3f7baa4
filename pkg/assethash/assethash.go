// Package assethash fingerprints packaged deployment bundles.
//
// The digest is the redeploy trigger for function resources: the provisioning
// engine compares it against the deployed value and only replaces code when it
// changes. It must therefore cover the exact bytes that will be uploaded.
package assethash

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is a SHA-256 fingerprint of a bundle's content.
//
// The zero value is not the digest of anything; callers must not use a Digest
// obtained from a failed Sum.
type Digest struct {
	sum [sha256.Size]byte
	ok  bool
}

// Sum streams the file at path through SHA-256 and returns its digest.
// The digest is computed over the full content; Sum only returns once the
// stream has been consumed to EOF.
func Sum(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	return SumReader(f)
}

// SumReader consumes r to EOF and returns the SHA-256 digest of everything
// read. The digest is published only after io.Copy observes EOF; a partially
// read stream surfaces as an error, never as a short digest.
func SumReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("read artifact: %w", err)
	}

	var d Digest
	h.Sum(d.sum[:0])
	d.ok = true
	return d, nil
}

// Base64 renders the digest in standard base64, the form function resources
// carry as their source hash.
func (d Digest) Base64() string {
	return base64.StdEncoding.EncodeToString(d.sum[:])
}

// Hex renders the digest as lowercase hex, the filesystem-safe form used for
// asset directory names.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.sum[:])
}

// IsZero reports whether d was produced by a successful Sum.
func (d Digest) IsZero() bool {
	return !d.ok
}

func (d Digest) String() string {
	return d.Base64()
}
