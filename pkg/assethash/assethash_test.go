package assethash

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const emptyInputBase64 = "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSumDeterministic(t *testing.T) {
	path := writeFile(t, "bundle.zip", []byte("function bytes"))

	first, err := Sum(path)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	second, err := Sum(path)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if first.Base64() != second.Base64() {
		t.Fatalf("digest changed between invocations: %s != %s", first, second)
	}
}

func TestSumDistinguishesContent(t *testing.T) {
	a, err := Sum(writeFile(t, "a.zip", []byte("content a")))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	b, err := Sum(writeFile(t, "b.zip", []byte("content b")))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if a.Base64() == b.Base64() {
		t.Fatalf("distinct contents produced identical digest %s", a)
	}
}

func TestSumEmptyFile(t *testing.T) {
	d, err := Sum(writeFile(t, "empty.zip", nil))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if got := d.Base64(); got != emptyInputBase64 {
		t.Fatalf("empty-input digest = %s, want %s", got, emptyInputBase64)
	}
}

func TestSumConsumesFullStream(t *testing.T) {
	// Large enough that a partial read would be caught: the digest must match
	// an independent single-shot hash of the whole content.
	content := make([]byte, 1<<20)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("rand: %v", err)
	}
	path := writeFile(t, "large.zip", content)

	d, err := Sum(path)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	want := sha256.Sum256(content)
	if d.Base64() != base64.StdEncoding.EncodeToString(want[:]) {
		t.Fatalf("streamed digest does not match full-content hash")
	}
}

func TestSumMissingFile(t *testing.T) {
	d, err := Sum(filepath.Join(t.TempDir(), "missing.zip"))
	if err == nil {
		t.Fatal("Sum() expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Sum() error = %v, want not-exist", err)
	}
	if !d.IsZero() {
		t.Fatalf("failed Sum must return zero digest, got %s", d)
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	content := []byte("same bytes either way")
	d, err := SumReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("SumReader() error = %v", err)
	}
	f, err := Sum(writeFile(t, "bundle.zip", content))
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if d.Hex() != f.Hex() {
		t.Fatalf("reader and file digests differ: %s != %s", d.Hex(), f.Hex())
	}
}

func TestDigestRenderings(t *testing.T) {
	d, err := SumReader(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("SumReader() error = %v", err)
	}
	if d.IsZero() {
		t.Fatal("successful digest reported as zero")
	}
	if len(d.Hex()) != 64 {
		t.Fatalf("hex rendering length = %d, want 64", len(d.Hex()))
	}
	if d.String() != d.Base64() {
		t.Fatalf("String() = %s, want base64 form %s", d.String(), d.Base64())
	}
}
