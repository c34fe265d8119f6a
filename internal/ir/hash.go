package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDocument = "specfold/document/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentID computes the content-addressed identity of a document over
// its canonical JSON form. Structurally equal documents always hash to
// the same ID, regardless of map iteration order or provenance pointer
// identity.
func DocumentID(d *Document) (string, error) {
	canonical, err := CanonicalDocument(d)
	if err != nil {
		return "", fmt.Errorf("DocumentID: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// MustDocumentID is like DocumentID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDocumentID(d *Document) string {
	id, err := DocumentID(d)
	if err != nil {
		panic(err)
	}
	return id
}
