package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRequest = "pathq/request/v1"
	DomainQuery   = "pathq/query/v1"
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

// RequestID computes the content-addressed ID of a request.
// Requests that differ only in prefix declaration order share an ID.
// Criterion order and Unicode normalization are significant because both
// change the textual output.
func RequestID(req Request) (string, error) {
	canonical, err := MarshalCanonical(req.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("RequestID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}

// QueryHash identifies a compiled query text.
func QueryHash(text string) string {
	return hashWithDomain(DomainQuery, []byte(text))
}

// MustRequestID is like RequestID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRequestID(req Request) string {
	id, err := RequestID(req)
	if err != nil {
		panic(err)
	}
	return id
}
