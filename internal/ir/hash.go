package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSource     = "volley/source/v1"
	DomainGeneration = "volley/generation/v1"
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

// SourceHash computes the content hash of one configuration source.
func SourceHash(name string, data []byte) string {
	buf := make([]byte, 0, len(name)+1+len(data))
	buf = append(buf, name...)
	buf = append(buf, 0x00)
	buf = append(buf, data...)
	return hashWithDomain(DomainSource, buf)
}

// GenerationHash combines per-source hashes into a generation hash.
// The result is independent of map iteration order: sources are sorted by name.
func GenerationHash(sourceHashes map[string]string) string {
	names := make([]string, 0, len(sourceHashes))
	for name := range sourceHashes {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf []byte
	for _, name := range names {
		buf = append(buf, name...)
		buf = append(buf, 0x00)
		buf = append(buf, sourceHashes[name]...)
		buf = append(buf, '\n')
	}
	return hashWithDomain(DomainGeneration, buf)
}
