package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for record fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainDistinct = "orgfake/distinct/v1"
	DomainGroup    = "orgfake/group/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DistinctKey fingerprints a projected record for duplicate elimination.
// Two records share a key when they have the same logical name and the same
// attribute names bound to equal values. The record ID is not part of the key.
// Display names on lookups and option sets are ignored. Strings are
// compared byte for byte, without Unicode normalization.
func DistinctKey(logicalName string, attrs Attributes) (string, error) {
	obj := map[string]any{
		"entity":     logicalName,
		"attributes": attributesNode(attrs, false),
	}
	canonical, err := marshalExact(obj)
	if err != nil {
		return "", fmt.Errorf("DistinctKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDistinct, canonical), nil
}

// GroupKey fingerprints an ordered tuple of group-by values.
func GroupKey(values []Value) (string, error) {
	elems := make([]any, len(values))
	for i, v := range values {
		elems[i] = valueNode(v, false)
	}
	canonical, err := marshalExact(elems)
	if err != nil {
		return "", fmt.Errorf("GroupKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGroup, canonical), nil
}
