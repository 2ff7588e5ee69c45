// Package idgen produces ULID-based identifiers and reference numbers.
// ULIDs are lexicographically sortable by creation time, which keeps
// store scans and reference lookups in chronological order for free.
package idgen

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID identifiers.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// ReferenceGenerator produces human-scannable reference numbers of the form
// PREFIX-ULID, e.g. TRF-01J9ZK7M3QW8X5R2T6V4N8B0CD. The embedded ULID makes
// references unique without any coordination between processes.
type ReferenceGenerator struct{}

// NewReferenceGenerator creates a new ReferenceGenerator.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{}
}

// Generate returns a new reference number with the given prefix.
func (g *ReferenceGenerator) Generate(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}
