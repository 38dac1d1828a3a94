package domain

import (
	"strings"
	"time"
)

// Address represents a managed address whose signing key is derivable
// from the configured mnemonic at the stored derivation index.
// Immutable once created.
type Address struct {
	Address   string
	Index     int64
	CreatedAt time.Time
}

// NormalizeAddress lowercases a hex address so lookups are
// case-insensitive regardless of checksum casing on the wire.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
