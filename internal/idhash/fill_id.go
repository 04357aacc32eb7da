package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeFillID computes a deterministic fill_id using SHA256.
// Formula: SHA256(symbol|date|time|price|shares)
// Returns hex-encoded hash (64 characters).
func ComputeFillID(symbol, date, clock string, price float64, shares int) string {
	data := fmt.Sprintf("%s|%s|%s|%.4f|%d", symbol, date, clock, price, shares)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
