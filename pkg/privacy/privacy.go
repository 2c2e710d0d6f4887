// Package privacy derives pseudonymous visitor identifiers. Raw client
// addresses are never persisted; only a truncated digest of address plus a
// time bucket leaves this package, so the same visitor yields a stable token
// within a bucket and an unlinkable one across buckets.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FingerprintLen is the hex-character length of a visitor fingerprint.
const FingerprintLen = 16

// Fingerprint returns a fixed-length lowercase hex token for addr scoped to
// the given time bucket. Deterministic per (addr, bucket), not reversible.
func Fingerprint(addr, bucket string) string {
	sum := sha256.Sum256([]byte(addr + bucket))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}

// Day returns t's UTC calendar date, the daily bucket suffix.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekStart returns the UTC date of the Monday beginning t's week. Sundays
// fold back to the prior Monday.
func WeekStart(t time.Time) string {
	t = t.UTC()
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}
