// Package backup provides snapshot and restore for the Goliath memory file,
// with tiered retention and integrity verification. Accumulated facts are
// the one thing a corrupt memory file silently discards, so snapshots are
// the recovery path.
package backup

import "time"

// Config holds backup service configuration.
type Config struct {
	// MemoryPath is the memory JSON file to snapshot.
	MemoryPath string

	// Dir is the directory where snapshots are stored.
	Dir string

	// Interval is the duration between automatic snapshots (default: 24h).
	Interval time.Duration

	// Retention defines how many snapshots to keep at each age tier.
	Retention RetentionPolicy

	// Verify enables JSON integrity checking after each snapshot.
	Verify bool
}

// RetentionPolicy defines how many snapshots to keep per age tier:
// hourly (<24h old), daily (1-7 days), weekly (7-30 days), monthly
// (30-365 days). Snapshots older than a year are always removed.
type RetentionPolicy struct {
	Hourly  int // default: 24
	Daily   int // default: 7
	Weekly  int // default: 4
	Monthly int // default: 12
}

// Info contains metadata about one snapshot file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Result contains the outcome of a snapshot operation.
type Result struct {
	Path     string
	Duration time.Duration
	Size     int64
	Verified bool
}
