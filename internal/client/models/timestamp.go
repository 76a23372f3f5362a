package models

import "math"

// NsPerMs is the scale between in-memory (ms) and wire (ns) timestamps.
const NsPerMs = 1_000_000

// MaxTimestampMs is the largest millisecond timestamp that converts to
// nanoseconds without overflowing the wire's uint64.
const MaxTimestampMs = math.MaxUint64 / NsPerMs

// MsToNs converts a millisecond timestamp to wire nanoseconds. Negative input
// is clamped to zero and input above MaxTimestampMs to MaxTimestampMs.
func MsToNs(ms int64) uint64 {
	if ms <= 0 {
		return 0
	}
	if uint64(ms) > MaxTimestampMs {
		return MaxTimestampMs * NsPerMs
	}
	return uint64(ms) * NsPerMs
}

// NsToMs converts wire nanoseconds to milliseconds, truncating sub-millisecond
// precision.
func NsToMs(ns uint64) int64 {
	return int64(ns / NsPerMs)
}
