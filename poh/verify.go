// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package poh

import (
	"time"

	"github.com/slonana-labs/slonana-go/common"
)

// VerifySequence returns true iff entries form a well-formed chain per the
// entry invariant: each hash equals H(prev.Hash ‖ concat(entry.Mixed)),
// seq increments by exactly one, and timestamps are strictly increasing.
// The first entry in the slice is trusted as the chain's root and is not
// re-derived.
func VerifySequence(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Seq != prev.Seq+1 {
			return false
		}
		if !cur.Timestamp.After(prev.Timestamp) {
			return false
		}
		if hashEntry(prev.Hash, cur.Mixed) != cur.Hash {
			return false
		}
	}
	return true
}

// VerifyTiming additionally checks every inter-entry duration falls
// within [target/2, 2*target], on top of VerifySequence's structural
// checks.
func VerifyTiming(entries []Entry, target time.Duration) bool {
	if !VerifySequence(entries) {
		return false
	}
	lo, hi := target/2, 2*target
	for i := 1; i < len(entries); i++ {
		d := entries[i].Timestamp.Sub(entries[i-1].Timestamp)
		if d < lo || d > hi {
			return false
		}
	}
	return true
}

// ExtractMixedData returns the flattened mixed-hash payloads across
// entries, in chain order.
func ExtractMixedData(entries []Entry) []common.Hash {
	var out []common.Hash
	for _, e := range entries {
		out = append(out, e.Mixed...)
	}
	return out
}
