// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package poh

import "time"

// Stats mirrors the reference validator's PohStats: observability the
// generator exposes for tick cadence, mix-queue pressure, and (when
// enabled) lock contention. Fields are snapshotted under the Generator's
// lock; callers get a consistent point-in-time copy from Generator.Stats.
type Stats struct {
	TotalTicks  uint64
	TotalHashes uint64

	AvgTickDuration  time.Duration
	LastTickDuration time.Duration
	MinTickDuration  time.Duration
	MaxTickDuration  time.Duration
	TicksPerSecond   float64

	PendingMixCount int
	DroppedMixes    uint64
	BatchEfficiency float64

	LockContentionRatio float64
}
