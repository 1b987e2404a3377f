// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package poh implements the Proof of History generator and verifier: a
// hash chain produced at a fixed wall-clock cadence, partitioned into
// slots, with an external-data mix operation and tick/slot subscriptions.
package poh

import (
	"fmt"
	"time"
)

// MaxSlotHistory bounds how many completed slots remain in memory before
// their entries become evictable.
const MaxSlotHistory = 1000

// Config carries the seven enumerated PoH options.
type Config struct {
	// TargetTickDuration is the intended wall-clock period between ticks.
	TargetTickDuration time.Duration
	// TicksPerSlot is the slot boundary period.
	TicksPerSlot uint64
	// MaxEntriesBuffer caps retained in-memory history.
	MaxEntriesBuffer int
	// HashingParallelism is the advisory worker-lane count for batch hashing.
	HashingParallelism int
	// BatchSize is the preferred batch width when the mix queue has work.
	BatchSize int
	// EnableLockFreeMixQueue selects a channel-backed MPSC queue over a
	// mutex-guarded deque for pending mixes.
	EnableLockFreeMixQueue bool
	// EnableContentionTracking records lock attempt/contention counters.
	EnableContentionTracking bool
}

// DefaultConfig mirrors the reference validator's PoH defaults.
var DefaultConfig = Config{
	TargetTickDuration:       200 * time.Microsecond,
	TicksPerSlot:             64,
	MaxEntriesBuffer:         2000,
	HashingParallelism:       4,
	BatchSize:                8,
	EnableLockFreeMixQueue:   true,
	EnableContentionTracking: false,
}

// Validate rejects a Config whose bounds cannot produce a meaningful chain.
func (c Config) Validate() error {
	if c.TargetTickDuration <= 0 {
		return fmt.Errorf("poh: TargetTickDuration must be positive")
	}
	if c.TicksPerSlot == 0 {
		return fmt.Errorf("poh: TicksPerSlot must be positive")
	}
	if c.MaxEntriesBuffer <= 0 {
		return fmt.Errorf("poh: MaxEntriesBuffer must be positive")
	}
	if c.HashingParallelism <= 0 {
		return fmt.Errorf("poh: HashingParallelism must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("poh: BatchSize must be positive")
	}
	return nil
}
