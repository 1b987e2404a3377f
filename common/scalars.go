// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package common

// Lamport, Slot, and Epoch are the unsigned 64-bit scalars threaded through
// the account store, PoH, and the execution engine. Slot is monotonically
// non-decreasing during a run; Epoch groups slots.
type (
	Lamport uint64
	Slot    uint64
	Epoch   uint64
)
