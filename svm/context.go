// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package svm

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/common"
)

// MaxCPIDepth bounds cross-program invocation nesting, chosen for
// compatibility with the dominant Solana implementation.
const MaxCPIDepth = 4

// ComputeBudget tracks the compute-unit ceiling for one transaction and
// how much of it has been consumed so far.
type ComputeBudget struct {
	Max      uint64
	Consumed uint64
}

// Remaining returns the unconsumed compute units.
func (b ComputeBudget) Remaining() uint64 {
	if b.Consumed >= b.Max {
		return 0
	}
	return b.Max - b.Consumed
}

// ExecutionContext is the per-transaction mutable state threaded through
// dispatch: the working set, the compute budget, CPI depth, the
// transaction-succeeded flag, an error string, the epoch, and the set of
// keys touched for write. It is created at transaction entry and
// destroyed at commit/rollback.
type ExecutionContext struct {
	WorkingSet  map[common.PublicKey]accounts.Account
	Budget      ComputeBudget
	CPIDepth    int
	Succeeded   bool
	ErrorMsg    string
	Epoch       common.Epoch
	TouchedKeys mapset.Set[common.PublicKey]
	Logs        []string

	// Store backs Engine.Invoke's BPF account/program resolution during a
	// CPI; it is set by Engine.ExecuteTransaction and not otherwise mutated
	// by handlers.
	Store *accounts.Store
}

// NewExecutionContext creates a context over workingSet with budget max
// compute units available and CPIDepth starting at 0.
func NewExecutionContext(workingSet map[common.PublicKey]accounts.Account, maxComputeUnits uint64, epoch common.Epoch) *ExecutionContext {
	return &ExecutionContext{
		WorkingSet:  workingSet,
		Budget:      ComputeBudget{Max: maxComputeUnits},
		Succeeded:   true,
		Epoch:       epoch,
		TouchedKeys: mapset.NewSet[common.PublicKey](),
	}
}

// Touch records key as touched for write and stages account into the
// working set.
func (c *ExecutionContext) Touch(account accounts.Account) {
	c.WorkingSet[account.Key] = account
	c.TouchedKeys.Add(account.Key)
}

// Log appends a structured log line, preserved regardless of whether the
// transaction ultimately succeeds.
func (c *ExecutionContext) Log(line string) {
	c.Logs = append(c.Logs, line)
}

// EnterCPI increments CPIDepth and reports whether the resulting depth is
// within MaxCPIDepth. Callers must call ExitCPI on the return path
// regardless of outcome.
func (c *ExecutionContext) EnterCPI() bool {
	c.CPIDepth++
	return c.CPIDepth <= MaxCPIDepth
}

// ExitCPI decrements CPIDepth; it is called on every CPI return path,
// success or failure.
func (c *ExecutionContext) ExitCPI() {
	c.CPIDepth--
}
