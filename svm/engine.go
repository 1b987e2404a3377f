// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package svm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/bpf"
	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/core"
	"github.com/slonana-labs/slonana-go/pkg/encodtext/format"
)

// BuiltinProgram is the handler interface for programs dispatched from the
// engine's builtin table. Implementations must be pure functions of
// (instruction, context): per DESIGN NOTE 2, no function-local static
// counters — all state lives in the ExecutionContext and the account
// store. Handlers report their compute-unit consumption by adding to
// execCtx.Budget.Consumed themselves, and may invoke Engine.Invoke to
// perform a CPI.
type BuiltinProgram interface {
	Execute(instr Instruction, execCtx *ExecutionContext, engine *Engine) error
}

// Config aggregates the engine's own budgets; PoH and BPF verifier policy
// configuration live in their own packages (poh.Config, bpf.Policy) and
// are composed by the surrounding binary.
type Config struct {
	MaxComputeUnits  uint64
	MaxWallClock     time.Duration
	ProgramCacheSize int
	BpfStackSize     int
	BpfHeapSize      int
}

// DefaultConfig mirrors the reference validator's per-transaction budget.
var DefaultConfig = Config{
	MaxComputeUnits:  1_000_000,
	MaxWallClock:     0,
	ProgramCacheSize: 16 << 20,
	BpfStackSize:     4096,
	BpfHeapSize:      32 * 1024,
}

// Engine is the transactional execution engine: instruction dispatch,
// compute budgeting, CPI depth bounding, and commit/rollback against an
// account store.
type Engine struct {
	config   Config
	builtins map[common.PublicKey]BuiltinProgram
	cache    *ProgramCache
	policy   bpf.Policy
}

// NewEngine constructs an Engine. policy governs BPF verification for any
// program not already cached as verified.
func NewEngine(config Config, policy bpf.Policy) *Engine {
	return &Engine{
		config:   config,
		builtins: make(map[common.PublicKey]BuiltinProgram),
		cache:    NewProgramCache(config.ProgramCacheSize),
		policy:   policy,
	}
}

// RegisterBuiltin installs handler for programID, replacing any existing
// registration.
func (e *Engine) RegisterBuiltin(programID common.PublicKey, handler BuiltinProgram) {
	e.builtins[programID] = handler
}

// Cache exposes the engine's program cache, e.g. for Invalidate after an
// on-chain program upgrade.
func (e *Engine) Cache() *ProgramCache { return e.cache }

// Outcome is the transaction-level result: the ExecutionOutcome shape from
// the data model, with ModifiedAccounts populated on success.
type Outcome struct {
	Result               common.ExecutionResult
	ComputeUnitsConsumed uint64
	ModifiedAccounts     []accounts.Account
	ErrorDetails         string
	Logs                 string
}

// ExecuteTransaction runs tx's instructions in order against store under
// ctx, dispatching each to a builtin or BPF program, enforcing the compute
// budget and CPI depth, and committing or rolling back atomically.
func (e *Engine) ExecuteTransaction(ctx context.Context, tx Transaction, store *accounts.Store) Outcome {
	if e.config.MaxWallClock > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.MaxWallClock)
		defer cancel()
	}

	working := make(map[common.PublicKey]accounts.Account, len(tx.WorkingSet))
	for k, v := range tx.WorkingSet {
		working[k] = v
	}
	execCtx := NewExecutionContext(working, e.config.MaxComputeUnits, 0)
	execCtx.Store = store

	for idx, instr := range tx.Instructions {
		select {
		case <-ctx.Done():
			store.Rollback()
			return e.failureOutcome(common.ComputeBudgetExceeded, execCtx, fmt.Sprintf("instruction %d: wall-clock budget exceeded", idx))
		default:
		}

		if execCtx.Budget.Consumed >= execCtx.Budget.Max {
			store.Rollback()
			return e.failureOutcome(common.ComputeBudgetExceeded, execCtx, fmt.Sprintf("instruction %d: compute budget exceeded before dispatch", idx))
		}

		if err := e.dispatch(instr, execCtx); err != nil {
			store.Rollback()
			result := classifyError(err)
			execCtx.Log(fmt.Sprintf("%s %s %s",
				format.Program(fmt.Sprintf("instruction %d", idx), instr.ProgramID),
				format.Param("result", result),
				format.Param("error", err)))
			return e.failureOutcome(result, execCtx, fmt.Sprintf("instruction %d (program %s): %v", idx, instr.ProgramID, err))
		}
	}

	for key := range execCtx.TouchedKeys.Iter() {
		store.Update(execCtx.WorkingSet[key])
	}
	store.Commit()

	modified := make([]accounts.Account, 0, execCtx.TouchedKeys.Cardinality())
	for key := range execCtx.TouchedKeys.Iter() {
		modified = append(modified, execCtx.WorkingSet[key])
	}

	return Outcome{
		Result:               common.Success,
		ComputeUnitsConsumed: execCtx.Budget.Consumed,
		ModifiedAccounts:     modified,
		Logs:                 joinLogs(execCtx.Logs),
	}
}

func (e *Engine) failureOutcome(result common.ExecutionResult, execCtx *ExecutionContext, details string) Outcome {
	return Outcome{
		Result:               result,
		ComputeUnitsConsumed: execCtx.Budget.Consumed,
		ErrorDetails:         details,
		Logs:                 joinLogs(execCtx.Logs),
	}
}

// resultError carries a concrete ExecutionResult discriminant through the
// error-return path, so a result that isn't one of the core sentinels
// below (e.g. a BPF program's COMPUTE_BUDGET_EXCEEDED) still reaches the
// transaction outcome instead of being folded into the generic
// PROGRAM_ERROR default.
type resultError struct {
	result  common.ExecutionResult
	details string
}

func (e *resultError) Error() string { return e.details }

func classifyError(err error) common.ExecutionResult {
	var re *resultError
	if errors.As(err, &re) {
		return re.result
	}
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		return common.AccountNotFound
	case errors.Is(err, core.ErrInsufficientFunds):
		return common.InsufficientFunds
	case errors.Is(err, core.ErrInvalidInstruction):
		return common.InvalidInstruction
	case errors.Is(err, core.ErrComputeBudgetExceeded):
		return common.ComputeBudgetExceeded
	default:
		return common.ProgramError
	}
}

func joinLogs(logs []string) string {
	out := ""
	for i, l := range logs {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// dispatch resolves instr.ProgramID against the builtin table, falling
// back to the BPF program cache, and runs the resolved handler. A panic
// in the handler is returned as an error, which classifies as
// PROGRAM_ERROR.
func (e *Engine) dispatch(instr Instruction, execCtx *ExecutionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal fault in program %s: %v", instr.ProgramID, r)
		}
	}()
	if handler, ok := e.builtins[instr.ProgramID]; ok {
		return handler.Execute(instr, execCtx, e)
	}
	return e.dispatchBpf(instr, execCtx)
}

// Invoke performs a cross-program invocation of instr on behalf of a
// currently executing handler, bounding nesting at MaxCPIDepth. Handlers
// reach it with only (instr, execCtx, engine) in scope; the account store
// travels on execCtx.Store rather than as a separate parameter.
func (e *Engine) Invoke(instr Instruction, execCtx *ExecutionContext) error {
	if !execCtx.EnterCPI() {
		execCtx.ExitCPI()
		return core.ErrCPIDepthExceeded
	}
	defer execCtx.ExitCPI()
	return e.dispatch(instr, execCtx)
}

func (e *Engine) dispatchBpf(instr Instruction, execCtx *ExecutionContext) error {
	program, verified, ok := e.cache.Get(instr.ProgramID)
	if !ok {
		acct, found := execCtx.Store.Get(instr.ProgramID)
		if !found || !acct.Executable {
			return core.ErrAccountNotFound
		}
		program = bpf.Program{Code: acct.Data}
		verifier := bpf.NewVerifier(e.policy)
		if err := verifier.Verify(program); err != nil {
			e.cache.Put(instr.ProgramID, program.Code, false)
			return fmt.Errorf("bpf verification failed: %w", err)
		}
		e.cache.Put(instr.ProgramID, program.Code, true)
		verified = true
	}
	if !verified {
		return core.ErrInvalidInstruction
	}

	insns := bpf.DecodeProgram(program.Code)
	bpfCtx := bpf.NewContext(e.config.BpfStackSize, e.config.BpfHeapSize, instr.Data)
	interp := bpf.NewInterpreter()
	outcome := interp.Run(insns, bpfCtx, execCtx.Budget.Remaining())

	execCtx.Budget.Consumed += outcome.ComputeUnitsConsumed
	if outcome.Result != common.Success {
		details := outcome.ErrorDetails
		if details == "" {
			details = fmt.Sprintf("bpf program returned %s", outcome.Result)
		}
		return &resultError{result: outcome.Result, details: details}
	}
	return nil
}
