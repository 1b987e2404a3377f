// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package common

// ExecutionResult is the stable public boundary error surface shared by the
// BPF execution engine and the transactional execution engine. Its integer
// discriminants are part of the wire contract and must never be reordered.
type ExecutionResult uint8

const (
	Success               ExecutionResult = 0
	ComputeBudgetExceeded ExecutionResult = 1
	ProgramError          ExecutionResult = 2
	AccountNotFound       ExecutionResult = 3
	InsufficientFunds     ExecutionResult = 4
	InvalidInstruction    ExecutionResult = 5
)

// String renders the discriminant's symbolic name.
func (r ExecutionResult) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case ComputeBudgetExceeded:
		return "COMPUTE_BUDGET_EXCEEDED"
	case ProgramError:
		return "PROGRAM_ERROR"
	case AccountNotFound:
		return "ACCOUNT_NOT_FOUND"
	case InsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case InvalidInstruction:
		return "INVALID_INSTRUCTION"
	default:
		return "UNKNOWN"
	}
}
