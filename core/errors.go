// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.


package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySlice   = errors.New("empty slice found")
	ErrEmptyString  = errors.New("empty string found")
	ErrEmptyAccount = errors.New("empty account found")

	// ErrDuplicateAccount is returned when Store.Create targets a key that
	// already exists in either layer.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound maps to the ACCOUNT_NOT_FOUND execution result.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds maps to the INSUFFICIENT_FUNDS execution result.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidInstruction maps to the INVALID_INSTRUCTION execution result.
	ErrInvalidInstruction = errors.New("invalid instruction")
	// ErrCPIDepthExceeded is raised when CPI nesting exceeds MaxCPIDepth.
	ErrCPIDepthExceeded = errors.New("CPI depth exceeded")
	// ErrComputeBudgetExceeded maps to the COMPUTE_BUDGET_EXCEEDED result.
	ErrComputeBudgetExceeded = errors.New("compute budget exceeded")
)

// StdErr return standard Err
func StdErr(reason string, err error) error {
	return fmt.Errorf("%s Failed. Err: %w", reason, err)
}
