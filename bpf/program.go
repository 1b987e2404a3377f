// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package bpf

import "fmt"

// Program is an unverified (or already-verified) bytecode blob plus the
// compute units its author declares it needs. Code is a flat sequence of
// 64-bit little-endian instructions; see DecodeProgram.
type Program struct {
	Code                 []byte
	DeclaredComputeUnits uint64
}

// InstructionCount returns the number of 8-byte instruction words in Code.
func (p Program) InstructionCount() int {
	return len(p.Code) / instructionSize
}

// Policy bounds what the verifier will accept. Defaults are sourced from
// the reference validator's verifier configuration.
type Policy struct {
	MaxInstructions    uint32
	AllowInfiniteLoops bool
	MaxStackDepth      uint32
}

// DefaultPolicy is the reference validator's default verifier policy.
var DefaultPolicy = Policy{
	MaxInstructions:    4096,
	AllowInfiniteLoops: false,
	MaxStackDepth:      512,
}

// Validate rejects a policy with a non-positive bound; it does not validate
// any particular program.
func (p Policy) Validate() error {
	if p.MaxInstructions == 0 {
		return fmt.Errorf("bpf: MaxInstructions must be positive")
	}
	if p.MaxStackDepth == 0 {
		return fmt.Errorf("bpf: MaxStackDepth must be positive")
	}
	return nil
}
