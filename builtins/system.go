// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package builtins implements the System Program: CreateAccount, Transfer,
// and Allocate, adapted from the teacher's client-side instruction
// builders into pure server-side handlers of (instruction, context).
package builtins

import (
	"fmt"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/core"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
	"github.com/slonana-labs/slonana-go/pkg/encodtext/format"
	"github.com/slonana-labs/slonana-go/svm"
)

// Instruction discriminants for the System Program's Data[0] byte.
const (
	InstructionCreateAccount byte = 0
	InstructionTransfer      byte = 1
	InstructionAllocate      byte = 2
)

// Per-instruction compute-unit costs. Flat and deterministic, mirroring the
// reference validator's fixed-cost builtin table rather than a
// data-dependent charge.
const (
	createAccountComputeUnits uint64 = 150
	transferComputeUnits      uint64 = 50
	allocateComputeUnits      uint64 = 100
)

// chargeCompute debits cost from execCtx's remaining compute budget,
// failing with ErrComputeBudgetExceeded rather than letting Consumed run
// past Max.
func chargeCompute(execCtx *svm.ExecutionContext, cost uint64) error {
	if execCtx.Budget.Remaining() < cost {
		return core.ErrComputeBudgetExceeded
	}
	execCtx.Budget.Consumed += cost
	return nil
}

// SystemProgramID is a fixed well-known address for the System Program,
// analogous to the reference validator's 11111111111111111111111111111111.
var SystemProgramID = common.PublicKey{}

// SystemProgram implements svm.BuiltinProgram for CreateAccount, Transfer,
// and Allocate. It is stateless: every call is a pure function of
// (instruction, context) per DESIGN NOTE 2.
type SystemProgram struct{}

// Execute dispatches on instr.Data[0].
func (SystemProgram) Execute(instr svm.Instruction, execCtx *svm.ExecutionContext, engine *svm.Engine) error {
	if len(instr.Data) == 0 {
		return core.ErrInvalidInstruction
	}
	switch instr.Data[0] {
	case InstructionCreateAccount:
		return createAccount(instr, execCtx)
	case InstructionTransfer:
		return transfer(instr, execCtx)
	case InstructionAllocate:
		return allocate(instr, execCtx)
	default:
		return core.ErrInvalidInstruction
	}
}

// createAccount lays out: [0]=discriminant, [1:9]=lamports (LE u64),
// [9:17]=space (LE u64), [17:49]=owner. Accounts: [0]=funding (signer,
// writable), [1]=new account (signer, writable).
func createAccount(instr svm.Instruction, execCtx *svm.ExecutionContext) error {
	if len(instr.Data) < 1+8+8+32 || len(instr.Accounts) < 2 {
		return core.ErrInvalidInstruction
	}
	funding := instr.Accounts.Get(0)
	newAcc := instr.Accounts.Get(1)
	if funding == nil || newAcc == nil || !funding.IsSigner || !newAcc.IsSigner {
		return core.ErrInvalidInstruction
	}
	if err := chargeCompute(execCtx, createAccountComputeUnits); err != nil {
		return err
	}

	lamports := common.Lamport(encodbin.LE.Uint64(instr.Data[1:9]))
	space := encodbin.LE.Uint64(instr.Data[9:17])
	var owner common.PublicKey
	owner.SetBytes(instr.Data[17:49])

	fundingAcc, ok := execCtx.WorkingSet[funding.PublicKey]
	if !ok {
		return core.ErrAccountNotFound
	}
	if _, exists := execCtx.WorkingSet[newAcc.PublicKey]; exists {
		return fmt.Errorf("%w: %s", core.ErrInvalidInstruction, newAcc.PublicKey)
	}
	if fundingAcc.Lamports < lamports {
		return core.ErrInsufficientFunds
	}

	fundingAcc.Lamports -= lamports
	execCtx.Touch(fundingAcc)

	execCtx.Touch(accounts.Account{
		Key:      newAcc.PublicKey,
		Owner:    owner,
		Lamports: lamports,
		Data:     make([]byte, space),
	})

	execCtx.Log(fmt.Sprintf("%s %s %s %s %s %s",
		format.Program("SystemProgram", SystemProgramID),
		format.Instruction("CreateAccount"),
		format.Meta("funding", &format.AccountFlags{PublicKey: funding.PublicKey, IsWritable: funding.IsWritable, IsSigner: funding.IsSigner}),
		format.Meta("new", &format.AccountFlags{PublicKey: newAcc.PublicKey, IsWritable: newAcc.IsWritable, IsSigner: newAcc.IsSigner}),
		format.Param("lamports", lamports),
		format.Param("space", space)))
	return nil
}

// transfer lays out: [0]=discriminant, [1:9]=lamports (LE u64). Accounts:
// [0]=funding (signer, writable), [1]=recipient (writable).
func transfer(instr svm.Instruction, execCtx *svm.ExecutionContext) error {
	if len(instr.Data) < 1+8 || len(instr.Accounts) < 2 {
		return core.ErrInvalidInstruction
	}
	funding := instr.Accounts.Get(0)
	recipient := instr.Accounts.Get(1)
	if funding == nil || recipient == nil || !funding.IsSigner {
		return core.ErrInvalidInstruction
	}
	if err := chargeCompute(execCtx, transferComputeUnits); err != nil {
		return err
	}
	lamports := common.Lamport(encodbin.LE.Uint64(instr.Data[1:9]))

	fundingAcc, ok := execCtx.WorkingSet[funding.PublicKey]
	if !ok {
		return core.ErrAccountNotFound
	}
	recipientAcc, ok := execCtx.WorkingSet[recipient.PublicKey]
	if !ok {
		return core.ErrAccountNotFound
	}
	if fundingAcc.Lamports < lamports {
		return core.ErrInsufficientFunds
	}

	fundingAcc.Lamports -= lamports
	recipientAcc.Lamports += lamports
	execCtx.Touch(fundingAcc)
	execCtx.Touch(recipientAcc)

	execCtx.Log(fmt.Sprintf("%s %s %s %s",
		format.Instruction("Transfer"),
		format.Param("lamports", lamports),
		format.Account("from", funding.PublicKey),
		format.Account("to", recipient.PublicKey)))
	return nil
}

// allocate lays out: [0]=discriminant, [1:9]=space (LE u64). Accounts:
// [0]=account (signer, writable).
func allocate(instr svm.Instruction, execCtx *svm.ExecutionContext) error {
	if len(instr.Data) < 1+8 || len(instr.Accounts) < 1 {
		return core.ErrInvalidInstruction
	}
	target := instr.Accounts.Get(0)
	if target == nil || !target.IsSigner {
		return core.ErrInvalidInstruction
	}
	if err := chargeCompute(execCtx, allocateComputeUnits); err != nil {
		return err
	}
	space := encodbin.LE.Uint64(instr.Data[1:9])

	acc, ok := execCtx.WorkingSet[target.PublicKey]
	if !ok {
		return core.ErrAccountNotFound
	}
	if len(acc.Data) != 0 {
		return fmt.Errorf("%w: account %s already allocated", core.ErrInvalidInstruction, target.PublicKey)
	}
	acc.Data = make([]byte, space)
	execCtx.Touch(acc)

	execCtx.Log(fmt.Sprintf("%s %s %s",
		format.Instruction("Allocate"),
		format.Account("target", target.PublicKey),
		format.Param("space", space)))
	return nil
}
