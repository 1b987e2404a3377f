// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package svm is the transactional execution engine: instruction dispatch,
// cross-program invocation, compute budgeting, and commit/rollback against
// an account store.
package svm

import (
	"fmt"

	"github.com/slonana-labs/slonana-go/accounts"
	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
)

// AccountMeta pairs a PublicKey with the writable/signer flags a handler
// needs to authorize a mutation without a side-channel lookup. It
// generalizes the bare PublicKey the wire format names (see Serialize)
// while preserving account order.
type AccountMeta struct {
	PublicKey  common.PublicKey
	IsWritable bool
	IsSigner   bool
}

// Meta constructs an AccountMeta for pubKey with no flags set.
func Meta(pubKey common.PublicKey) *AccountMeta {
	return &AccountMeta{PublicKey: pubKey}
}

// WRITE marks the account writable.
func (meta *AccountMeta) WRITE() *AccountMeta {
	meta.IsWritable = true
	return meta
}

// SIGNER marks the account as a required signer.
func (meta *AccountMeta) SIGNER() *AccountMeta {
	meta.IsSigner = true
	return meta
}

// NewAccountMeta constructs a fully specified AccountMeta.
func NewAccountMeta(pubKey common.PublicKey, writable bool, signer bool) *AccountMeta {
	return &AccountMeta{PublicKey: pubKey, IsWritable: writable, IsSigner: signer}
}

// AccountMetaSlice is an ordered parameter vector of AccountMeta, used as
// Instruction.Accounts.
type AccountMetaSlice []*AccountMeta

// Append adds account to the end of the slice.
func (slice *AccountMetaSlice) Append(account *AccountMeta) {
	*slice = append(*slice, account)
}

// Get returns the AccountMeta at index, or nil if out of range.
func (slice AccountMetaSlice) Get(index int) *AccountMeta {
	if index >= 0 && index < len(slice) {
		return slice[index]
	}
	return nil
}

// GetSigners returns the accounts marked as signers, in order.
func (slice AccountMetaSlice) GetSigners() []*AccountMeta {
	signers := make([]*AccountMeta, 0, len(slice))
	for _, ac := range slice {
		if ac.IsSigner {
			signers = append(signers, ac)
		}
	}
	return signers
}

// GetKeys returns the bare PublicKeys, in order — the parameter vector the
// wire format names.
func (slice AccountMetaSlice) GetKeys() (keys []common.PublicKey) {
	for _, ac := range slice {
		keys = append(keys, ac.PublicKey)
	}
	return
}

// Instruction is a single program invocation: a target program, an ordered
// parameter vector of accounts, and opaque instruction data.
type Instruction struct {
	ProgramID common.PublicKey
	Accounts  AccountMetaSlice
	Data      []byte
}

// accountFlagWritable and accountFlagSigner pack AccountMeta into the
// 1-byte flags field Serialize prefixes each account key with.
const (
	accountFlagWritable = 1 << 0
	accountFlagSigner   = 1 << 1
)

// Serialize encodes the instruction per the wire layout: program_id (32),
// accounts_count (u8), then for each account a 1-byte writable/signer flags
// field followed by the 32-byte key, then data_len (LE u32) and data.
//
// The flags byte is a generalization of the wire format's bare PublicKey
// list (see AccountMeta); a decoder that only needs the parameter vector
// can ignore it.
func (in Instruction) Serialize() ([]byte, error) {
	if len(in.Accounts) > 255 {
		return nil, fmt.Errorf("svm: instruction has %d accounts, max 255", len(in.Accounts))
	}
	buf := make([]byte, 0, 32+1+len(in.Accounts)*33+4+len(in.Data))
	buf = append(buf, in.ProgramID[:]...)
	buf = append(buf, byte(len(in.Accounts)))
	for _, acc := range in.Accounts {
		var flags byte
		if acc.IsWritable {
			flags |= accountFlagWritable
		}
		if acc.IsSigner {
			flags |= accountFlagSigner
		}
		buf = append(buf, flags)
		buf = append(buf, acc.PublicKey[:]...)
	}
	lenBuf := make([]byte, 4)
	encodbin.LE.PutUint32(lenBuf, uint32(len(in.Data)))
	buf = append(buf, lenBuf...)
	buf = append(buf, in.Data...)
	return buf, nil
}

// DeserializeInstruction decodes the layout Serialize produces.
func DeserializeInstruction(b []byte) (Instruction, error) {
	var in Instruction
	if len(b) < 32+1 {
		return in, fmt.Errorf("svm: instruction buffer too short")
	}
	copy(in.ProgramID[:], b[:32])
	count := int(b[32])
	off := 33
	for i := 0; i < count; i++ {
		if off+33 > len(b) {
			return in, fmt.Errorf("svm: truncated account list at index %d", i)
		}
		flags := b[off]
		var key common.PublicKey
		copy(key[:], b[off+1:off+33])
		in.Accounts = append(in.Accounts, &AccountMeta{
			PublicKey:  key,
			IsWritable: flags&accountFlagWritable != 0,
			IsSigner:   flags&accountFlagSigner != 0,
		})
		off += 33
	}
	if off+4 > len(b) {
		return in, fmt.Errorf("svm: missing data_len")
	}
	dataLen := int(encodbin.LE.Uint32(b[off : off+4]))
	off += 4
	if off+dataLen > len(b) {
		return in, fmt.Errorf("svm: truncated data, want %d bytes", dataLen)
	}
	in.Data = append([]byte(nil), b[off:off+dataLen]...)
	return in, nil
}

// Transaction is an ordered sequence of instructions plus an account
// working set; it is the atomic commit unit.
type Transaction struct {
	Instructions []Instruction
	WorkingSet   map[common.PublicKey]accounts.Account
}
