// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package accounts owns the canonical PublicKey -> Account mapping: point
// lookups, owner-filtered scans, and transactional update with
// commit/rollback.
package accounts

import (
	"fmt"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
)

// Account is a record in the store: a lamport balance, owning program,
// opaque data, and executable flag. Identity is Key.
type Account struct {
	Key        common.PublicKey
	Owner      common.PublicKey
	Lamports   common.Lamport
	Data       []byte
	Executable bool
	RentEpoch  common.Slot
}

// IsZeroFunded reports whether the account has no lamports. Per the
// lifecycle invariant, such an account must also have empty data after
// rent collection at an epoch boundary.
func (a Account) IsZeroFunded() bool {
	return a.Lamports == 0
}

// Serialize encodes the account per the wire layout: key(32) || owner(32)
// || lamports(LE u64) || executable(u8) || rent_epoch(LE u64) ||
// data_len(LE u32) || data.
func (a Account) Serialize() []byte {
	buf := make([]byte, 0, 32+32+8+1+8+4+len(a.Data))
	buf = append(buf, a.Key[:]...)
	buf = append(buf, a.Owner[:]...)

	lamports := make([]byte, 8)
	encodbin.LE.PutUint64(lamports, uint64(a.Lamports))
	buf = append(buf, lamports...)

	if a.Executable {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	rentEpoch := make([]byte, 8)
	encodbin.LE.PutUint64(rentEpoch, uint64(a.RentEpoch))
	buf = append(buf, rentEpoch...)

	dataLen := make([]byte, 4)
	encodbin.LE.PutUint32(dataLen, uint32(len(a.Data)))
	buf = append(buf, dataLen...)
	buf = append(buf, a.Data...)
	return buf
}

// DeserializeAccount decodes the layout Serialize produces.
func DeserializeAccount(b []byte) (Account, error) {
	var a Account
	const fixed = 32 + 32 + 8 + 1 + 8 + 4
	if len(b) < fixed {
		return a, fmt.Errorf("accounts: buffer too short, want at least %d bytes, got %d", fixed, len(b))
	}
	off := 0
	copy(a.Key[:], b[off:off+32])
	off += 32
	copy(a.Owner[:], b[off:off+32])
	off += 32
	a.Lamports = common.Lamport(encodbin.LE.Uint64(b[off : off+8]))
	off += 8
	a.Executable = b[off] != 0
	off++
	a.RentEpoch = common.Slot(encodbin.LE.Uint64(b[off : off+8]))
	off += 8
	dataLen := int(encodbin.LE.Uint32(b[off : off+4]))
	off += 4
	if off+dataLen > len(b) {
		return a, fmt.Errorf("accounts: truncated data, want %d bytes", dataLen)
	}
	a.Data = append([]byte(nil), b[off:off+dataLen]...)
	return a, nil
}
