// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package bpf implements the static verifier and the register-machine
// execution engine for the eBPF-derived instruction set: fetch/decode of
// the 8-byte little-endian instruction word, the verifier's six ordered
// safety checks, and the interpreter's fetch-decode-execute loop.
package bpf

import "github.com/slonana-labs/slonana-go/pkg/encodbin"

// instructionSize is the width in bytes of one bytecode word. The 64-bit
// load-immediate form occupies two consecutive words.
const instructionSize = 8

// Class is the instruction class selected by the opcode's low 3 bits.
type Class uint8

const (
	ClassLD    Class = 0 // load immediate / 64-bit literal form
	ClassLDX   Class = 1 // load register-indirect
	ClassST    Class = 2 // store immediate
	ClassSTX   Class = 3 // store register
	ClassALU32 Class = 4 // 32-bit arithmetic
	ClassJMP   Class = 5 // conditional/unconditional jump
	// ClassReserved (6) is not assigned by the ISA subset in scope.
	ClassReserved Class = 6
	ClassALU64    Class = 7 // 64-bit arithmetic
)

// ALU/JMP op selects the operation within ALU32/ALU64/JMP, taken from the
// opcode's high nibble.
type AluOp uint8

const (
	AluAdd  AluOp = 0x0
	AluSub  AluOp = 0x1
	AluMul  AluOp = 0x2
	AluDiv  AluOp = 0x3
	AluOr   AluOp = 0x4
	AluAnd  AluOp = 0x5
	AluLsh  AluOp = 0x6
	AluRsh  AluOp = 0x7
	AluXor  AluOp = 0xa
	AluMov  AluOp = 0xb
	AluArsh AluOp = 0xc
)

// JmpOp selects the branch predicate within JMP.
type JmpOp uint8

const (
	JmpJA   JmpOp = 0x0
	JmpJEQ  JmpOp = 0x1
	JmpJGT  JmpOp = 0x2
	JmpJGE  JmpOp = 0x3
	JmpJSET JmpOp = 0x4
	JmpJNE  JmpOp = 0x5
	JmpJSGT JmpOp = 0x6
	JmpJSGE JmpOp = 0x7
	JmpJLT  JmpOp = 0xa
	JmpJLE  JmpOp = 0xb
	JmpJSLT JmpOp = 0xc
	JmpJSLE JmpOp = 0xd
)

// OpExit is the JMP-class opcode byte that terminates execution.
const OpExit byte = 0x95

// OpLDDW is the opcode byte for the two-word 64-bit load-immediate form.
const OpLDDW byte = 0x18

// Instruction is one decoded 8-byte word. For OpLDDW the second word is a
// separate Instruction; Imm64 combines the two immediates.
type Instruction struct {
	Opcode byte
	Src    uint8
	Dst    uint8
	Offset int16
	Imm    int32
}

// Class returns the instruction's class (opcode & 0x7).
func (in Instruction) Class() Class { return Class(in.Opcode & 0x7) }

// AluOp returns the ALU operation selected by the opcode's high nibble.
func (in Instruction) AluOp() AluOp { return AluOp(in.Opcode >> 4) }

// JmpOp returns the jump predicate selected by the opcode's high nibble.
func (in Instruction) JmpOp() JmpOp { return JmpOp(in.Opcode >> 4) }

// IsWide reports whether bit 3 of a JMP/ALU opcode (the eBPF "X" source
// bit) is set: the source operand is register Src rather than the 32-bit
// immediate.
func (in Instruction) IsWide() bool { return in.Opcode&0x08 != 0 }

// Size returns the access width in bytes for an LDX/ST/STX instruction,
// selected by bits 3-4 of the opcode (0=4-byte word, 1=2-byte half,
// 2=1-byte, 3=8-byte double word).
func (in Instruction) Size() int {
	switch (in.Opcode >> 3) & 0x3 {
	case 0:
		return 4
	case 1:
		return 2
	case 2:
		return 1
	default:
		return 8
	}
}

// decodeWord decodes a single 8-byte little-endian instruction word.
func decodeWord(w []byte) Instruction {
	return Instruction{
		Opcode: w[0],
		Src:    w[1] >> 4,
		Dst:    w[1] & 0x0f,
		Offset: int16(encodbin.LE.Uint16(w[2:4])),
		Imm:    int32(encodbin.LE.Uint32(w[4:8])),
	}
}

// DecodeProgram decodes a flat byte sequence into instruction words. It
// does not validate well-formedness (see Verifier); it only decodes the
// fixed bit layout, one Instruction per word. The second word of an OpLDDW
// pair is decoded as its own Instruction; Imm64 reassembles the 64-bit
// immediate from the pair.
func DecodeProgram(code []byte) []Instruction {
	count := len(code) / instructionSize
	out := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		w := code[i*instructionSize : i*instructionSize+instructionSize]
		in := decodeWord(w)
		out = append(out, in)
	}
	return out
}

// Imm64 reassembles the 64-bit immediate of an OpLDDW instruction at index
// idx in insns, combining insns[idx].Imm (low 32 bits) with
// insns[idx+1].Imm (high 32 bits). Callers must first check
// insns[idx].Opcode == OpLDDW and idx+1 < len(insns).
func Imm64(insns []Instruction, idx int) uint64 {
	lo := uint32(insns[idx].Imm)
	hi := uint32(insns[idx+1].Imm)
	return uint64(hi)<<32 | uint64(lo)
}
