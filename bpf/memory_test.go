package bpf

import (
	"testing"

	"github.com/slonana-labs/slonana-go/common"
)

// encodeMem packs an LD/LDX/ST/STX instruction. sizeBits selects the access
// width per Instruction.Size(): 0=4-byte, 1=2-byte, 2=1-byte, 3=8-byte.
func encodeMem(class Class, sizeBits byte, dst, src uint8, offset int16, imm int32) []byte {
	w := make([]byte, 8)
	w[0] = byte(class) | sizeBits<<3
	w[1] = src<<4 | dst
	w[2] = byte(offset)
	w[3] = byte(offset >> 8)
	encodbinPutInt32(w[4:8], imm)
	return w
}

// TestMemoryStackLoadStoreRoundTrip exercises loadMemory/storeMemory's
// in.Dst-as-base-register convention: a value stored to the stack through
// one frame-pointer-derived register must read back identically through a
// second, independently derived register pointing at the same address.
func TestMemoryStackLoadStoreRoundTrip(t *testing.T) {
	code := concat(
		encodeALU64(AluMov, true, 1, regFP, 0),         // r1 = r10
		encodeALU64(AluMov, false, 2, 0, 0x12345678),   // r2 = 0x12345678
		encodeMem(ClassSTX, 3, 1, 2, -8, 0),             // [r1-8] = r2 (8 bytes)
		encodeALU64(AluMov, true, 3, regFP, 0),         // r3 = r10
		encodeMem(ClassLDX, 3, 3, 0, -8, 0),             // r3 = [r3-8]
		encodeALU64(AluMov, true, 0, 3, 0),             // r0 = r3
		encodeExit(),
	)
	prog := Program{Code: code}
	v := NewVerifier(DefaultPolicy)
	if err := v.Verify(prog); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	insns := DecodeProgram(prog.Code)
	ctx := NewContext(64, 64, nil)
	out := NewInterpreter().Run(insns, ctx, 1000)
	if out.Result != common.Success {
		t.Fatalf("expected SUCCESS, got %s (%s)", out.Result, out.ErrorDetails)
	}
	if out.ReturnValue != 0x12345678 {
		t.Fatalf("expected round-tripped value 0x12345678, got 0x%x", out.ReturnValue)
	}
}

// TestMemoryOutOfBoundsFaults confirms an access past the stack's bound is
// rejected at runtime rather than silently wrapping.
func TestMemoryOutOfBoundsFaults(t *testing.T) {
	code := concat(
		encodeALU64(AluMov, true, 1, regFP, 0), // r1 = r10
		encodeMem(ClassSTX, 3, 1, 2, 8, 0),      // [r1+8] is past the stack top
		encodeExit(),
	)
	insns := DecodeProgram(code)
	ctx := NewContext(64, 64, nil)
	out := NewInterpreter().Run(insns, ctx, 1000)
	if out.Result != common.ProgramError {
		t.Fatalf("expected PROGRAM_ERROR for out-of-bounds access, got %s", out.Result)
	}
}
