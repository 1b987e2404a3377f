// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package bpf

import (
	"errors"
	"fmt"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
)

// ErrDivisionByZero is the diagnostic attached to a PROGRAM_ERROR outcome
// caused by a division by zero.
var ErrDivisionByZero = errors.New("bpf: division by zero")

// ErrOutOfBounds is the diagnostic attached to a PROGRAM_ERROR outcome
// caused by a memory access outside its region's bounds.
var ErrOutOfBounds = errors.New("bpf: memory access out of bounds")

// ErrInvalidOpcode is the diagnostic for an opcode reaching execution that
// the verifier should have rejected; defense in depth only.
var ErrInvalidOpcode = errors.New("bpf: invalid opcode reached execution")

// ErrIterationCapExceeded is the diagnostic for exceeding MaxIterations.
var ErrIterationCapExceeded = errors.New("bpf: iteration cap exceeded")

// DefaultMaxIterations is the hard step cap protecting against verifier
// false negatives, independent of the compute budget.
const DefaultMaxIterations = 100000

// perOpSurcharge is the additional compute-unit cost charged for
// multiply/divide instructions, on top of the flat 1-unit-per-step cost.
// Surcharges are policy but must be deterministic.
const perOpSurcharge = 1

// Outcome is the result of running a program to completion or fault.
type Outcome struct {
	Result               common.ExecutionResult
	ReturnValue          uint64
	ComputeUnitsConsumed uint64
	ErrorDetails         string
}

// Interpreter runs a verified Program against a Context under a compute
// budget via the fetch-decode-execute loop.
type Interpreter struct {
	MaxIterations uint64
}

// NewInterpreter constructs an Interpreter with the default iteration cap.
func NewInterpreter() *Interpreter {
	return &Interpreter{MaxIterations: DefaultMaxIterations}
}

// Run executes insns against ctx, consuming at most budget compute units.
// An internal fault (a panic during execution) is returned as a
// PROGRAM_ERROR outcome rather than propagated.
func (it *Interpreter) Run(insns []Instruction, ctx *Context, budget uint64) (out Outcome) {
	maxIter := it.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}

	regionOf := [numRegs]region{}
	regionOf[regInput] = regionInput
	regionOf[regHeap] = regionHeap
	regionOf[regFP] = regionStack

	var consumed uint64
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Result: common.ProgramError, ComputeUnitsConsumed: consumed, ErrorDetails: fmt.Sprintf("bpf: internal fault: %v", r)}
		}
	}()
	pc := 0
	var iterations uint64

	fault := func(result common.ExecutionResult, err error) Outcome {
		return Outcome{Result: result, ComputeUnitsConsumed: consumed, ErrorDetails: err.Error()}
	}

	for {
		if iterations >= maxIter {
			return fault(common.ProgramError, ErrIterationCapExceeded)
		}
		iterations++

		if pc < 0 || pc >= len(insns) {
			return fault(common.ProgramError, ErrInvalidOpcode)
		}
		in := insns[pc]

		consumed++
		if consumed > budget {
			return Outcome{Result: common.ComputeBudgetExceeded, ComputeUnitsConsumed: consumed}
		}

		switch in.Class() {
		case ClassJMP:
			if in.Opcode == OpExit {
				return Outcome{Result: common.Success, ReturnValue: ctx.Regs[0], ComputeUnitsConsumed: consumed}
			}
			taken, err := evalJump(in, ctx)
			if err != nil {
				return fault(common.ProgramError, err)
			}
			if taken {
				pc = pc + 1 + int(in.Offset)
			} else {
				pc++
			}
			continue

		case ClassALU64, ClassALU32:
			if err := execALU(in, ctx, &regionOf); err != nil {
				consumed += perOpSurcharge
				if consumed > budget {
					return Outcome{Result: common.ComputeBudgetExceeded, ComputeUnitsConsumed: consumed}
				}
				return fault(common.ProgramError, err)
			}
			if in.AluOp() == AluMul || in.AluOp() == AluDiv {
				consumed += perOpSurcharge
				if consumed > budget {
					return Outcome{Result: common.ComputeBudgetExceeded, ComputeUnitsConsumed: consumed}
				}
			}
			pc++

		case ClassLD:
			if in.Opcode != OpLDDW || pc+1 >= len(insns) {
				return fault(common.ProgramError, ErrInvalidOpcode)
			}
			ctx.Regs[in.Dst] = Imm64(insns, pc)
			regionOf[in.Dst] = regionUnknown
			pc += 2

		case ClassLDX:
			val, err := loadMemory(in, ctx, regionOf)
			if err != nil {
				return fault(common.ProgramError, err)
			}
			ctx.Regs[in.Dst] = val
			regionOf[in.Dst] = regionUnknown
			pc++

		case ClassST, ClassSTX:
			var val uint64
			if in.Class() == ClassST {
				val = uint64(uint32(in.Imm))
			} else {
				val = ctx.Regs[in.Src]
			}
			if err := storeMemory(in, ctx, regionOf, val); err != nil {
				return fault(common.ProgramError, err)
			}
			pc++

		default:
			return fault(common.ProgramError, ErrInvalidOpcode)
		}
	}
}

func loadMemory(in Instruction, ctx *Context, regionOf [numRegs]region) (uint64, error) {
	base := regionOf[in.Dst]
	addr := int64(ctx.Regs[in.Dst]) + int64(in.Offset)
	size := in.Size()
	buf, at, ok := ctx.accessRegion(base, addr, size)
	if !ok {
		return 0, ErrOutOfBounds
	}
	var v uint64
	switch size {
	case 1:
		v = uint64(buf[at])
	case 2:
		v = uint64(encodbin.LE.Uint16(buf[at : at+2]))
	case 4:
		v = uint64(encodbin.LE.Uint32(buf[at : at+4]))
	default:
		v = encodbin.LE.Uint64(buf[at : at+8])
	}
	return v, nil
}

func storeMemory(in Instruction, ctx *Context, regionOf [numRegs]region, val uint64) error {
	base := regionOf[in.Dst]
	addr := int64(ctx.Regs[in.Dst]) + int64(in.Offset)
	size := in.Size()
	buf, at, ok := ctx.accessRegion(base, addr, size)
	if !ok {
		return ErrOutOfBounds
	}
	switch size {
	case 1:
		buf[at] = byte(val)
	case 2:
		encodbin.LE.PutUint16(buf[at:at+2], uint16(val))
	case 4:
		encodbin.LE.PutUint32(buf[at:at+4], uint32(val))
	default:
		encodbin.LE.PutUint64(buf[at:at+8], val)
	}
	return nil
}

// execALU performs one ALU32/ALU64 operation, updating ctx.Regs[in.Dst] and
// propagating region tags for MOV/ADD/SUB so later memory-access opcodes
// can still be classified at runtime (defense in depth mirroring the
// verifier's static pass).
func execALU(in Instruction, ctx *Context, regionOf *[numRegs]region) error {
	var src uint64
	if in.IsWide() {
		src = ctx.Regs[in.Src]
	} else {
		src = uint64(uint32(in.Imm))
	}
	dst := ctx.Regs[in.Dst]
	wide := in.Class() == ClassALU64
	if !wide {
		dst = uint64(uint32(dst))
		src = uint64(uint32(src))
	}

	var result uint64
	switch in.AluOp() {
	case AluAdd:
		result = dst + src
	case AluSub:
		result = dst - src
	case AluMul:
		result = dst * src
	case AluDiv:
		if src == 0 {
			return ErrDivisionByZero
		}
		result = dst / src
	case AluOr:
		result = dst | src
	case AluAnd:
		result = dst & src
	case AluLsh:
		shift := src & shiftMask(wide)
		result = dst << shift
	case AluRsh:
		shift := src & shiftMask(wide)
		result = dst >> shift
	case AluXor:
		result = dst ^ src
	case AluMov:
		result = src
	case AluArsh:
		shift := src & shiftMask(wide)
		if wide {
			result = uint64(int64(dst) >> shift)
		} else {
			result = uint64(uint32(int32(uint32(dst)) >> shift))
		}
	default:
		return ErrInvalidOpcode
	}

	if !wide {
		result = uint64(uint32(result))
	}
	ctx.Regs[in.Dst] = result

	switch in.AluOp() {
	case AluMov:
		if in.IsWide() {
			regionOf[in.Dst] = regionOf[in.Src]
		} else {
			regionOf[in.Dst] = regionUnknown
		}
	case AluAdd, AluSub:
		// region unchanged: pointer +/- immediate/offset preserves provenance.
	default:
		regionOf[in.Dst] = regionUnknown
	}
	return nil
}

func shiftMask(wide bool) uint64 {
	if wide {
		return 0x3f
	}
	return 0x1f
}

// evalJump evaluates a conditional/unconditional jump predicate.
func evalJump(in Instruction, ctx *Context) (bool, error) {
	if in.JmpOp() == JmpJA {
		return true, nil
	}
	var src uint64
	if in.IsWide() {
		src = ctx.Regs[in.Src]
	} else {
		src = uint64(uint32(in.Imm))
	}
	dst := ctx.Regs[in.Dst]

	switch in.JmpOp() {
	case JmpJEQ:
		return dst == src, nil
	case JmpJNE:
		return dst != src, nil
	case JmpJGT:
		return dst > src, nil
	case JmpJGE:
		return dst >= src, nil
	case JmpJLT:
		return dst < src, nil
	case JmpJLE:
		return dst <= src, nil
	case JmpJSET:
		return dst&src != 0, nil
	case JmpJSGT:
		return int64(dst) > int64(src), nil
	case JmpJSGE:
		return int64(dst) >= int64(src), nil
	case JmpJSLT:
		return int64(dst) < int64(src), nil
	case JmpJSLE:
		return int64(dst) <= int64(src), nil
	default:
		return false, ErrInvalidOpcode
	}
}
