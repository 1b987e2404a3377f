// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package bpf

import "fmt"

// region is the provenance tag the memory-access classifier assigns to a
// register. Only a pointer traceable to one of these is a legal base for a
// load or store.
type region uint8

const (
	regionUnknown region = iota
	regionStack
	regionHeap
	regionInput
)

// Register ABI convention for provenance tracking: r1 is the input buffer
// pointer, r2 is the heap base pointer, r10 is the stack frame pointer.
// Any other register starts with unknown provenance until a MOV/ALU op
// traces it back to one of these.
const (
	regInput = 1
	regHeap  = 2
	regFP    = 10
	numRegs  = 11
)

// Verifier runs the six ordered static safety checks against a Program
// before it is ever handed to the interpreter. Verify returns the first
// failing check's reason; LastError retains it for diagnostics.
type Verifier struct {
	policy    Policy
	lastError error
}

// NewVerifier constructs a Verifier bound to policy.
func NewVerifier(policy Policy) *Verifier {
	return &Verifier{policy: policy}
}

// LastError returns the reason the most recent Verify call rejected its
// program, or nil if the last call accepted (or none has run yet).
func (v *Verifier) LastError() error { return v.lastError }

// Verify runs the checks in order: instruction count, well-formedness,
// jump-target range, memory-access classification, loop termination,
// stack-depth bound. It returns the first failing check's reason.
func (v *Verifier) Verify(p Program) error {
	v.lastError = v.verify(p)
	return v.lastError
}

func (v *Verifier) verify(p Program) error {
	if len(p.Code)%instructionSize != 0 {
		return fmt.Errorf("bpf: code length %d is not a multiple of %d", len(p.Code), instructionSize)
	}
	count := p.InstructionCount()

	// 1. Instruction count bound.
	if uint32(count) > v.policy.MaxInstructions {
		return fmt.Errorf("bpf: program has %d instructions, exceeds max_instructions %d", count, v.policy.MaxInstructions)
	}

	insns := DecodeProgram(p.Code)

	// 2. Well-formedness: every word decodes to a known opcode.
	if err := checkWellFormed(insns); err != nil {
		return err
	}

	// 3. Jump targets in range.
	if err := checkJumpTargets(insns); err != nil {
		return err
	}

	// 4. Memory-access classification.
	if err := checkMemoryProvenance(insns); err != nil {
		return err
	}

	// 5. Loop termination.
	if !v.policy.AllowInfiniteLoops {
		if err := checkLoopTermination(insns); err != nil {
			return err
		}
	}

	// 6. Stack-depth bound.
	if err := checkStackDepth(insns, v.policy.MaxStackDepth); err != nil {
		return err
	}

	return nil
}

func isKnownAluOp(op AluOp) bool {
	switch op {
	case AluAdd, AluSub, AluMul, AluDiv, AluOr, AluAnd, AluLsh, AluRsh, AluXor, AluMov, AluArsh:
		return true
	default:
		return false
	}
}

func isKnownJmpOp(op JmpOp) bool {
	switch op {
	case JmpJA, JmpJEQ, JmpJGT, JmpJGE, JmpJSET, JmpJNE, JmpJSGT, JmpJSGE, JmpJLT, JmpJLE, JmpJSLT, JmpJSLE:
		return true
	default:
		return false
	}
}

func checkWellFormed(insns []Instruction) error {
	for i, in := range insns {
		if in.Dst >= numRegs || in.Src >= numRegs {
			return fmt.Errorf("bpf: instruction %d references out-of-range register (src=%d dst=%d)", i, in.Src, in.Dst)
		}
		if in.Dst == regFP {
			switch in.Class() {
			case ClassLD, ClassLDX, ClassALU32, ClassALU64:
				return fmt.Errorf("bpf: instruction %d writes the read-only frame pointer r%d", i, regFP)
			}
		}
		switch in.Class() {
		case ClassLD:
			if in.Opcode != OpLDDW {
				return fmt.Errorf("bpf: instruction %d has unknown LD opcode 0x%02x", i, in.Opcode)
			}
			if i+1 >= len(insns) {
				return fmt.Errorf("bpf: instruction %d is a 64-bit load missing its second word", i)
			}
		case ClassLDX, ClassST, ClassSTX:
			// size is encoded in bits 3-4 of the opcode in the real ISA;
			// this subset accepts any value there, nothing further to check.
		case ClassALU32, ClassALU64:
			if !isKnownAluOp(in.AluOp()) {
				return fmt.Errorf("bpf: instruction %d has unknown ALU op 0x%x", i, in.AluOp())
			}
		case ClassJMP:
			if in.Opcode == OpExit {
				continue
			}
			if !isKnownJmpOp(in.JmpOp()) {
				return fmt.Errorf("bpf: instruction %d has unknown JMP op 0x%x", i, in.JmpOp())
			}
		default:
			return fmt.Errorf("bpf: instruction %d has reserved/unknown class %d", i, in.Class())
		}
	}
	return nil
}

func checkJumpTargets(insns []Instruction) error {
	count := len(insns)
	for i, in := range insns {
		if in.Class() != ClassJMP || in.Opcode == OpExit {
			continue
		}
		target := i + 1 + int(in.Offset)
		if target < 0 || target >= count {
			return fmt.Errorf("bpf: instruction %d jump target %d out of range [0, %d)", i, target, count)
		}
	}
	return nil
}

// checkMemoryProvenance traces each register's region tag through MOV and
// additive ALU ops (the only ways pointer arithmetic legitimately occurs in
// this ISA) and rejects any load/store whose base register's provenance is
// not traceable to the stack, heap, or input regions.
func checkMemoryProvenance(insns []Instruction) error {
	regs := [numRegs]region{}
	regs[regInput] = regionInput
	regs[regHeap] = regionHeap
	regs[regFP] = regionStack

	for i, in := range insns {
		switch in.Class() {
		case ClassLDX, ClassST, ClassSTX:
			if regs[in.Dst] == regionUnknown {
				return fmt.Errorf("bpf: instruction %d accesses memory through register r%d with untraced provenance", i, in.Dst)
			}
		}
		switch in.Class() {
		case ClassALU32, ClassALU64:
			switch in.AluOp() {
			case AluMov:
				if in.IsWide() {
					regs[in.Dst] = regs[in.Src]
				} else {
					regs[in.Dst] = regionUnknown
				}
			case AluAdd, AluSub:
				// Pointer + immediate offset preserves provenance.
			default:
				regs[in.Dst] = regionUnknown
			}
		case ClassLD:
			if in.Opcode == OpLDDW {
				regs[in.Dst] = regionUnknown
			}
		}
	}
	return nil
}

// checkLoopTermination builds the control-flow graph and rejects any
// non-trivial strongly connected component. This is a conservative
// approximation of the spec's induction-variable proof obligation: it never
// accepts a program containing a cycle, which is sound (no accepted program
// can loop) even though it is stricter than a full per-SCC
// decreasing-variable proof. It also rejects bounded loops and cycles that
// are unreachable from instruction 0.
func checkLoopTermination(insns []Instruction) error {
	n := len(insns)
	succ := make([][]int, n)
	for i, in := range insns {
		if in.Class() == ClassJMP {
			if in.Opcode == OpExit {
				continue
			}
			target := i + 1 + int(in.Offset)
			succ[i] = append(succ[i], target)
			if in.JmpOp() != JmpJA && i+1 < n {
				succ[i] = append(succ[i], i+1)
			}
			continue
		}
		if i+1 < n {
			succ[i] = append(succ[i], i+1)
		}
	}

	if sccHasCycle(succ) {
		return fmt.Errorf("bpf: control-flow graph contains a cycle and allow_infinite_loops is false")
	}
	return nil
}

// sccHasCycle runs Tarjan's algorithm and reports whether any strongly
// connected component has more than one node, or a single node with a
// self-loop.
func sccHasCycle(succ [][]int) bool {
	n := len(succ)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	counter := 0
	found := false

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succ[v] {
			if index[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			size := 0
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				size++
				if w == v {
					break
				}
			}
			if size > 1 {
				found = true
			} else {
				for _, w := range succ[v] {
					if w == v {
						found = true
					}
				}
			}
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}
	return found
}

// checkStackDepth bounds the frame depth by the deepest negative offset of
// any LDX/ST/STX whose base register is r10 itself, divided by 8, since
// this ISA has no explicit call/frame instructions to track separately.
// Accesses through a register copied from r10 are not counted.
func checkStackDepth(insns []Instruction, maxDepth uint32) error {
	minOffset := int32(0)
	for _, in := range insns {
		switch in.Class() {
		case ClassLDX, ClassST, ClassSTX:
			if in.Dst == regFP {
				if off := int32(in.Offset); off < minOffset {
					minOffset = off
				}
			}
		}
	}
	depth := uint32(-minOffset) / 8
	if depth > maxDepth {
		return fmt.Errorf("bpf: stack frame depth %d exceeds max_stack_depth %d", depth, maxDepth)
	}
	return nil
}
