// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package jit models the executable-memory lifecycle a just-in-time
// compiler would own, without emitting native machine code for any
// concrete ISA: Compile succeeds unless forced to fail (see NewCompiler)
// and produces a CompiledProgram that re-dispatches to the interpreter,
// preserving the "JIT diverges
// from the interpreter only in latency, never in result" contract.
package jit

import (
	"errors"

	"github.com/slonana-labs/slonana-go/bpf"
)

// ErrCompileFailed is returned by Compile when ForceFailure is set, to
// exercise the "falls back to the interpreter transparently" path.
var ErrCompileFailed = errors.New("jit: compilation failed")

// lifecycle tracks a CompiledProgram's Seal/Release state.
type lifecycle uint8

const (
	lifecycleSealed lifecycle = iota
	lifecycleReleased
)

// CompiledProgram owns the executable-memory lifecycle of a compiled
// program. Seal marks it ready to run; Release frees it. Run always
// re-dispatches to the interpreter: no native codegen exists for any
// concrete target ISA (out of scope — see the JIT-backend open question).
type CompiledProgram struct {
	insns  []bpf.Instruction
	state  lifecycle
	interp *bpf.Interpreter
}

// Seal finalizes the compiled program, making it eligible for Run.
func (c *CompiledProgram) Seal() {
	c.state = lifecycleSealed
}

// Release frees the compiled program; Run after Release panics, mirroring
// use-after-free being a programmer error rather than a runtime fault.
func (c *CompiledProgram) Release() {
	c.insns = nil
	c.state = lifecycleReleased
}

// Run executes the compiled program against ctx under budget, by
// re-dispatching to the interpreter.
func (c *CompiledProgram) Run(ctx *bpf.Context, budget uint64) bpf.Outcome {
	if c.state == lifecycleReleased {
		panic("jit: Run called on a released CompiledProgram")
	}
	return c.interp.Run(c.insns, ctx, budget)
}

// Compiler compiles a verified Program into a CompiledProgram.
type Compiler interface {
	Compile(prog bpf.Program) (*CompiledProgram, error)
}

// interpreterFallbackCompiler is the reference Compiler: it never emits
// native code, it only decodes the program and wraps it for interpreter
// re-dispatch; it performs no validation of its own.
type interpreterFallbackCompiler struct {
	// ForceFailure makes Compile always return ErrCompileFailed, so callers
	// can exercise the JIT-failure-falls-back-to-interpreter path.
	ForceFailure bool
}

// NewCompiler constructs the reference Compiler. When forceFailure is
// true, Compile always fails (callers should fall back to
// bpf.Interpreter directly).
func NewCompiler(forceFailure bool) Compiler {
	return &interpreterFallbackCompiler{ForceFailure: forceFailure}
}

func (c *interpreterFallbackCompiler) Compile(prog bpf.Program) (*CompiledProgram, error) {
	if c.ForceFailure {
		return nil, ErrCompileFailed
	}
	cp := &CompiledProgram{
		insns:  bpf.DecodeProgram(prog.Code),
		interp: bpf.NewInterpreter(),
	}
	cp.Seal()
	return cp, nil
}

// Run is a convenience that compiles prog and runs it, falling back to a
// bare interpreter run on compile failure — the transparent fallback path
// the JIT contract requires.
func Run(compiler Compiler, prog bpf.Program, ctx *bpf.Context, budget uint64) bpf.Outcome {
	cp, err := compiler.Compile(prog)
	if err != nil {
		insns := bpf.DecodeProgram(prog.Code)
		return bpf.NewInterpreter().Run(insns, ctx, budget)
	}
	defer cp.Release()
	return cp.Run(ctx, budget)
}
