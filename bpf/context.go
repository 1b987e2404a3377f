// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package bpf

// Context is the register/memory state a single BPF program executes
// against. r10 (the frame pointer) starts at the stack-top sentinel,
// len(Stack); the verifier rejects any instruction that writes r10, so a
// verified program always reads that sentinel.
type Context struct {
	Regs  [numRegs]uint64
	Stack []byte
	Heap  []byte
	Input []byte
}

// NewContext allocates a context with the given stack/heap capacities,
// frame pointer initialized to the stack-top sentinel, and input attached
// directly (not copied).
func NewContext(stackSize, heapSize int, input []byte) *Context {
	c := &Context{
		Stack: make([]byte, stackSize),
		Heap:  make([]byte, heapSize),
		Input: input,
	}
	c.Regs[regFP] = uint64(len(c.Stack))
	return c
}

// accessRegion resolves an access of size bytes at offset (an absolute
// offset into the region named by base, as produced by the interpreter's
// pointer arithmetic) and returns the backing slice and the offset within
// it, or ok=false if base is regionUnknown or the access falls outside
// that region's bounds.
func (c *Context) accessRegion(base region, offset int64, size int) (buf []byte, at int, ok bool) {
	switch base {
	case regionStack:
		at = int(offset)
		buf = c.Stack
	case regionHeap:
		at = int(offset)
		buf = c.Heap
	case regionInput:
		at = int(offset)
		buf = c.Input
	default:
		return nil, 0, false
	}
	if at < 0 || at+size > len(buf) {
		return nil, 0, false
	}
	return buf, at, true
}
