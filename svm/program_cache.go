// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package svm

import (
	"container/list"
	"sync"
	"time"

	"github.com/slonana-labs/slonana-go/bpf"
	"github.com/slonana-labs/slonana-go/common"
)

// cacheEntry is the program cache's unit of storage, mirroring the
// reference validator's cache-entry shape. Bytecode and Verified do not
// change after publication (Put replaces the whole entry); Get updates
// LastUsed and Uses. The cache never calls back into the engine; the
// engine drops entries through Invalidate.
type cacheEntry struct {
	ProgramID    common.PublicKey
	Bytecode     []byte
	Verified     bool
	CompiledCode []byte
	LastUsed     time.Time
	Uses         uint64
}

func (e *cacheEntry) size() int {
	return len(e.Bytecode) + len(e.CompiledCode)
}

// ProgramCache is the LRU, byte-budgeted cache of BPF programs keyed by
// program ID, with each entry's verification result. All methods take the
// one mutex exclusively, lookups included, since Get updates recency.
type ProgramCache struct {
	mu        sync.Mutex
	maxBytes  int
	usedBytes int
	order     *list.List
	elems     map[common.PublicKey]*list.Element
}

// NewProgramCache constructs an empty cache bounded by maxBytes of
// combined bytecode + compiled-code size.
func NewProgramCache(maxBytes int) *ProgramCache {
	return &ProgramCache{
		maxBytes: maxBytes,
		order:    list.New(),
		elems:    make(map[common.PublicKey]*list.Element),
	}
}

// Get returns the cached program for id, marking it most-recently-used, or
// ok=false on a miss.
func (c *ProgramCache) Get(id common.PublicKey) (prog bpf.Program, verified bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, found := c.elems[id]
	if !found {
		return bpf.Program{}, false, false
	}
	c.order.MoveToFront(el)
	entry := el.Value.(*cacheEntry)
	entry.LastUsed = time.Now()
	entry.Uses++
	return bpf.Program{Code: entry.Bytecode}, entry.Verified, true
}

// Put inserts or replaces the cached entry for id, evicting least-recently
// used entries until the cache fits within maxBytes.
func (c *ProgramCache) Put(id common.PublicKey, bytecode []byte, verified bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.elems[id]; found {
		c.usedBytes -= el.Value.(*cacheEntry).size()
		c.order.Remove(el)
		delete(c.elems, id)
	}

	entry := &cacheEntry{ProgramID: id, Bytecode: bytecode, Verified: verified, LastUsed: time.Now()}
	el := c.order.PushFront(entry)
	c.elems[id] = el
	c.usedBytes += entry.size()

	for c.usedBytes > c.maxBytes && c.order.Len() > 0 {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		oldEntry := oldest.Value.(*cacheEntry)
		c.usedBytes -= oldEntry.size()
		c.order.Remove(oldest)
		delete(c.elems, oldEntry.ProgramID)
	}
}

// Invalidate removes id from the cache, if present. This is the sole
// channel through which the cache's contents change outside of a Get/Put
// driven by the dispatcher.
func (c *ProgramCache) Invalidate(id common.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, found := c.elems[id]
	if !found {
		return
	}
	c.usedBytes -= el.Value.(*cacheEntry).size()
	c.order.Remove(el)
	delete(c.elems, id)
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
