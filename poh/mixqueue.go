// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package poh

import (
	"sync"
	"sync/atomic"

	"github.com/slonana-labs/slonana-go/common"
)

// mixQueue buffers externally supplied hashes awaiting inclusion in the
// next tick. Push is non-blocking: a full queue drops the hash rather
// than blocking the caller (the fire-and-forget contract in MixData).
// Two implementations sit behind this interface per the configuration
// knob EnableLockFreeMixQueue: a channel-backed MPSC queue and a
// mutex-guarded deque.
type mixQueue interface {
	Push(h common.Hash) bool
	Drain(max int) []common.Hash
	Len() int
}

// channelMixQueue is the lock-free-style implementation: a buffered
// channel used as an MPSC queue. Push is a non-blocking send; Drain reads
// whatever is immediately available.
type channelMixQueue struct {
	ch chan common.Hash
}

func newChannelMixQueue(capacity int) *channelMixQueue {
	return &channelMixQueue{ch: make(chan common.Hash, capacity)}
}

func (q *channelMixQueue) Push(h common.Hash) bool {
	select {
	case q.ch <- h:
		return true
	default:
		return false
	}
}

func (q *channelMixQueue) Drain(max int) []common.Hash {
	out := make([]common.Hash, 0, max)
	for len(out) < max {
		select {
		case h := <-q.ch:
			out = append(out, h)
		default:
			return out
		}
	}
	return out
}

func (q *channelMixQueue) Len() int {
	return len(q.ch)
}

// mutexMixQueue is the mutex-guarded deque implementation.
type mutexMixQueue struct {
	mu       sync.Mutex
	items    []common.Hash
	capacity int
	// contentionAttempts/contentionHits back Stats.LockContentionRatio when
	// EnableContentionTracking is set.
	trackContention    bool
	contentionAttempts uint64
	contentionHits     uint64
}

func newMutexMixQueue(capacity int, trackContention bool) *mutexMixQueue {
	return &mutexMixQueue{capacity: capacity, trackContention: trackContention}
}

func (q *mutexMixQueue) Push(h common.Hash) bool {
	if q.trackContention {
		atomic.AddUint64(&q.contentionAttempts, 1)
		// TryLock reports whether the mutex was free; approximate
		// "contention" as the attempt racing a held lock.
		if !q.mu.TryLock() {
			atomic.AddUint64(&q.contentionHits, 1)
			q.mu.Lock()
		}
	} else {
		q.mu.Lock()
	}
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, h)
	return true
}

func (q *mutexMixQueue) Drain(max int) []common.Hash {
	q.mu.Lock()
	defer q.mu.Unlock()
	if max > len(q.items) {
		max = len(q.items)
	}
	out := append([]common.Hash(nil), q.items[:max]...)
	q.items = q.items[max:]
	return out
}

func (q *mutexMixQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// contentionRatio returns contentionHits/contentionAttempts, or 0 if no
// attempts have been observed.
func (q *mutexMixQueue) contentionRatio() float64 {
	attempts := atomic.LoadUint64(&q.contentionAttempts)
	if attempts == 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&q.contentionHits)) / float64(attempts)
}
