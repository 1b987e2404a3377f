// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package poh

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slonana-labs/slonana-go/common"
)

// ErrAlreadyRunning is returned by Start when the generator is not in the
// Stopped state.
var ErrAlreadyRunning = errors.New("poh: generator already running")

// runState is the generator's lifecycle state machine:
// Stopped -> Starting -> Running -> Stopping -> Stopped.
type runState uint8

const (
	stateStopped runState = iota
	stateStarting
	stateRunning
	stateStopping
)

// hashJob is dispatched from the producer lane to a hashing worker lane;
// the worker computes the next chain hash and replies on resultCh.
type hashJob struct {
	prevHash common.Hash
	mixed    []common.Hash
	resultCh chan common.Hash
}

// Generator produces the PoH hash chain on its own cadence and accepts
// external data to mix into it.
type Generator struct {
	config Config

	mu    sync.Mutex
	state runState

	seq  uint64 // atomic
	slot uint64 // atomic

	current      Entry
	history      []Entry
	slotEntries  map[uint64][]Entry
	firstSlotIdx uint64

	queue mixQueue

	tickCallback func(Entry)
	slotCallback func(slot uint64, entries []Entry)

	jobs     chan hashJob
	stopCh   chan struct{}
	producer sync.WaitGroup
	workers  sync.WaitGroup

	statsMu         sync.Mutex
	stats           Stats
	tickDurationSum time.Duration
	lastTickAt      time.Time
}

// NewGenerator constructs a Generator from config. The config is checked
// by Start, not here.
func NewGenerator(config Config) *Generator {
	return &Generator{config: config}
}

// Start resets the chain to seq=0, slot=0 with current.Hash = initialHash,
// and begins the producer and hashing-worker lanes. It fails if the
// config does not pass Config.Validate or the generator is not currently
// Stopped.
func (g *Generator) Start(initialHash common.Hash) error {
	if err := g.config.Validate(); err != nil {
		return err
	}
	g.mu.Lock()
	if g.state != stateStopped {
		g.mu.Unlock()
		return ErrAlreadyRunning
	}
	g.state = stateStarting

	atomic.StoreUint64(&g.seq, 0)
	atomic.StoreUint64(&g.slot, 0)
	g.current = Entry{Hash: initialHash, Seq: 0, Timestamp: time.Now()}
	g.history = []Entry{g.current}
	g.slotEntries = make(map[uint64][]Entry)
	g.firstSlotIdx = 0
	g.queue = g.newMixQueue()
	g.jobs = make(chan hashJob)
	g.stopCh = make(chan struct{})
	g.statsMu.Lock()
	g.stats = Stats{}
	g.tickDurationSum = 0
	g.lastTickAt = time.Time{}
	g.statsMu.Unlock()

	lanes := g.config.HashingParallelism
	if lanes <= 0 {
		lanes = 1
	}
	g.workers.Add(lanes)
	for i := 0; i < lanes; i++ {
		go g.hashWorker()
	}

	g.producer.Add(1)
	go g.run()

	g.state = stateRunning
	g.mu.Unlock()
	return nil
}

func (g *Generator) newMixQueue() mixQueue {
	if g.config.EnableLockFreeMixQueue {
		return newChannelMixQueue(g.config.MaxEntriesBuffer)
	}
	return newMutexMixQueue(g.config.MaxEntriesBuffer, g.config.EnableContentionTracking)
}

// Stop cooperatively halts the producer and hashing-worker lanes, blocking
// until all of them have observed the stop signal. Safe to call on an
// already-stopped generator.
func (g *Generator) Stop() error {
	g.mu.Lock()
	if g.state == stateStopped {
		g.mu.Unlock()
		return nil
	}
	g.state = stateStopping
	close(g.stopCh)
	g.mu.Unlock()

	g.producer.Wait()
	close(g.jobs)
	g.workers.Wait()

	g.mu.Lock()
	g.state = stateStopped
	g.mu.Unlock()
	return nil
}

func (g *Generator) hashWorker() {
	defer g.workers.Done()
	for job := range g.jobs {
		job.resultCh <- hashEntry(job.prevHash, job.mixed)
	}
}

// MixData enqueues hash for inclusion in the next tick and returns the
// sequence number at which it is guaranteed to appear: current_seq +
// pending_mix_count. If the queue is at capacity the mix is dropped and
// DroppedMixes is incremented; the caller observes this only via Stats.
func (g *Generator) MixData(hash common.Hash) uint64 {
	g.mu.Lock()
	queue := g.queue
	g.mu.Unlock()
	if queue == nil {
		return atomic.LoadUint64(&g.seq)
	}

	seq := atomic.LoadUint64(&g.seq) + uint64(queue.Len())
	if !queue.Push(hash) {
		g.statsMu.Lock()
		g.stats.DroppedMixes++
		g.statsMu.Unlock()
	}
	return seq
}

// GetCurrentEntry returns a snapshot of the most recently produced entry.
func (g *Generator) GetCurrentEntry() Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// GetCurrentSequence returns the current sequence number.
func (g *Generator) GetCurrentSequence() uint64 {
	return atomic.LoadUint64(&g.seq)
}

// GetCurrentSlot returns the current slot.
func (g *Generator) GetCurrentSlot() uint64 {
	return atomic.LoadUint64(&g.slot)
}

// GetSlotEntries returns the complete in-memory record for slot, or an
// empty slice if it has fallen outside the retention window or never
// completed.
func (g *Generator) GetSlotEntries(slot uint64) []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	entries := g.slotEntries[slot]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// SetTickCallback installs f to be invoked after every tick, replacing
// any previously installed callback.
func (g *Generator) SetTickCallback(f func(Entry)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tickCallback = f
}

// SetSlotCallback installs f to be invoked after every completed slot,
// replacing any previously installed callback.
func (g *Generator) SetSlotCallback(f func(slot uint64, entries []Entry)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.slotCallback = f
}

// Stats returns a snapshot of the generator's observability counters.
func (g *Generator) Stats() Stats {
	g.statsMu.Lock()
	defer g.statsMu.Unlock()
	out := g.stats
	if mq, ok := g.queue.(*mutexMixQueue); ok && g.config.EnableContentionTracking {
		out.LockContentionRatio = mq.contentionRatio()
	}
	if g.queue != nil {
		out.PendingMixCount = g.queue.Len()
	}
	return out
}

// run is the single producer lane: it wakes at next_tick_deadline, drains
// pending mixes, advances the chain, and checks slot completion. Falling
// behind is absorbed by issuing ticks back-to-back without sleeping,
// never by accumulating drift in the deadline itself.
func (g *Generator) run() {
	defer g.producer.Done()
	deadline := time.Now().Add(g.config.TargetTickDuration)
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}

		if now := time.Now(); now.Before(deadline) {
			timer := time.NewTimer(deadline.Sub(now))
			select {
			case <-g.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		g.tick()
		deadline = deadline.Add(g.config.TargetTickDuration)
	}
}

func (g *Generator) tick() {
	tickStart := time.Now()

	batch := g.config.BatchSize
	mixed := g.queue.Drain(batch)

	resultCh := make(chan common.Hash, 1)
	g.jobs <- hashJob{prevHash: g.current.Hash, mixed: mixed, resultCh: resultCh}
	newHash := <-resultCh

	g.mu.Lock()
	next := Entry{Hash: newHash, Seq: g.current.Seq + 1, Timestamp: time.Now(), Mixed: mixed}
	g.current = next
	g.history = append(g.history, next)
	if len(g.history) > g.config.MaxEntriesBuffer {
		g.history = g.history[len(g.history)-g.config.MaxEntriesBuffer:]
	}
	atomic.StoreUint64(&g.seq, next.Seq)

	cb := g.tickCallback
	var slotCb func(uint64, []Entry)
	var completedSlot uint64
	var completedEntries []Entry
	slotCompleted := false

	if next.Seq > 0 && next.Seq%g.config.TicksPerSlot == 0 {
		slot := atomic.LoadUint64(&g.slot)
		start := slot * g.config.TicksPerSlot
		completedEntries = g.entriesInRange(start+1, next.Seq)
		g.slotEntries[slot] = completedEntries
		g.evictOldSlots(slot)
		atomic.StoreUint64(&g.slot, slot+1)
		slotCb = g.slotCallback
		completedSlot = slot
		slotCompleted = true
	}
	g.mu.Unlock()

	if cb != nil {
		cb(next)
	}
	if slotCompleted && slotCb != nil {
		slotCb(completedSlot, completedEntries)
	}

	g.recordTickStats(tickStart, len(mixed), batch)
}

// entriesInRange returns the retained history entries with Seq in
// [loSeq, hiSeq], or nil if that range has already been evicted.
func (g *Generator) entriesInRange(loSeq, hiSeq uint64) []Entry {
	if len(g.history) == 0 {
		return nil
	}
	oldestSeq := g.history[0].Seq
	if loSeq < oldestSeq {
		return nil
	}
	start := int(loSeq - oldestSeq)
	end := int(hiSeq-oldestSeq) + 1
	if start < 0 || end > len(g.history) {
		return nil
	}
	out := make([]Entry, end-start)
	copy(out, g.history[start:end])
	return out
}

// evictOldSlots drops retained per-slot records older than MaxSlotHistory
// relative to the just-completed slot.
func (g *Generator) evictOldSlots(completedSlot uint64) {
	if completedSlot < MaxSlotHistory {
		return
	}
	cutoff := completedSlot - MaxSlotHistory
	for s := g.firstSlotIdx; s <= cutoff; s++ {
		delete(g.slotEntries, s)
	}
	g.firstSlotIdx = cutoff + 1
}

func (g *Generator) recordTickStats(tickStart time.Time, mixedCount, batchCap int) {
	d := time.Since(tickStart)

	g.statsMu.Lock()
	defer g.statsMu.Unlock()
	g.stats.TotalTicks++
	g.stats.TotalHashes++
	g.stats.LastTickDuration = d
	if g.stats.MinTickDuration == 0 || d < g.stats.MinTickDuration {
		g.stats.MinTickDuration = d
	}
	if d > g.stats.MaxTickDuration {
		g.stats.MaxTickDuration = d
	}
	g.tickDurationSum += d
	g.stats.AvgTickDuration = g.tickDurationSum / time.Duration(g.stats.TotalTicks)

	now := time.Now()
	if !g.lastTickAt.IsZero() {
		if elapsed := now.Sub(g.lastTickAt); elapsed > 0 {
			g.stats.TicksPerSecond = float64(time.Second) / float64(elapsed)
		}
	}
	g.lastTickAt = now

	if batchCap > 0 {
		g.stats.BatchEfficiency = float64(mixedCount) / float64(batchCap)
	}
}
