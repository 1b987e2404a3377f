package poh

import (
	"testing"
	"time"

	"github.com/slonana-labs/slonana-go/common"
)

func testConfig() Config {
	c := DefaultConfig
	c.TicksPerSlot = 4
	c.TargetTickDuration = time.Millisecond
	return c
}

// TestMinimalPohChain implements S1.
func TestMinimalPohChain(t *testing.T) {
	g := NewGenerator(testConfig())
	var initial common.Hash
	for i := range initial {
		initial[i] = 0x01
	}
	if err := g.Start(initial); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for g.GetCurrentSequence() < 8 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := g.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if seq := g.GetCurrentSequence(); seq < 8 {
		t.Fatalf("expected at least 8 ticks, got seq=%d", seq)
	}
	if slot := g.GetCurrentSlot(); slot < 2 {
		t.Fatalf("expected at least slot 2, got %d", slot)
	}

	entries := g.history
	if !VerifySequence(entries) {
		t.Fatalf("expected retained entries to verify")
	}
	for i := 1; i < len(entries); i++ {
		if len(entries[i].Mixed) != 0 {
			t.Fatalf("entry %d expected empty Mixed, got %v", i, entries[i].Mixed)
		}
		if !entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatalf("entry %d timestamp did not strictly increase", i)
		}
	}
}

// TestMixIntoChain implements S2.
func TestMixIntoChain(t *testing.T) {
	g := NewGenerator(testConfig())
	var initial common.Hash
	if err := g.Start(initial); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer g.Stop()

	var h1 common.Hash
	for i := range h1 {
		h1[i] = 0xAA
	}
	g.MixData(h1)

	deadline := time.Now().Add(2 * testConfig().TargetTickDuration * 20)
	var found *Entry
	for time.Now().Before(deadline) {
		g.mu.Lock()
		for i := range g.history {
			e := g.history[i]
			if len(e.Mixed) == 1 && e.Mixed[0] == h1 {
				found = &e
				break
			}
		}
		g.mu.Unlock()
		if found != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if found == nil {
		t.Fatalf("expected h1 to appear mixed into some entry")
	}

	g.mu.Lock()
	idx := -1
	for i := range g.history {
		if g.history[i].Seq == found.Seq {
			idx = i
			break
		}
	}
	prev := g.history[idx-1]
	g.mu.Unlock()

	if hashEntry(prev.Hash, found.Mixed) != found.Hash {
		t.Fatalf("expected found.Hash == H(prev.Hash || H1)")
	}

	occurrences := 0
	g.mu.Lock()
	for _, e := range g.history {
		if len(e.Mixed) == 1 && e.Mixed[0] == h1 {
			occurrences++
		}
	}
	g.mu.Unlock()
	if occurrences != 1 {
		t.Fatalf("expected h1 to appear exactly once, got %d", occurrences)
	}
}

func TestMixDataDroppedUnderPressure(t *testing.T) {
	c := testConfig()
	c.MaxEntriesBuffer = 1
	c.EnableLockFreeMixQueue = true
	g := NewGenerator(c)
	// Install the queue directly instead of calling Start, so no producer
	// lane drains it and the drop path is exercised deterministically.
	g.mu.Lock()
	g.queue = newChannelMixQueue(1)
	g.mu.Unlock()

	var h1, h2 common.Hash
	h1[0] = 1
	h2[0] = 2
	g.MixData(h1)
	if dropped := g.Stats().DroppedMixes; dropped != 0 {
		t.Fatalf("expected first mix to be accepted, got %d dropped", dropped)
	}
	g.MixData(h2)
	if dropped := g.Stats().DroppedMixes; dropped != 1 {
		t.Fatalf("expected second mix to be dropped at capacity, got %d dropped", dropped)
	}
}
