package poh

import (
	"testing"
	"time"

	"github.com/slonana-labs/slonana-go/common"
)

// TestEntrySerializeRoundTrip covers the §8 round-trip law for PoH entries:
// DeserializeEntry(e.Serialize()) must reproduce e exactly.
func TestEntrySerializeRoundTrip(t *testing.T) {
	var h1, h2 common.Hash
	for i := range h1 {
		h1[i] = byte(i)
	}
	for i := range h2 {
		h2[i] = byte(0xff - i)
	}
	e := Entry{
		Hash:      h1,
		Seq:       7,
		Timestamp: time.Unix(0, 1_700_000_000_123_456_789),
		Mixed:     []common.Hash{h2},
	}

	got, err := DeserializeEntry(e.Serialize())
	if err != nil {
		t.Fatalf("DeserializeEntry: %v", err)
	}
	if got.Hash != e.Hash || got.Seq != e.Seq {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, e)
	}
	if got.Timestamp.UnixNano() != e.Timestamp.UnixNano() {
		t.Fatalf("timestamp round-trip mismatch: got %d, want %d", got.Timestamp.UnixNano(), e.Timestamp.UnixNano())
	}
	if len(got.Mixed) != len(e.Mixed) || got.Mixed[0] != e.Mixed[0] {
		t.Fatalf("mixed hashes round-trip mismatch: got %+v, want %+v", got.Mixed, e.Mixed)
	}
}

func TestEntrySerializeRoundTripEmptyMixed(t *testing.T) {
	e := Entry{Seq: 1, Timestamp: time.Unix(0, 0)}
	got, err := DeserializeEntry(e.Serialize())
	if err != nil {
		t.Fatalf("DeserializeEntry: %v", err)
	}
	if len(got.Mixed) != 0 {
		t.Fatalf("expected no mixed hashes, got %d", len(got.Mixed))
	}
}

func TestDeserializeEntryTruncated(t *testing.T) {
	if _, err := DeserializeEntry([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}
