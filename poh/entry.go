// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package poh

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodbin"
)

// Entry is one link of the PoH hash chain: Hash = H(prev.Hash ‖
// concat(Mixed)), Seq = prev.Seq + 1, and Timestamp strictly increasing.
type Entry struct {
	Hash      common.Hash
	Seq       uint64
	Timestamp time.Time
	Mixed     []common.Hash
}

// hashEntry computes H(prevHash ‖ concat(mixed)) using SHA-256, the
// reference validator's chosen hash function for this spec-level H
// placeholder.
func hashEntry(prevHash common.Hash, mixed []common.Hash) common.Hash {
	h := sha256.New()
	h.Write(prevHash[:])
	for _, m := range mixed {
		h.Write(m[:])
	}
	var out common.Hash
	out.SetBytes(h.Sum(nil))
	return out
}

// nextEntry derives the entry following prev, mixing in the given hashes
// and stamping the current wall-clock time.
func nextEntry(prev Entry, mixed []common.Hash, now time.Time) Entry {
	return Entry{
		Hash:      hashEntry(prev.Hash, mixed),
		Seq:       prev.Seq + 1,
		Timestamp: now,
		Mixed:     mixed,
	}
}

// Serialize encodes the entry per the wire layout: hash(32) ||
// seq(LE u64) || timestamp(LE i64 ns) || mix_count(LE u32) ||
// concatenated mixed hashes.
func (e Entry) Serialize() []byte {
	buf := make([]byte, 0, 32+8+8+4+32*len(e.Mixed))
	buf = append(buf, e.Hash[:]...)

	seq := make([]byte, 8)
	encodbin.LE.PutUint64(seq, e.Seq)
	buf = append(buf, seq...)

	ts := make([]byte, 8)
	encodbin.LE.PutUint64(ts, uint64(e.Timestamp.UnixNano()))
	buf = append(buf, ts...)

	count := make([]byte, 4)
	encodbin.LE.PutUint32(count, uint32(len(e.Mixed)))
	buf = append(buf, count...)

	for _, m := range e.Mixed {
		buf = append(buf, m[:]...)
	}
	return buf
}

// DeserializeEntry decodes the layout Serialize produces.
func DeserializeEntry(b []byte) (Entry, error) {
	var e Entry
	const fixed = 32 + 8 + 8 + 4
	if len(b) < fixed {
		return e, fmt.Errorf("poh: entry buffer too short, want at least %d bytes, got %d", fixed, len(b))
	}
	off := 0
	e.Hash.SetBytes(b[off : off+32])
	off += 32
	e.Seq = encodbin.LE.Uint64(b[off : off+8])
	off += 8
	e.Timestamp = time.Unix(0, int64(encodbin.LE.Uint64(b[off:off+8])))
	off += 8
	count := int(encodbin.LE.Uint32(b[off : off+4]))
	off += 4
	if off+32*count > len(b) {
		return e, fmt.Errorf("poh: truncated mixed-hash list, want %d entries", count)
	}
	for i := 0; i < count; i++ {
		var m common.Hash
		m.SetBytes(b[off : off+32])
		e.Mixed = append(e.Mixed, m)
		off += 32
	}
	return e, nil
}
