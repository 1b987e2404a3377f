// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package accounts

import (
	"sync"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/core"
)

// RentConfig bounds rent collection. Numerics are policy, not specified.
type RentConfig struct {
	// RentPerEpoch is deducted from every account below RentExemptThreshold
	// at each CollectRent call.
	RentPerEpoch common.Lamport
	// RentExemptThreshold is the balance at or above which an account is
	// exempt from rent.
	RentExemptThreshold common.Lamport
}

// DefaultRentConfig mirrors the reference implementation's rent-exemption
// minimum for a zero-data account.
var DefaultRentConfig = RentConfig{
	RentPerEpoch:        0,
	RentExemptThreshold: 890880,
}

// Snapshot is an immutable copy of the committed layer, handed to OnCommit
// subscribers and accepted by Restore. The storage collaborator that
// persists it is out of scope.
type Snapshot struct {
	Accounts map[common.PublicKey]Account
}

// Store is the two-layer account store: a committed map plus a
// transaction-local pending-changes map. Reads prefer pending over
// committed. Every method takes mu: reads take the read lock, and
// Create, Update, Commit, Rollback, CollectRent, OnCommit and Restore take
// the write lock.
type Store struct {
	mu        sync.RWMutex
	committed map[common.PublicKey]Account
	pending   map[common.PublicKey]Account
	rent      RentConfig

	onCommit []func(Snapshot)
}

// NewStore constructs an empty store with the given rent configuration.
func NewStore(rent RentConfig) *Store {
	return &Store{
		committed: make(map[common.PublicKey]Account),
		pending:   make(map[common.PublicKey]Account),
		rent:      rent,
	}
}

// Get returns the account for key, preferring the pending layer, and
// whether it was found.
func (s *Store) Get(key common.PublicKey) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.pending[key]; ok {
		return a, true
	}
	a, ok := s.committed[key]
	return a, ok
}

// Exists reports whether key is present in either layer.
func (s *Store) Exists(key common.PublicKey) bool {
	_, ok := s.Get(key)
	return ok
}

// Balance returns the lamport balance for key, or 0 if absent.
func (s *Store) Balance(key common.PublicKey) common.Lamport {
	a, _ := s.Get(key)
	return a.Lamports
}

// AccountsOwnedBy returns every account (merging layers, pending wins)
// whose Owner equals owner.
func (s *Store) AccountsOwnedBy(owner common.PublicKey) []Account {
	merged := s.mergedView()
	out := make([]Account, 0)
	for _, a := range merged {
		if a.Owner == owner {
			out = append(out, a)
		}
	}
	return out
}

// AllAccounts returns every account in the merged view.
func (s *Store) AllAccounts() []Account {
	merged := s.mergedView()
	out := make([]Account, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	return out
}

func (s *Store) mergedView() map[common.PublicKey]Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	merged := make(map[common.PublicKey]Account, len(s.committed)+len(s.pending))
	for k, v := range s.committed {
		merged[k] = v
	}
	for k, v := range s.pending {
		merged[k] = v
	}
	return merged
}

// Create stages a brand-new account. It fails if key already exists in
// either layer.
func (s *Store) Create(account Account) error {
	if s.Exists(account.Key) {
		return core.StdErr("Create", core.ErrDuplicateAccount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[account.Key] = account
	return nil
}

// Update upserts account into the pending layer.
func (s *Store) Update(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[account.Key] = account
}

// Commit atomically folds the pending layer into the committed layer and
// fires OnCommit subscribers with a snapshot of the post-commit state.
func (s *Store) Commit() {
	s.mu.Lock()
	for k, v := range s.pending {
		s.committed[k] = v
	}
	s.pending = make(map[common.PublicKey]Account)
	snap := Snapshot{Accounts: make(map[common.PublicKey]Account, len(s.committed))}
	for k, v := range s.committed {
		snap.Accounts[k] = v
	}
	hooks := append([]func(Snapshot){}, s.onCommit...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(snap)
	}
}

// Rollback discards the pending layer without touching committed state.
func (s *Store) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[common.PublicKey]Account)
}

// CollectRent deducts RentPerEpoch from every committed account below
// RentExemptThreshold, removing any account that reaches zero lamports.
// Accounts currently staged in the pending layer are left for the owning
// transaction to resolve.
func (s *Store) CollectRent(epoch common.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.committed {
		if a.Lamports >= s.rent.RentExemptThreshold {
			continue
		}
		if a.Lamports <= s.rent.RentPerEpoch {
			delete(s.committed, k)
			continue
		}
		a.Lamports -= s.rent.RentPerEpoch
		a.RentEpoch = epoch
		s.committed[k] = a
	}
}

// OnCommit registers f to be called with a snapshot after every successful
// Commit. Multiple registrations are invoked in registration order.
func (s *Store) OnCommit(f func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, f)
}

// Restore bulk-loads committed state from snap, discarding whatever the
// store held before. Intended to run before transactions begin.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = make(map[common.PublicKey]Account, len(snap.Accounts))
	for k, v := range snap.Accounts {
		s.committed[k] = v
	}
	s.pending = make(map[common.PublicKey]Account)
}
