package state

import (
	"sync"

	"pairsniper/internal/market"
)

// Store holds the watch configuration, the latest successfully fetched
// snapshot, and the last trade outcome. All access goes through the mutex;
// critical sections are copies only, so readers never observe a
// half-written record and never wait on network calls.
type Store struct {
	mu        sync.RWMutex
	cfg       *Configuration
	snapshot  *market.Snapshot
	lastTrade *TradeOutcome
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a new configuration and resets the displayed snapshot
// and trade outcome, so stale data from a prior configuration is never
// shown against the new pair.
func (s *Store) Replace(cfg Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = &cfg
	s.snapshot = nil
	s.lastTrade = nil
}

// Configuration returns a copy of the current configuration, and false
// when none has been submitted yet.
func (s *Store) Configuration() (Configuration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return Configuration{}, false
	}
	return *s.cfg, true
}

// PublishSnapshot records the latest successfully fetched snapshot. Failed
// fetches must not call this; the previous snapshot stays displayed.
func (s *Store) PublishSnapshot(snap market.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snap
}

// PublishTrade records the outcome of an order attempt.
func (s *Store) PublishTrade(outcome TradeOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTrade = &outcome
}

// Display returns a consistent copy of everything the presentation surface
// renders.
func (s *Store) Display() DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := DisplayState{Configured: s.cfg != nil}
	if s.cfg != nil {
		out.Pair = s.cfg.Pair.String()
	}
	if s.snapshot != nil {
		snap := *s.snapshot
		out.Snapshot = &snap
	}
	if s.lastTrade != nil {
		trade := *s.lastTrade
		out.LastTrade = &trade
	}
	return out
}
