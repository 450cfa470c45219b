package tasks

import (
	"sync"
	"sync/atomic"
	"time"
)

// SyncState guards against overlapping sync runs and remembers when the
// last run completed normally.
type SyncState struct {
	running atomic.Bool

	mu            sync.RWMutex
	lastCompleted time.Time
	lastStats     SyncStats

	now func() time.Time
}

func NewSyncState() *SyncState {
	return &SyncState{now: time.Now}
}

// TryStart moves the state from idle to running. It returns false when a
// run is already in progress.
func (s *SyncState) TryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

// MarkComplete records a normal completion and returns to idle.
func (s *SyncState) MarkComplete(stats SyncStats) {
	s.mu.Lock()
	s.lastCompleted = s.now()
	s.lastStats = stats
	s.mu.Unlock()

	s.running.Store(false)
}

// Release returns to idle without recording a completion.
func (s *SyncState) Release() {
	s.running.Store(false)
}

func (s *SyncState) IsRunning() bool {
	return s.running.Load()
}

// LastCompleted is the zero time until the first run completes.
func (s *SyncState) LastCompleted() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCompleted
}

func (s *SyncState) LastStats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStats
}

// DueSince reports whether at least minSpacing has passed since the last
// completed run. A state that never completed is always due.
func (s *SyncState) DueSince(minSpacing time.Duration) bool {
	last := s.LastCompleted()
	if last.IsZero() {
		return true
	}
	return s.now().Sub(last) >= minSpacing
}
