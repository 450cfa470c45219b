package tasks

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSyncState_TryStartIsExclusive(t *testing.T) {
	state := NewSyncState()

	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if state.TryStart() {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := started.Load(); got != 1 {
		t.Errorf("Expected exactly one start, got %d", got)
	}
	if !state.IsRunning() {
		t.Error("Expected state to be running")
	}
}

func TestSyncState_MarkCompleteAndRelease(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	state := NewSyncState()
	state.now = func() time.Time { return now }

	if !state.LastCompleted().IsZero() {
		t.Error("Expected zero completion time before first run")
	}

	state.TryStart()
	state.Release()

	if state.IsRunning() {
		t.Error("Expected Release to return to idle")
	}
	if !state.LastCompleted().IsZero() {
		t.Error("Expected Release not to record completion")
	}

	state.TryStart()
	state.MarkComplete(SyncStats{Listed: 3, Created: 3})

	if state.IsRunning() {
		t.Error("Expected MarkComplete to return to idle")
	}
	if !state.LastCompleted().Equal(now) {
		t.Errorf("Expected completion at %v, got %v", now, state.LastCompleted())
	}
	if state.LastStats().Created != 3 {
		t.Errorf("Expected stats to be recorded, got %+v", state.LastStats())
	}
	if !state.TryStart() {
		t.Error("Expected a new run to start after completion")
	}
}

func TestSyncState_DueSince(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	state := NewSyncState()
	state.now = func() time.Time { return now }

	if !state.DueSince(5 * time.Minute) {
		t.Error("Expected state without completed run to be due")
	}

	state.TryStart()
	state.MarkComplete(SyncStats{})

	now = now.Add(4 * time.Minute)
	if state.DueSince(5 * time.Minute) {
		t.Error("Expected state not to be due within spacing")
	}

	now = now.Add(time.Minute)
	if !state.DueSince(5 * time.Minute) {
		t.Error("Expected state to be due once spacing has passed")
	}
}
