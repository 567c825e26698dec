package tracker

import "time"

// RecordPointerAction counts one pointer event (click or scroll tick).
// Events arriving while the tracker is stopped are discarded.
func (t *Tracker) RecordPointerAction() {
	now := t.clock.Now()

	t.mu.Lock()
	t.recordLocked(now)
	t.mu.Unlock()
}

// recordLocked appends a timestamp and opportunistically prunes the window
// front past WindowSize+PruneGrace, keeping memory bounded even when no
// reader runs. Caller holds t.mu.
func (t *Tracker) recordLocked(now time.Time) {
	if !t.running {
		return
	}

	t.actions = append(t.actions, now)
	t.totalActions++

	limit := t.cfg.WindowSize + t.cfg.PruneGrace
	i := 0
	for i < len(t.actions) && now.Sub(t.actions[i]) > limit {
		i++
	}
	if i > 0 {
		t.actions = t.actions[i:]
	}
}

// snapshotAndPrune prunes strictly to WindowSize and returns a copy of the
// remaining timestamps together with the session metadata. This is the
// only read path; the copy keeps all arithmetic outside the lock.
func (t *Tracker) snapshotAndPrune(now time.Time) (window []time.Time, total int64, start time.Time, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := 0
	for i < len(t.actions) && now.Sub(t.actions[i]) > t.cfg.WindowSize {
		i++
	}
	if i > 0 {
		// Re-slice into a fresh array so pruned entries are released.
		t.actions = append([]time.Time(nil), t.actions[i:]...)
	}

	window = append([]time.Time(nil), t.actions...)

	return window, t.totalActions, t.sessionStart, t.running
}
