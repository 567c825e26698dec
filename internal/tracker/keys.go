package tracker

// RecordKeyDown counts one action for the first down event of a press.
// Repeated down events for a held key (OS key-repeat) are ignored until
// the matching RecordKeyUp.
func (t *Tracker) RecordKeyDown(key string) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	if _, held := t.pressed[key]; held {
		return
	}
	t.pressed[key] = struct{}{}

	t.recordLocked(now)
}

// RecordKeyUp releases a key. Releasing a key that was never tracked is a
// no-op.
func (t *Tracker) RecordKeyUp(key string) {
	t.mu.Lock()
	delete(t.pressed, key)
	t.mu.Unlock()
}
