package tracker

import "github.com/eraceo/apmlive/internal/logger"

// Observer receives each metrics snapshot pushed by the reporting loop.
// Observers should not block; slow consumers are expected to offload
// their own work.
type Observer func(Snapshot)

// Function values are not comparable in Go, so registration identity is
// the caller-chosen name.
type registration struct {
	name string
	fn   Observer
}

// AddObserver registers an observer under a name. Registering the same
// name twice is a no-op; delivery follows registration order.
func (t *Tracker) AddObserver(name string, fn Observer) {
	if fn == nil {
		return
	}

	t.obsMu.Lock()
	defer t.obsMu.Unlock()

	for _, reg := range t.observers {
		if reg.name == name {
			return
		}
	}
	t.observers = append(t.observers, registration{name: name, fn: fn})
}

// RemoveObserver unregisters by name. Removing an unknown name is a no-op.
func (t *Tracker) RemoveObserver(name string) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()

	for i, reg := range t.observers {
		if reg.name == name {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// notifyAll delivers a snapshot to every observer registered at call time.
// The registry is copied first so concurrent add/remove cannot disturb the
// delivery loop.
func (t *Tracker) notifyAll(snapshot Snapshot) {
	t.obsMu.Lock()
	regs := append([]registration(nil), t.observers...)
	t.obsMu.Unlock()

	for _, reg := range regs {
		deliver(reg, snapshot)
	}
}

// deliver invokes one observer, containing panics so a faulty consumer
// cannot stop delivery to the rest or kill the reporting loop. The
// observer stays registered; deregistration is the consumer's decision.
func deliver(reg registration, snapshot Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("observer", reg.name).
				Interface("panic", r).
				Msg("Observer failed")
		}
	}()

	reg.fn(snapshot)
}
