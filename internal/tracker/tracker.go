// Package tracker implements the sliding-window rate core: it accepts
// action events from concurrent producers, keeps a time-bounded window of
// recent timestamps, and pushes metrics snapshots to registered observers
// on a fixed cadence.
package tracker

import (
	"sync"
	"time"

	"github.com/eraceo/apmlive/internal/clock"
	"github.com/eraceo/apmlive/internal/errors"
	"github.com/eraceo/apmlive/internal/logger"
)

const (
	DefaultWindowSize     = 60 * time.Second
	DefaultAPSWindow      = 10 * time.Second
	DefaultPruneGrace     = 10 * time.Second
	DefaultUpdateInterval = 100 * time.Millisecond
	DefaultStopTimeout    = time.Second
)

type Config struct {
	// WindowSize is the trailing duration over which the current rate is
	// computed.
	WindowSize time.Duration
	// APSWindow is the shorter trailing duration for the actions-per-second
	// figure.
	APSWindow time.Duration
	// PruneGrace is extra retention applied at write-time pruning so not
	// every insert walks the window front.
	PruneGrace time.Duration
	// UpdateInterval is the reporting loop cadence.
	UpdateInterval time.Duration
	// StopTimeout bounds how long Stop waits for the reporting loop.
	StopTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WindowSize:     DefaultWindowSize,
		APSWindow:      DefaultAPSWindow,
		PruneGrace:     DefaultPruneGrace,
		UpdateInterval: DefaultUpdateInterval,
		StopTimeout:    DefaultStopTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.WindowSize <= 0 {
		return errFactory.WithData(ErrInvalidWindow, c.WindowSize)
	}
	if c.APSWindow <= 0 {
		return errFactory.WithData(ErrInvalidWindow, c.APSWindow)
	}
	if c.PruneGrace < 0 {
		return errFactory.WithData(ErrInvalidWindow, c.PruneGrace)
	}
	if c.UpdateInterval <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.UpdateInterval)
	}
	if c.StopTimeout <= 0 {
		return errFactory.WithData(ErrInvalidInterval, c.StopTimeout)
	}

	return nil
}

// Tracker owns all session state. One mutex guards the action window and
// the session metadata; the critical sections do no arithmetic, I/O or
// callback work, so producers are never stalled by reporting.
type Tracker struct {
	cfg   Config
	clock clock.Clock

	mu           sync.Mutex
	actions      []time.Time
	totalActions int64
	running      bool
	sessionStart time.Time
	pressed      map[string]struct{}

	obsMu     sync.Mutex
	observers []registration

	stopCh chan struct{}
	doneCh chan struct{}
}

func New(cfg Config, clk clock.Clock) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System()
	}

	return &Tracker{
		cfg:     cfg,
		clock:   clk,
		pressed: make(map[string]struct{}),
	}, nil
}

// Start begins a new session and launches the reporting loop. Calling
// Start on a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.sessionStart = t.clock.Now()
	t.actions = nil
	t.totalActions = 0
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	t.stopCh = stopCh
	t.doneCh = doneCh
	t.mu.Unlock()

	go t.reportLoop(stopCh, doneCh)

	logger.Info().Msg("Tracking started")
}

// Stop ends the session and waits for the reporting loop to exit, bounded
// by StopTimeout. Calling Stop on a stopped tracker is a no-op.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	// Keys physically held across the stop must not survive as "already
	// counted" into a later session.
	t.pressed = make(map[string]struct{})
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(t.cfg.StopTimeout):
		logger.Warn().
			Dur("timeout", t.cfg.StopTimeout).
			Msg("Reporting loop did not exit within the stop timeout")
	}

	logger.Info().Msg("Tracking stopped")
}

// Reset clears the window, the total counter and the pressed-key set. A
// running session continues from zero; a stopped tracker stays stopped.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.actions = nil
	t.totalActions = 0
	t.pressed = make(map[string]struct{})
	if t.running {
		t.sessionStart = t.clock.Now()
	} else {
		t.sessionStart = time.Time{}
	}
	t.mu.Unlock()

	logger.Debug().Msg("Session reset")
}

// Metrics computes a snapshot on demand, for polling consumers. The push
// path through the reporting loop uses the same read.
func (t *Tracker) Metrics() Snapshot {
	now := t.clock.Now()
	window, total, start, running := t.snapshotAndPrune(now)

	return computeSnapshot(now, t.cfg, window, total, start, running)
}

func (t *Tracker) reportLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(t.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.notifyAll(t.Metrics())
		}
	}
}
