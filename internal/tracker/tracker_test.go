package tracker_test

import (
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eraceo/apmlive/internal/clock"
	"github.com/eraceo/apmlive/internal/logger"
	"github.com/eraceo/apmlive/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	os.Exit(m.Run())
}

// quietConfig keeps the reporting loop effectively idle so tests can
// drive the manual clock without background ticks interfering.
func quietConfig() tracker.Config {
	cfg := tracker.DefaultConfig()
	cfg.UpdateInterval = time.Hour
	return cfg
}

func newTestTracker(t *testing.T, cfg tracker.Config) (*tracker.Tracker, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	tr, err := tracker.New(cfg, clk)
	require.NoError(t, err)
	t.Cleanup(tr.Stop)

	return tr, clk
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.WindowSize = 0
	_, err := tracker.New(cfg, nil)
	require.Error(t, err)

	cfg = tracker.DefaultConfig()
	cfg.UpdateInterval = -time.Second
	_, err = tracker.New(cfg, nil)
	require.Error(t, err)

	cfg = tracker.DefaultConfig()
	cfg.StopTimeout = 0
	_, err = tracker.New(cfg, nil)
	require.Error(t, err)

	_, err = tracker.New(tracker.DefaultConfig(), nil)
	require.NoError(t, err)
}

func TestStartIsIdempotent(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	clk.Advance(30 * time.Second)
	tr.Start() // no-op; must not reset the session start

	tr.RecordPointerAction()

	m := tr.Metrics()
	assert.Equal(t, int64(1), m.TotalActions)
	assert.Equal(t, int64(30), m.SessionTime, "second Start must not restart the session")
}

func TestStopIsIdempotent(t *testing.T) {
	tr, _ := newTestTracker(t, quietConfig())

	tr.Start()
	tr.Stop()
	tr.Stop() // must be safe

	m := tr.Metrics()
	assert.Zero(t, m.TotalActions)
	assert.Zero(t, m.SessionTime)
}

func TestRecordWhileStoppedIsIgnored(t *testing.T) {
	tr, _ := newTestTracker(t, quietConfig())

	tr.RecordPointerAction()
	tr.RecordKeyDown("a")

	tr.Start()
	assert.Zero(t, tr.Metrics().TotalActions)
}

func TestTotalActionsSurvivesPruning(t *testing.T) {
	cfg := quietConfig()
	cfg.WindowSize = time.Second
	cfg.PruneGrace = 0
	tr, clk := newTestTracker(t, cfg)

	tr.Start()
	for i := 0; i < 10; i++ {
		clk.Advance(time.Second)
		tr.RecordPointerAction()
	}

	m := tr.Metrics()
	assert.Equal(t, int64(10), m.TotalActions, "pruning must not touch the total counter")
}

func TestResetClearsSession(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	clk.Advance(5 * time.Second)
	for i := 0; i < 5; i++ {
		tr.RecordPointerAction()
	}
	require.Equal(t, int64(5), tr.Metrics().TotalActions)

	tr.Reset()

	m := tr.Metrics()
	assert.Zero(t, m.TotalActions)
	assert.Zero(t, m.SessionTime, "running session must restart from zero")
	assert.Zero(t, m.CurrentAPM)
}

func TestResetWhileStopped(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	tr.RecordPointerAction()
	tr.Stop()
	tr.Reset()

	clk.Advance(time.Minute)
	m := tr.Metrics()
	assert.Zero(t, m.TotalActions)
	assert.Zero(t, m.SessionTime)
}

func TestStopClearsHeldKeys(t *testing.T) {
	tr, _ := newTestTracker(t, quietConfig())

	tr.Start()
	tr.RecordKeyDown("shift")
	require.Equal(t, int64(1), tr.Metrics().TotalActions)

	// Key is still physically held while tracking stops.
	tr.Stop()
	tr.Start()

	tr.RecordKeyDown("shift")
	assert.Equal(t, int64(1), tr.Metrics().TotalActions,
		"a key held across stop must count again in the new session")
}

func TestConcurrentProducers(t *testing.T) {
	const (
		producers          = 8
		actionsPerProducer = 500
	)

	cfg := tracker.DefaultConfig()
	cfg.UpdateInterval = 5 * time.Millisecond

	tr, err := tracker.New(cfg, nil)
	require.NoError(t, err)
	tr.Start()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				tr.Metrics()
			}
		}
	}()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < actionsPerProducer; i++ {
				tr.RecordPointerAction()
			}
		}()
	}
	wg.Wait()
	close(done)

	assert.Equal(t, int64(producers*actionsPerProducer), tr.Metrics().TotalActions)
	tr.Stop()
}

func TestReportingLoopDelivers(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.UpdateInterval = 5 * time.Millisecond

	tr, err := tracker.New(cfg, nil)
	require.NoError(t, err)

	snapshots := make(chan tracker.Snapshot, 64)
	tr.AddObserver("test", func(s tracker.Snapshot) {
		select {
		case snapshots <- s:
		default:
		}
	})

	tr.Start()
	defer tr.Stop()

	select {
	case <-snapshots:
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered within 2s")
	}
}

func TestStopTerminatesReportingLoop(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.UpdateInterval = 5 * time.Millisecond
	cfg.StopTimeout = 500 * time.Millisecond

	tr, err := tracker.New(cfg, nil)
	require.NoError(t, err)

	var ticks atomic.Int64
	tr.AddObserver("count", func(tracker.Snapshot) {
		ticks.Add(1)
	})

	tr.Start()
	time.Sleep(50 * time.Millisecond)
	tr.Stop()

	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "loop must not tick after Stop returns")
}
