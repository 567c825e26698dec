package tracker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsZeroElapsedSession(t *testing.T) {
	tr, _ := newTestTracker(t, quietConfig())

	tr.Start()
	m := tr.Metrics()

	assert.Equal(t, 0.0, m.CurrentAPM)
	assert.Equal(t, 0.0, m.AvgAPM)
	assert.Equal(t, 0.0, m.APS)
	assert.Zero(t, m.SessionTime)
}

func TestMetricsZeroWhenStopped(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	clk.Advance(30 * time.Second)
	tr.RecordPointerAction()
	tr.Stop()

	clk.Advance(time.Second)
	m := tr.Metrics()
	assert.Equal(t, 0.0, m.CurrentAPM)
	assert.Equal(t, 0.0, m.AvgAPM)
	assert.Zero(t, m.TotalActions)
	assert.Zero(t, m.SessionTime, "a stopped tracker reports no prior session duration")
}

func TestMetricsOneActionPerSecond(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	for i := 0; i < 60; i++ {
		clk.Advance(time.Second)
		tr.RecordPointerAction()
	}

	m := tr.Metrics()
	assert.InDelta(t, 60.0, m.CurrentAPM, 2.0)
	assert.InDelta(t, 60.0, m.AvgAPM, 2.0)
	assert.Equal(t, int64(60), m.TotalActions)
	assert.Equal(t, int64(60), m.SessionTime)
}

func TestWindowBoundary(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	// An action 61 seconds old falls outside a 60 second window.
	tr.Start()
	tr.RecordPointerAction()
	clk.Advance(61 * time.Second)
	m := tr.Metrics()
	assert.Equal(t, 0.0, m.CurrentAPM)

	// One 59 seconds old is still inside.
	tr.Reset()
	tr.RecordPointerAction()
	clk.Advance(59 * time.Second)
	m = tr.Metrics()
	require.Equal(t, int64(1), m.TotalActions)
	assert.Greater(t, m.CurrentAPM, 0.0)
}

func TestCurrentAPMUsesElapsedTimeForYoungSessions(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	// 10 actions in the first 6 seconds of a session: the divisor is the
	// elapsed 6 seconds, not the full 60 second window.
	tr.Start()
	for i := 0; i < 10; i++ {
		tr.RecordPointerAction()
	}
	clk.Advance(6 * time.Second)

	m := tr.Metrics()
	assert.InDelta(t, 100.0, m.CurrentAPM, 0.1)
}

func TestAPSYoungSessionDivisor(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	// 5 actions in 5 seconds, session younger than the 10 second APS
	// window: divide by elapsed time.
	tr.Start()
	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
		tr.RecordPointerAction()
	}
	m := tr.Metrics()
	assert.InDelta(t, 1.0, m.APS, 0.01)
}

func TestAPSMatureSessionDivisor(t *testing.T) {
	tr, clk := newTestTracker(t, quietConfig())

	tr.Start()
	for i := 0; i < 20; i++ {
		clk.Advance(time.Second)
		tr.RecordPointerAction()
	}

	// Session is 20s old; only the trailing 10 seconds count (11 samples,
	// the boundary action included), divided by the fixed window.
	m := tr.Metrics()
	assert.InDelta(t, 1.1, m.APS, 0.01)
}

func TestAvgAPMCountsPrunedActions(t *testing.T) {
	cfg := quietConfig()
	cfg.WindowSize = 10 * time.Second
	cfg.PruneGrace = 0
	tr, clk := newTestTracker(t, cfg)

	tr.Start()
	for i := 0; i < 120; i++ {
		clk.Advance(time.Second)
		tr.RecordPointerAction()
	}

	// Two minutes at one action per second. The window only retains the
	// trailing 10 seconds, but the average covers the whole session.
	m := tr.Metrics()
	assert.InDelta(t, 60.0, m.AvgAPM, 1.0)
	assert.Equal(t, int64(120), m.TotalActions)
}
