package tracker

import (
	"math"
	"time"
)

// Snapshot is an immutable set of metrics for one reporting tick. It is
// handed to observers by value; nothing in it aliases tracker state.
type Snapshot struct {
	CurrentAPM   float64   `json:"apm"`
	AvgAPM       float64   `json:"average_apm"`
	APS          float64   `json:"actions_per_second"`
	TotalActions int64     `json:"total_actions"`
	SessionTime  int64     `json:"session_duration"`
	Timestamp    time.Time `json:"-"`
}

// computeSnapshot derives all statistics from a window copy and session
// metadata. Pure; safe to call concurrently.
func computeSnapshot(now time.Time, cfg Config, window []time.Time, total int64, start time.Time, running bool) Snapshot {
	if !running || start.IsZero() {
		return Snapshot{Timestamp: now}
	}

	sessionSeconds := now.Sub(start).Seconds()

	// The divisor shrinks to the elapsed session time so the rate is not
	// understated while the session is younger than the window.
	currentAPM := 0.0
	if divisor := min(cfg.WindowSize.Seconds(), sessionSeconds); divisor > 0 {
		currentAPM = round1(float64(len(window)) / divisor * 60)
	}

	avgAPM := 0.0
	if sessionSeconds > 0 {
		avgAPM = round1(float64(total) / sessionSeconds * 60)
	}

	recent := 0
	for i := len(window) - 1; i >= 0; i-- {
		if now.Sub(window[i]) > cfg.APSWindow {
			break
		}
		recent++
	}

	aps := 0.0
	switch {
	case sessionSeconds >= cfg.APSWindow.Seconds():
		aps = round1(float64(recent) / cfg.APSWindow.Seconds())
	case sessionSeconds > 0:
		aps = round1(float64(recent) / sessionSeconds)
	}

	return Snapshot{
		CurrentAPM:   currentAPM,
		AvgAPM:       avgAPM,
		APS:          aps,
		TotalActions: total,
		SessionTime:  int64(sessionSeconds),
		Timestamp:    now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
