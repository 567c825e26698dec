package input

import (
	"sync"
	"time"

	"github.com/eraceo/apmlive/internal/errors"
)

const ErrInvalidRate = errors.ErrorCode("input_invalid_rate")

var demoKeys = []string{"a", "s", "d", "f", "j", "k", "l"}

// Synthetic generates a steady stream of pointer and keyboard events at a
// target rate, so the daemon can be exercised end to end without OS hooks.
type Synthetic struct {
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

func NewSynthetic(targetAPM int) (*Synthetic, error) {
	if targetAPM <= 0 {
		return nil, errors.New().WithData(ErrInvalidRate, targetAPM)
	}

	return &Synthetic{
		interval: time.Minute / time.Duration(targetAPM),
	}, nil
}

func (s *Synthetic) Start(rec Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(rec, s.stopCh, s.doneCh)
}

func (s *Synthetic) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Synthetic) run(rec Recorder, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			emit(rec, n)
			n++
		}
	}
}

// emit alternates pointer clicks with full key press/release cycles.
func emit(rec Recorder, n int) {
	if n%2 == 0 {
		rec.RecordPointerAction()
		return
	}

	key := demoKeys[(n/2)%len(demoKeys)]
	rec.RecordKeyDown(key)
	rec.RecordKeyUp(key)
}
