// Package export writes the latest metrics snapshot to disk on its own
// cadence: a full JSON document plus a single configurable text line meant
// for streaming overlays. Writing happens on a background goroutine so the
// reporting loop is never blocked on file I/O.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eraceo/apmlive/internal/errors"
	"github.com/eraceo/apmlive/internal/logger"
	"github.com/eraceo/apmlive/internal/tracker"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	textFileName = "apm_data.txt"
	jsonFileName = "apm_data.json"
)

// Field names accepted in Config.Fields, matching the JSON document keys.
const (
	FieldTimestamp    = "timestamp"
	FieldAPM          = "apm"
	FieldAvgAPM       = "avg_apm"
	FieldAPS          = "actions_per_second"
	FieldTotalActions = "total_actions"
	FieldSessionTime  = "session_time"
)

type Config struct {
	Dir      string
	Interval time.Duration
	Fields   []string
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Dir == "" {
		return errFactory.New(ErrInvalidDir)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(ErrInvalidConfig, c.Interval)
	}
	for _, field := range c.Fields {
		if !validField(field) {
			return errFactory.WithData(ErrInvalidConfig, field)
		}
	}

	return nil
}

func validField(name string) bool {
	switch name {
	case FieldTimestamp, FieldAPM, FieldAvgAPM, FieldAPS, FieldTotalActions, FieldSessionTime:
		return true
	default:
		return false
	}
}

// Exporter keeps only the most recent snapshot; a stale write is
// preferable to backpressure on the tracker.
type Exporter struct {
	cfg    Config
	logger logger.Logger
	fields map[string]bool

	mu     sync.Mutex
	latest *tracker.Snapshot

	shutdownChan chan struct{}
	doneChan     chan struct{}
}

func New(cfg Config, log logger.Logger) (*Exporter, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Dir, defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrDirInit, err)
	}

	fields := make(map[string]bool, len(cfg.Fields))
	for _, field := range cfg.Fields {
		fields[field] = true
	}

	e := &Exporter{
		cfg:          cfg,
		logger:       log,
		fields:       fields,
		shutdownChan: make(chan struct{}),
		doneChan:     make(chan struct{}),
	}

	go e.writer()

	log.Info().
		Str("dir", cfg.Dir).
		Dur("interval", cfg.Interval).
		Msg("Exporter initialized")

	return e, nil
}

// Notify stores the snapshot for the next write. Safe to call from the
// reporting loop; never blocks on I/O.
func (e *Exporter) Notify(snapshot tracker.Snapshot) {
	e.mu.Lock()
	e.latest = &snapshot
	e.mu.Unlock()
}

// Close stops the writer after a final flush.
func (e *Exporter) Close() error {
	close(e.shutdownChan)
	<-e.doneChan

	return nil
}

func (e *Exporter) writer() {
	defer close(e.doneChan)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.writeLatest()
		case <-e.shutdownChan:
			e.writeLatest()
			return
		}
	}
}

func (e *Exporter) writeLatest() {
	e.mu.Lock()
	snapshot := e.latest
	e.latest = nil
	e.mu.Unlock()

	if snapshot == nil {
		return
	}

	if err := e.writeFiles(snapshot); err != nil {
		e.logger.Error().Err(err).Msg("Export write failed")
	}
}

func (e *Exporter) writeFiles(snapshot *tracker.Snapshot) error {
	errFactory := errors.New()

	doc := struct {
		tracker.Snapshot
		Timestamp int64 `json:"timestamp"`
	}{
		Snapshot:  *snapshot,
		Timestamp: snapshot.Timestamp.Unix(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	if err := os.WriteFile(filepath.Join(e.cfg.Dir, jsonFileName), data, defaultFilePerm); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	line := e.textLine(snapshot)
	if err := os.WriteFile(filepath.Join(e.cfg.Dir, textFileName), []byte(line), defaultFilePerm); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	return nil
}

// textLine renders the configured fields in a fixed order.
func (e *Exporter) textLine(snapshot *tracker.Snapshot) string {
	parts := make([]string, 0, len(e.fields))

	if e.fields[FieldTimestamp] {
		parts = append(parts, fmt.Sprintf("TS: %d", snapshot.Timestamp.Unix()))
	}
	if e.fields[FieldAPM] {
		parts = append(parts, fmt.Sprintf("APM: %d", int(snapshot.CurrentAPM)))
	}
	if e.fields[FieldAvgAPM] {
		parts = append(parts, fmt.Sprintf("AVG: %d", int(snapshot.AvgAPM)))
	}
	if e.fields[FieldAPS] {
		parts = append(parts, fmt.Sprintf("APS: %.1f", snapshot.APS))
	}
	if e.fields[FieldTotalActions] {
		parts = append(parts, fmt.Sprintf("Total: %d", snapshot.TotalActions))
	}
	if e.fields[FieldSessionTime] {
		parts = append(parts, "Time: "+formatSessionTime(snapshot.SessionTime))
	}

	return strings.Join(parts, " | ")
}

func formatSessionTime(totalSeconds int64) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
