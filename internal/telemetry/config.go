package telemetry

import "github.com/eraceo/apmlive/internal/errors"

const (
	defaultDirPerm      = 0o755
	defaultBatchSize    = 32
	defaultBatchTimeout = 5 // seconds
)

type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout int
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if telemetry is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.Enabled && (c.BatchSize <= 0 || c.BatchTimeout <= 0) {
		return errFactory.New(ErrInvalidConfig)
	}

	return nil
}
