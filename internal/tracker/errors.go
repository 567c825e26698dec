package tracker

import "github.com/eraceo/apmlive/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidWindow   = errors.ErrorCode("tracker_invalid_window")
	ErrInvalidInterval = errors.ErrorCode("tracker_invalid_interval")

	// Operation Errors
	ErrStopTimeout = errors.ErrorCode("tracker_stop_timeout")
)
