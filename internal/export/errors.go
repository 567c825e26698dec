package export

import "github.com/eraceo/apmlive/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("export_invalid_config")
	ErrInvalidDir    = errors.ErrorCode("export_invalid_dir")

	// Storage Errors
	ErrDirInit     = errors.ErrorCode("export_dir_init_failed")
	ErrWriteFailed = errors.ErrorCode("export_write_failed")
)
