package config

import "errors"

var (
	// ErrFileNotFound indicates an explicitly requested config file is missing.
	ErrFileNotFound = errors.New("config file not found")

	// ErrFileRead indicates a config file exists but cannot be read.
	ErrFileRead = errors.New("cannot read config file")

	// ErrInvalid indicates a config file that does not parse, or a merged
	// config that fails validation.
	ErrInvalid = errors.New("invalid config")

	errStoreDirEmpty   = errors.New("store_dir cannot be empty")
	errCapacityInvalid = errors.New("capacity must be >= 1")
	errLogLevelUnknown = errors.New("unknown log_level")
)
