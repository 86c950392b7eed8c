package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrUnknownTimeControl = errors.New("unknown time control")
	ErrInvalidEngine      = errors.New("invalid engine configuration")
)
