package engine

import "github.com/arbiterhq/arbiter/pkg/logger"

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger overrides the package-named logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}
