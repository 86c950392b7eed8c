package repository

import "github.com/arbiterhq/arbiter/pkg/logger"

// Option customizes an EvalCache.
type Option func(*EvalCache)

// WithLogger overrides the package-named logger.
func WithLogger(log logger.Logger) Option {
	return func(c *EvalCache) {
		c.log = log
	}
}
