package pgn

import "github.com/arbiterhq/arbiter/pkg/logger"

// Option customizes a Reader.
type Option func(*Reader)

// WithLogger overrides the package-named logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Reader) {
		r.log = log
	}
}
