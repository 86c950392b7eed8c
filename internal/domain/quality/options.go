package quality

import "github.com/arbiterhq/arbiter/pkg/logger"

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithLogger overrides the package-named logger.
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}
