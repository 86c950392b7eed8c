package engine

import "errors"

var (
	// ErrEngineUnavailable means the engine process could not be started or
	// has died; no further evaluations can be served by this instance.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrEvaluationTimeout means a single search exceeded the configured
	// move timeout. The engine process is killed; a batch run treats this
	// as fatal rather than silently producing shallower analysis.
	ErrEvaluationTimeout = errors.New("evaluation timed out")

	// ErrInvalidPosition means the FEN could not be parsed.
	ErrInvalidPosition = errors.New("invalid position")
)
