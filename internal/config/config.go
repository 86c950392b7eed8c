// Package config defines analyzer configuration and its loading hooks.
//
// Conventions follow the rest of the repo: defaults come from New, a YAML
// file and ARBITER_ environment variables layer on top, and invalid
// combinations are rejected at load time rather than deep in the pipeline.
package config

import "time"

// TimeControl describes one named tournament time control as consumed by the
// clock model.
type TimeControl struct {
	// BaseTime is the initial clock budget in seconds.
	BaseTime int `koanf:"base_time"`

	// IncrementType is one of "none", "fischer" or "delay_bonus".
	IncrementType string `koanf:"increment_type"`

	// IncrementStartMove is the 1-indexed per-player move from which the
	// increment (fischer) or the one-time bonus (delay_bonus) applies.
	IncrementStartMove int `koanf:"increment_start_move"`

	// IncrementSeconds is the per-move increment in seconds.
	IncrementSeconds int `koanf:"increment_seconds"`

	// BonusTime is the one-time grant in seconds for delay_bonus controls.
	BonusTime int `koanf:"bonus_time"`

	// HasIncrementBeforeBonus marks delay_bonus controls whose increment is
	// active from move one rather than only after the bonus move.
	HasIncrementBeforeBonus bool `koanf:"has_increment_before_bonus"`
}

// Engine holds the external UCI engine settings.
type Engine struct {
	// Path is the engine binary, e.g. "stockfish".
	Path string `koanf:"path"`

	// Depth is the search depth per evaluation.
	Depth int `koanf:"depth"`

	// Threads and HashMB are passed to the engine via setoption.
	Threads int `koanf:"threads"`
	HashMB  int `koanf:"hash_mb"`

	// MoveTimeout bounds a single evaluation; expiry aborts the batch.
	MoveTimeout time.Duration `koanf:"move_timeout"`
}

// Thresholds groups the derived-metric tuning knobs.
type Thresholds struct {
	// SkipOpeningMoves is the per-player opening prefix excluded from
	// engine analysis.
	SkipOpeningMoves int `koanf:"skip_opening_moves"`

	// ComebackCP and BlownLeadCP are the extremum magnitudes (centipawns)
	// that qualify a comeback or blown lead.
	ComebackCP  int `koanf:"comeback_cp"`
	BlownLeadCP int `koanf:"blown_lead_cp"`

	// AdvantageCP is the dominance "clearly ahead" boundary.
	AdvantageCP int `koanf:"advantage_cp"`

	// PressureCP is the (player-perspective) eval at or below which a move
	// counts as played under pressure; CollapseCPL is the loss that turns a
	// pressured move into a collapse.
	PressureCP  int `koanf:"pressure_cp"`
	CollapseCPL int `koanf:"collapse_cpl"`

	// OpeningMoves bounds opening time-usage aggregation.
	OpeningMoves int `koanf:"opening_moves"`

	// LongThinkSeconds and TimePressureSeconds drive the clock statistics.
	LongThinkSeconds    int `koanf:"long_think_seconds"`
	TimePressureSeconds int `koanf:"time_pressure_seconds"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CachePath is the evaluation cache JSON file.
	CachePath string `koanf:"cache_path"`

	// ReportsDir receives rendered reports and JSON exports.
	ReportsDir string `koanf:"reports_dir"`

	// Workers sets parallel analysis workers; 1 keeps the pipeline
	// sequential with a single engine process.
	Workers int `koanf:"workers"`

	// MetricsAddr, when non-empty, serves Prometheus metrics during a batch.
	MetricsAddr string `koanf:"metrics_addr"`

	Engine     Engine     `koanf:"engine"`
	Thresholds Thresholds `koanf:"thresholds"`

	// ActiveTimeControl selects an entry of TimeControls.
	ActiveTimeControl string                 `koanf:"active_time_control"`
	TimeControls      map[string]TimeControl `koanf:"time_controls"`
}

// New returns a Config with defaults suitable for classical tournaments.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		CachePath:  "data/cache/evaluations.json",
		ReportsDir: "outputs/reports",
		Workers:    1,
		Engine: Engine{
			Path:        "stockfish",
			Depth:       20,
			Threads:     4,
			HashMB:      1024,
			MoveTimeout: 2 * time.Minute,
		},
		Thresholds: Thresholds{
			SkipOpeningMoves:    8,
			ComebackCP:          200,
			BlownLeadCP:         200,
			AdvantageCP:         50,
			PressureCP:          -150,
			CollapseCPL:         200,
			OpeningMoves:        10,
			LongThinkSeconds:    1200,
			TimePressureSeconds: 600,
		},
		ActiveTimeControl: "classical",
		TimeControls: map[string]TimeControl{
			"classical": {
				BaseTime:           7200,
				IncrementType:      "delay_bonus",
				IncrementStartMove: 40,
				IncrementSeconds:   30,
				BonusTime:          1800,
			},
			"rapid": {
				BaseTime:           900,
				IncrementType:      "fischer",
				IncrementStartMove: 1,
				IncrementSeconds:   10,
			},
		},
	}
}

// ActiveControl resolves the selected time control.
func (c *Config) ActiveControl() (TimeControl, error) {
	tc, ok := c.TimeControls[c.ActiveTimeControl]
	if !ok {
		return TimeControl{}, ErrUnknownTimeControl
	}
	return tc, nil
}
