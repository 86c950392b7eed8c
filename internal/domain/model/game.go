// Package model contains the game records passed between the PGN adapter
// and the analysis layers.
package model

// Metadata holds the identifying headers of a game.
type Metadata struct {
	Event    string
	Site     string
	Date     string
	Round    string
	White    string
	Black    string
	Result   string
	WhiteElo int
	BlackElo int
	ECO      string
}

// Move is a single half-move with its positions and, when available, clock
// data. FEN strings and move identifiers are opaque to the analysis layers.
type Move struct {
	// Number is the full-move number shared by both players.
	Number int

	// White reports which side made the move.
	White bool

	// PlayerMoveNum counts this player's own moves, 1-indexed.
	PlayerMoveNum int

	SAN string
	UCI string

	FENBefore string
	FENAfter  string

	// ClockRemaining is the raw reading after the move, in seconds.
	// Nil when the PGN carried no clock comment for this move.
	ClockRemaining *int

	// TimeSpent is the derived seconds spent on this move, nil when
	// clock data was missing.
	TimeSpent *int
}

// Game is a fully parsed game.
type Game struct {
	Metadata Metadata
	Moves    []Move
}

// ID renders the identifier used to correlate a game across analyses.
func (g *Game) ID() string {
	return g.Metadata.White + " vs " + g.Metadata.Black + " R" + g.Metadata.Round
}

// Game results as they appear in PGN headers.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultUnknown   = "*"
)
