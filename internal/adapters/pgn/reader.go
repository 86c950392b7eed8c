// Package pgn streams tournament games out of PGN files, including
// zstd- and bzip2-compressed archives, and derives per-move time spent
// from embedded clock comments.
package pgn

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/notnil/chess"

	"github.com/arbiterhq/arbiter/internal/domain/clock"
	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/pkg/logger"
)

// Reader streams games from one PGN source. Compression is picked by file
// extension: .zst and .bz2 are decompressed on the fly, anything else is
// read as plain text.
type Reader struct {
	file    *os.File
	closers []func() error
	scanner *chess.Scanner
	control clock.TimeControl
	log     logger.Logger
}

// Open prepares a reader over the given file. The time control drives the
// per-move time derivation for every game in the file.
func Open(path string, control clock.TimeControl, opts ...Option) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pgn: %w", err)
	}

	r := &Reader{
		file:    file,
		control: control,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("pgn")
	}

	var src io.Reader = file
	switch {
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		r.closers = append(r.closers, func() error { dec.Close(); return nil })
		src = dec
	case strings.HasSuffix(path, ".bz2"):
		dec, err := bzip2.NewReader(file, nil)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("opening bzip2 stream: %w", err)
		}
		r.closers = append(r.closers, dec.Close)
		src = dec
	}

	r.scanner = chess.NewScanner(src)
	return r, nil
}

// Next returns the next game in the file, or io.EOF when the file is
// exhausted.
func (r *Reader) Next(ctx context.Context) (*model.Game, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("scanning pgn: %w", err)
		}
		return nil, io.EOF
	}
	g := r.convert(ctx, r.scanner.Next())
	return g, nil
}

// convert flattens a parsed game into the model record, running the clock
// tracker over whatever clock comments the PGN carries.
func (r *Reader) convert(ctx context.Context, game *chess.Game) *model.Game {
	out := &model.Game{Metadata: metadata(game)}

	moves := game.Moves()
	positions := game.Positions()
	comments := game.Comments()
	tracker := clock.NewTracker(r.control)

	san := chess.AlgebraicNotation{}
	clocked := 0

	for i, mv := range moves {
		white := i%2 == 0
		side := score.Black
		if white {
			side = score.White
		}

		m := model.Move{
			Number:        i/2 + 1,
			White:         white,
			PlayerMoveNum: i/2 + 1,
			SAN:           san.Encode(positions[i], mv),
			UCI:           mv.String(),
			FENBefore:     positions[i].String(),
			FENAfter:      positions[i+1].String(),
		}

		if i < len(comments) {
			if remaining, ok := ParseClock(strings.Join(comments[i], " ")); ok {
				spent, _ := tracker.Record(side, remaining)
				m.ClockRemaining = &remaining
				m.TimeSpent = &spent
				clocked++
			}
		}

		out.Moves = append(out.Moves, m)
	}

	if clocked > 0 && clocked < len(moves) {
		r.log.Warn(ctx, "partial clock data",
			logger.String("game", out.ID()),
			logger.Int("moves", len(moves)),
			logger.Int("clocked", clocked))
	}
	return out
}

func metadata(game *chess.Game) model.Metadata {
	return model.Metadata{
		Event:    tag(game, "Event"),
		Site:     tag(game, "Site"),
		Date:     tag(game, "Date"),
		Round:    tag(game, "Round"),
		White:    tag(game, "White"),
		Black:    tag(game, "Black"),
		Result:   tag(game, "Result"),
		WhiteElo: intTag(game, "WhiteElo"),
		BlackElo: intTag(game, "BlackElo"),
		ECO:      tag(game, "ECO"),
	}
}

func tag(game *chess.Game, key string) string {
	if tp := game.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return ""
}

func intTag(game *chess.Game, key string) int {
	n, _ := strconv.Atoi(tag(game, key))
	return n
}

// Close releases the underlying file and any decompressor.
func (r *Reader) Close() error {
	for _, c := range r.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return r.file.Close()
}
