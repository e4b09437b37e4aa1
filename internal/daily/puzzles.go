// internal/daily/puzzles.go
//
// Puzzle sources.
// Responsibilities:
//   - PuzzleSource: resolve the puzzle for a UTC date key.
//   - Rotation: deterministic pick from a fixed list of start/target pairs.
//   - Chain: first source that has a puzzle wins.
//
// Sources return ErrNoPuzzle when the date has no game; callers map it to
// the "no game available today" state.

package daily

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/assets"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

var ErrNoPuzzle = errors.New("no puzzle for date")

// PuzzleSource resolves the puzzle for a date key (YYYY-MM-DD).
type PuzzleSource interface {
	Puzzle(ctx context.Context, date string) (game.Puzzle, error)
}

// Pair is a start/target word pair.
type Pair struct {
	Start  string
	Target string
}

// ParsePairs reads "START TARGET" lines.
func ParsePairs(lines []string) ([]Pair, error) {
	out := make([]Pair, 0, len(lines))
	for i, line := range lines {
		f := strings.Fields(line)
		if len(f) != 2 {
			return nil, fmt.Errorf("puzzle line %d: want 2 words, got %d", i+1, len(f))
		}
		out = append(out, Pair{Start: ladder.Normalize(f[0]), Target: ladder.Normalize(f[1])})
	}
	return out, nil
}

// Rotation picks one pair per day with WordIndex.
type Rotation struct {
	pairs []Pair
	salt  string
	known func(string) bool
	par   map[Pair]int
}

// NewRotation builds a rotation over pairs. When known is non-nil, pairs
// with no solution through known words are dropped and Par is filled in.
func NewRotation(pairs []Pair, salt string, known func(string) bool) *Rotation {
	r := &Rotation{salt: salt, known: known, par: map[Pair]int{}}
	for _, p := range pairs {
		if err := (game.Puzzle{StartWord: p.Start, TargetWord: p.Target}).CheckWords(); err != nil {
			log.Warn().Err(err).Msg("skipping puzzle pair")
			continue
		}
		if known != nil {
			path := ladder.ShortestPath(p.Start, p.Target, known)
			if path == nil {
				log.Warn().Str("start", p.Start).Str("target", p.Target).Msg("skipping unsolvable puzzle pair")
				continue
			}
			r.par[p] = len(path) - 1
		}
		r.pairs = append(r.pairs, p)
	}
	return r
}

// EmbeddedRotation uses the puzzle list compiled into the binary.
func EmbeddedRotation(salt string, known func(string) bool) (*Rotation, error) {
	lines, err := assets.PuzzleLines()
	if err != nil {
		return nil, fmt.Errorf("read embedded puzzles: %w", err)
	}
	pairs, err := ParsePairs(lines)
	if err != nil {
		return nil, err
	}
	return NewRotation(pairs, salt, known), nil
}

// Len is the number of playable pairs.
func (r *Rotation) Len() int { return len(r.pairs) }

func (r *Rotation) Puzzle(_ context.Context, date string) (game.Puzzle, error) {
	if len(r.pairs) == 0 {
		return game.Puzzle{}, ErrNoPuzzle
	}
	day, err := ParseDateKey(date)
	if err != nil {
		return game.Puzzle{}, err
	}
	p := r.pairs[WordIndex(day, r.salt, len(r.pairs))]
	return game.Puzzle{
		Date:       date,
		Number:     GameNumber(day),
		StartWord:  p.Start,
		TargetWord: p.Target,
		Par:        r.par[p],
	}, nil
}

// Chain tries each source in order. A source failing with anything other
// than ErrNoPuzzle is logged and skipped; that error is returned if no
// later source has a puzzle.
type Chain []PuzzleSource

func (c Chain) Puzzle(ctx context.Context, date string) (game.Puzzle, error) {
	var firstErr error
	for _, src := range c {
		p, err := src.Puzzle(ctx, date)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrNoPuzzle) {
			continue
		}
		log.Warn().Err(err).Str("date", date).Msg("puzzle source failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return game.Puzzle{}, firstErr
	}
	return game.Puzzle{}, ErrNoPuzzle
}
