// internal/choice/choice.go
//
// "Right Today": pick left or right once per day. The winning side is fixed
// per date and salt so every player faces the same coin.

package choice

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ljp-solutions/word-ladder/internal/daily"
)

type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

var (
	ErrAlreadyChosen = errors.New("already chosen today")
	ErrBadSide       = errors.New("side must be left or right")
)

// ParseSide accepts "left" or "right" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadSide, s)
}

// Round is one player's choice for one day.
type Round struct {
	Date string

	mu     sync.Mutex
	winner Side
	chosen Side
}

// NewRound prepares the round for date (YYYY-MM-DD).
func NewRound(date time.Time, salt string) *Round {
	w := Left
	if daily.WordIndex(date, "choice:"+salt, 2) == 1 {
		w = Right
	}
	return &Round{Date: daily.DateKey(date), winner: w}
}

// Choose locks in side and reports whether it was the winning one.
func (r *Round) Choose(side Side) (bool, error) {
	if side != Left && side != Right {
		return false, ErrBadSide
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.chosen != "" {
		return false, ErrAlreadyChosen
	}
	r.chosen = side
	return side == r.winner, nil
}

// Chosen returns the locked-in side, or "".
func (r *Round) Chosen() Side {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chosen
}

// Winner is the day's winning side. Only reveal it after Choose.
func (r *Round) Winner() Side { return r.winner }
