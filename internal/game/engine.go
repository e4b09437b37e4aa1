// internal/game/engine.go
//
// Turn progression for a single daily word-ladder session.
// Responsibilities:
//   - Validate and apply moves through the injected validator.
//   - Record accepted attempts with their turn index.
//   - Track state transitions: playing → won/lost.
//   - Deliver the completion event exactly once.
//
// Notes:
//   - Rejected moves never touch session state.
//   - Only one SubmitMove may be in flight; overlapping calls are refused.
//   - A turn cap is optional; the default is uncapped.
package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/ladder"
	"github.com/ljp-solutions/word-ladder/internal/move"
)

var (
	ErrGameOver       = errors.New("game finished")
	ErrMoveInProgress = errors.New("a move is already being checked")
	ErrEmptyWord      = errors.New("empty word")
)

// Validator is satisfied by *move.Validator.
type Validator interface {
	Validate(ctx context.Context, prev, candidate string) move.Verdict
}

// CompletionFunc receives the completion event.
type CompletionFunc func(ctx context.Context, c Completion)

// Option configures a Session.
type Option func(*Session)

// WithMaxTurns ends the game as lost once n moves were accepted without
// reaching the target. n <= 0 means uncapped.
func WithMaxTurns(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// WithCompletionHandler registers fn for the completion event.
func WithCompletionHandler(fn CompletionFunc) Option {
	return func(s *Session) { s.onComplete = fn }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session holds the state of one player's game for one puzzle.
type Session struct {
	id         string
	validator  Validator
	maxTurns   int
	onComplete CompletionFunc

	inFlight atomic.Bool

	mu         sync.Mutex // guards the fields below
	puzzle     Puzzle
	attempts   []Attempt
	status     Status
	turnsTaken int
}

// NewSession starts a session for puzzle. The puzzle must be valid.
func NewSession(p Puzzle, v Validator, opts ...Option) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:        uuid.NewString(),
		validator: v,
		puzzle:    p.Normalized(),
		attempts:  []Attempt{},
		status:    StatusPlaying,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SubmitMove validates candidate against the current word and, if legal,
// records it and checks for the end of the game.
//
// Outcomes:
//   - overlapping call      → ErrMoveInProgress, nothing validated
//   - game already over     → ErrGameOver, state untouched
//   - rejected move         → Accepted=false with the verdict reason
//   - accepted move         → attempt appended, turn counted, win/loss checked
func (s *Session) SubmitMove(ctx context.Context, candidate string) (MoveResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return s.result(move.Verdict{}, false), ErrMoveInProgress
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	if s.status.Terminal() {
		res := s.resultLocked(move.Verdict{}, false)
		s.mu.Unlock()
		return res, ErrGameOver
	}
	prev := s.currentWordLocked()
	s.mu.Unlock()

	word := ladder.Normalize(candidate)
	if word == "" {
		return s.result(move.Verdict{}, false), ErrEmptyWord
	}

	verdict := s.validator.Validate(ctx, prev, word)
	if !verdict.Valid {
		log.Debug().Str("session", s.id).Str("from", prev).Str("to", word).
			Str("reason", string(verdict.Reason)).Msg("move rejected")
		res := s.result(verdict, false)
		return res, nil
	}

	s.mu.Lock()
	s.attempts = append(s.attempts, Attempt{Word: word, TurnIndex: len(s.attempts)})
	s.turnsTaken++

	var done *Completion
	switch {
	case word == s.puzzle.TargetWord:
		s.status = StatusWon
		done = s.completionLocked(true)
	case s.maxTurns > 0 && s.turnsTaken >= s.maxTurns:
		s.status = StatusLost
		done = s.completionLocked(false)
	}
	res := s.resultLocked(verdict, true)
	res.Completed = done != nil
	s.mu.Unlock()

	log.Debug().Str("session", s.id).Str("word", word).Int("turns", res.TurnsTaken).
		Str("status", string(res.Status)).Msg("move accepted")

	if done != nil && s.onComplete != nil {
		s.onComplete(ctx, *done)
	}
	return res, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Puzzle:     s.puzzle,
		Attempts:   append([]Attempt(nil), s.attempts...),
		Status:     s.status,
		TurnsTaken: s.turnsTaken,
		MaxTurns:   s.maxTurns,
	}
}

// Status reports the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Expired reports whether now falls on a later UTC day than the puzzle.
func (s *Session) Expired(now time.Time) bool {
	return now.UTC().Format(time.DateOnly) > s.puzzle.Date
}

func (s *Session) currentWordLocked() string {
	if n := len(s.attempts); n > 0 {
		return s.attempts[n-1].Word
	}
	return s.puzzle.StartWord
}

func (s *Session) completionLocked(won bool) *Completion {
	return &Completion{
		Won:      won,
		Turns:    s.turnsTaken,
		Puzzle:   s.puzzle,
		Attempts: append([]Attempt(nil), s.attempts...),
	}
}

func (s *Session) result(v move.Verdict, accepted bool) MoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked(v, accepted)
}

func (s *Session) resultLocked(v move.Verdict, accepted bool) MoveResult {
	return MoveResult{
		Accepted:   accepted,
		Verdict:    v,
		Status:     s.status,
		TurnsTaken: s.turnsTaken,
	}
}
