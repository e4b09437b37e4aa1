// internal/game/types.go
//
// Core type definitions for the word-ladder game.
// Defines:
//   - Status: playing / won / lost.
//   - Puzzle: the day's fixed start and target words.
//   - Attempt: one accepted word with its turn index.
//   - Completion: the payload delivered once when a session ends.
//   - MoveResult: what SubmitMove reports back to the caller.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/ljp-solutions/word-ladder/internal/ladder"
	"github.com/ljp-solutions/word-ladder/internal/move"
)

// Status is the coarse state of a session.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// ErrInvalidPuzzle is wrapped by Puzzle.Validate failures.
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// Puzzle is immutable once fetched for a given day.
type Puzzle struct {
	Date       string `json:"date"`   // YYYY-MM-DD, UTC
	Number     int    `json:"number"` // game number shown in share text
	StartWord  string `json:"startWord"`
	TargetWord string `json:"targetWord"`
	Par        int    `json:"par,omitempty"` // shortest solution, 0 when unknown
}

// Normalized returns a copy with canonical upper-case words.
func (p Puzzle) Normalized() Puzzle {
	p.StartWord = ladder.Normalize(p.StartWord)
	p.TargetWord = ladder.Normalize(p.TargetWord)
	return p
}

// Validate checks the puzzle is playable on its date.
func (p Puzzle) Validate() error {
	if err := p.CheckWords(); err != nil {
		return err
	}
	if _, err := time.Parse(time.DateOnly, p.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidPuzzle, p.Date)
	}
	return nil
}

// CheckWords validates the start/target pair without looking at the date.
func (p Puzzle) CheckWords() error {
	s, t := ladder.Normalize(p.StartWord), ladder.Normalize(p.TargetWord)
	switch {
	case !ladder.IsLetters(s):
		return fmt.Errorf("%w: start word %q", ErrInvalidPuzzle, p.StartWord)
	case !ladder.IsLetters(t):
		return fmt.Errorf("%w: target word %q", ErrInvalidPuzzle, p.TargetWord)
	case len([]rune(s)) != len([]rune(t)):
		return fmt.Errorf("%w: %s and %s differ in length", ErrInvalidPuzzle, s, t)
	case s == t:
		return fmt.Errorf("%w: start equals target", ErrInvalidPuzzle)
	}
	return nil
}

// Attempt is one accepted move. TurnIndex is 0-based.
type Attempt struct {
	Word      string `json:"word"`
	TurnIndex int    `json:"turnIndex"`
}

// Completion is emitted exactly once when a session reaches a terminal state.
type Completion struct {
	Won      bool
	Turns    int
	Puzzle   Puzzle
	Attempts []Attempt
}

// MoveResult reports the effect of one SubmitMove call.
type MoveResult struct {
	Accepted   bool         `json:"accepted"`
	Verdict    move.Verdict `json:"verdict"`
	Status     Status       `json:"status"`
	TurnsTaken int          `json:"turnsTaken"`
	Completed  bool         `json:"completed"` // this call ended the game
}

// Snapshot is a read-only copy of session state.
type Snapshot struct {
	ID         string    `json:"id"`
	Puzzle     Puzzle    `json:"puzzle"`
	Attempts   []Attempt `json:"attempts"`
	Status     Status    `json:"status"`
	TurnsTaken int       `json:"turnsTaken"`
	MaxTurns   int       `json:"maxTurns,omitempty"`
}

// CurrentWord is the word the next move must start from.
func (s Snapshot) CurrentWord() string {
	if n := len(s.Attempts); n > 0 {
		return s.Attempts[n-1].Word
	}
	return s.Puzzle.StartWord
}
