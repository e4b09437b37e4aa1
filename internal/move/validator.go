// internal/move/validator.go
//
// Move validation: combines the structural transformation rules with the
// dictionary oracle into a single verdict.
//
// Order matters: the structural check is local and rejects most bad input,
// so the oracle is only consulted for structurally legal moves.
package move

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

// Reason explains why a move was rejected.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonTooManyChanges    Reason = "too_many_changes"
	ReasonNotAWord          Reason = "not_a_word"
	ReasonLookupUnavailable Reason = "lookup_unavailable"
)

// Message is the player-facing text for a rejection reason.
func (r Reason) Message() string {
	switch r {
	case ReasonTooManyChanges:
		return "Change one letter or swap two letters"
	case ReasonNotAWord:
		return "Not a valid word"
	case ReasonLookupUnavailable:
		return "Couldn't check that word, try again"
	default:
		return ""
	}
}

// Verdict is the outcome of validating one move.
type Verdict struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
}

// WordChecker is the oracle the validator consults. words.Oracle satisfies it.
// IsValidWord is the fail-closed predicate; Lookup surfaces lookup errors
// for strict validation.
type WordChecker interface {
	IsValidWord(ctx context.Context, word string) bool
	Lookup(ctx context.Context, word string) (bool, error)
}

// Validator decides whether a candidate word is a legal next step.
type Validator struct {
	oracle WordChecker
	strict bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrictLookup reports oracle failures as ReasonLookupUnavailable
// instead of treating them as unknown words.
func WithStrictLookup() Option {
	return func(v *Validator) { v.strict = true }
}

// NewValidator builds a Validator over oracle.
func NewValidator(oracle WordChecker, opts ...Option) *Validator {
	v := &Validator{oracle: oracle}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks candidate against prev.
func (v *Validator) Validate(ctx context.Context, prev, candidate string) Verdict {
	if !ladder.IsOneLetterChange(prev, candidate) && !ladder.IsTwoLetterSwap(prev, candidate) {
		return Verdict{Reason: ReasonTooManyChanges}
	}

	if !v.strict {
		if !v.oracle.IsValidWord(ctx, candidate) {
			return Verdict{Reason: ReasonNotAWord}
		}
		return Verdict{Valid: true}
	}

	ok, err := v.oracle.Lookup(ctx, candidate)
	if err != nil {
		log.Warn().Err(err).Str("word", ladder.Normalize(candidate)).Msg("word lookup failed")
		return Verdict{Reason: ReasonLookupUnavailable}
	}
	if !ok {
		return Verdict{Reason: ReasonNotAWord}
	}
	return Verdict{Valid: true}
}
