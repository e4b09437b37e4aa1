package words

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/ladder"
)

// Oracle adapts a Dictionary into the word-legality predicate used by move
// validation.
type Oracle struct {
	dict Dictionary
}

// NewOracle wraps dict.
func NewOracle(dict Dictionary) *Oracle {
	return &Oracle{dict: dict}
}

// Lookup normalizes word and queries the dictionary, passing lookup errors
// through to the caller.
func (o *Oracle) Lookup(ctx context.Context, word string) (bool, error) {
	w := ladder.Normalize(word)
	if w == "" {
		return false, nil
	}
	return o.dict.Contains(ctx, w)
}

// IsValidWord reports whether word is a recognised word. Lookup failures are
// logged and reported as "not a word".
func (o *Oracle) IsValidWord(ctx context.Context, word string) bool {
	ok, err := o.Lookup(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", ladder.Normalize(word)).Msg("dictionary lookup failed")
		return false
	}
	return ok
}
