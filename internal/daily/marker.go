// internal/daily/marker.go
//
// The daily play marker: a per-day "already played" record in the local
// store. Absence, corruption or a marker for another date all mean the
// player has not finished today's puzzle.

package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/store"
)

const (
	MarkerKey     = "swapple_lastPlayed"
	FirstVisitKey = "swapple_firstVisit"
)

// PlayMarker records the outcome of one finished day.
type PlayMarker struct {
	Date   string `json:"date"`
	Won    bool   `json:"won"`
	Turns  int    `json:"turns"`
	Streak int    `json:"streak"`
	Word   string `json:"word,omitempty"` // target word, for the summary screen
}

// Tracker reads and writes the play marker.
type Tracker struct {
	kv store.KV
}

func NewTracker(kv store.KV) *Tracker { return &Tracker{kv: kv} }

// Completed returns the marker if it belongs to date.
func (t *Tracker) Completed(ctx context.Context, date string) (PlayMarker, bool) {
	raw, err := t.kv.Get(ctx, MarkerKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("read play marker")
		}
		return PlayMarker{}, false
	}
	var m PlayMarker
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Warn().Err(err).Msg("play marker unreadable, ignoring")
		return PlayMarker{}, false
	}
	if m.Date != date {
		return PlayMarker{}, false
	}
	return m, true
}

// Record overwrites the marker.
func (t *Tracker) Record(ctx context.Context, m PlayMarker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := t.kv.Put(ctx, MarkerKey, raw); err != nil {
		return fmt.Errorf("save play marker: %w", err)
	}
	return nil
}

// FirstVisit reports whether the player has never been marked as visited.
func (t *Tracker) FirstVisit(ctx context.Context) bool {
	_, err := t.kv.Get(ctx, FirstVisitKey)
	return errors.Is(err, store.ErrNotFound)
}

// MarkVisited records that the how-to-play intro was shown.
func (t *Tracker) MarkVisited(ctx context.Context) error {
	return t.kv.Put(ctx, FirstVisitKey, []byte("visited"))
}
