// internal/stats/aggregator.go
//
// Statistics aggregation for completed games.
// Responsibilities:
//   - Load stats from the local store (defaults on absence or corruption).
//   - Apply one outcome: totals, streaks, histogram.
//   - Persist the new snapshot, overwriting the previous one.
//
// Notes:
//   - Read-modify-write is serialized per Aggregator. Two aggregators over the
//     same store in different processes can still race; one writer is assumed.
//   - A failed save is returned, but the updated stats are returned too.

package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ljp-solutions/word-ladder/internal/store"
)

// Aggregator records outcomes into a store.KV.
type Aggregator struct {
	mu  sync.Mutex
	kv  store.KV
	key string
}

// NewAggregator stores stats under StorageKey in kv.
func NewAggregator(kv store.KV) *Aggregator {
	return &Aggregator{kv: kv, key: StorageKey}
}

// Load returns the stored stats, or defaults.
func (a *Aggregator) Load(ctx context.Context) GameStats {
	raw, err := a.kv.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", a.key).Msg("stats load failed, using defaults")
		}
		return Defaults()
	}
	s, ok := Decode(raw)
	if !ok {
		log.Warn().Str("key", a.key).Msg("stored stats unreadable, using defaults")
	}
	return s
}

// RecordOutcome applies one finished game and persists the result.
func (a *Aggregator) RecordOutcome(ctx context.Context, won bool, turns int) (GameStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Apply(a.Load(ctx), won, turns)

	raw, err := Encode(s)
	if err != nil {
		return s, fmt.Errorf("encode stats: %w", err)
	}
	if err := a.kv.Put(ctx, a.key, raw); err != nil {
		return s, fmt.Errorf("save stats: %w", err)
	}
	log.Debug().Bool("won", won).Int("turns", turns).Int("streak", s.CurrentStreak).Msg("stats recorded")
	return s, nil
}

// Apply returns prev updated with one outcome. prev is not modified.
func Apply(prev GameStats, won bool, turns int) GameStats {
	s := prev.Clone()
	if s.TurnDistribution == nil {
		s.TurnDistribution = Defaults().TurnDistribution
	}
	s.TotalGames++
	if !won {
		s.CurrentStreak = 0
		return s
	}
	s.TotalWins++
	s.CurrentStreak++
	s.BestStreak = max(s.BestStreak, s.CurrentStreak)
	s.TurnDistribution[Bucket(turns)]++
	return s
}
