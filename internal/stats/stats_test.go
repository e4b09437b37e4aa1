package stats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ljp-solutions/word-ladder/internal/stats"
	"github.com/ljp-solutions/word-ladder/internal/store"
)

func TestDefaults(t *testing.T) {
	d := stats.Defaults()
	assert.Zero(t, d.TotalGames)
	assert.Equal(t, map[string]int{"3": 0, "4": 0, "5": 0, "6": 0, "7": 0, "8+": 0}, d.TurnDistribution)
}

func TestBucket(t *testing.T) {
	assert.Equal(t, "2", stats.Bucket(2))
	assert.Equal(t, "7", stats.Bucket(7))
	assert.Equal(t, "8+", stats.Bucket(8))
	assert.Equal(t, "8+", stats.Bucket(50))
	assert.Equal(t, "1", stats.Bucket(0))
	assert.Equal(t, "1", stats.Bucket(-2))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0, stats.WinRate(0, 0))
	assert.Equal(t, 67, stats.WinRate(2, 3))
	assert.Equal(t, 100, stats.WinRate(4, 4))
}

func TestRecordOutcome_WinThenLoss(t *testing.T) {
	ctx := context.Background()
	agg := stats.NewAggregator(store.NewMemory())

	s, err := agg.RecordOutcome(ctx, true, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalGames)
	assert.Equal(t, 1, s.TotalWins)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.BestStreak)
	assert.Equal(t, 1, s.TurnDistribution["5"])

	s, err = agg.RecordOutcome(ctx, false, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalGames)
	assert.Equal(t, 1, s.TotalWins)
	assert.Zero(t, s.CurrentStreak)
	assert.Equal(t, 1, s.BestStreak)
	assert.Zero(t, s.TurnDistribution["8+"])

	assert.Equal(t, s, agg.Load(ctx))
}

func TestRecordOutcome_ShortWinCreatesLabel(t *testing.T) {
	s, err := stats.NewAggregator(store.NewMemory()).RecordOutcome(context.Background(), true, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TurnDistribution["2"])
	assert.Len(t, s.TurnDistribution, 7)
}

func TestRecordOutcome_Invariants(t *testing.T) {
	ctx := context.Background()
	agg := stats.NewAggregator(store.NewMemory())
	outcomes := []struct {
		won   bool
		turns int
	}{{true, 3}, {true, 9}, {false, 4}, {true, 4}, {true, 4}, {true, 12}, {false, 1}, {true, 6}}

	for _, o := range outcomes {
		s, err := agg.RecordOutcome(ctx, o.won, o.turns)
		require.NoError(t, err)
		assert.LessOrEqual(t, s.CurrentStreak, s.BestStreak)
		assert.LessOrEqual(t, s.TotalWins, s.TotalGames)
		assert.LessOrEqual(t, lo.Sum(lo.Values(s.TurnDistribution)), s.TotalWins)
	}
	s := agg.Load(ctx)
	assert.Equal(t, 8, s.TotalGames)
	assert.Equal(t, 6, s.TotalWins)
	assert.Equal(t, 3, s.BestStreak)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.TurnDistribution["8+"])
}

func TestLoad_CorruptBlobGivesDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Put(ctx, stats.StorageKey, []byte("{not json")))

	agg := stats.NewAggregator(kv)
	assert.Equal(t, stats.Defaults(), agg.Load(ctx))

	s, err := agg.RecordOutcome(ctx, true, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalGames)
}

func TestDecode_LegacyBlob(t *testing.T) {
	raw := []byte(`{"currentStreak":"2","bestStreak":5,"totalGames":9,"totalWins":6,
		"turnDistribution":{"3":1,"4":"2","5":null,"8+":3}}`)
	s, ok := stats.Decode(raw)
	require.True(t, ok)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 5, s.BestStreak)
	assert.Equal(t, 9, s.TotalGames)
	assert.Equal(t, 6, s.TotalWins)
	assert.Equal(t, map[string]int{"3": 1, "4": 2, "5": 0, "6": 0, "7": 0, "8+": 3}, s.TurnDistribution)
}

func TestDecode_RepairsInvariants(t *testing.T) {
	raw := []byte(`{"version":1,"currentStreak":4,"bestStreak":1,"totalGames":2,"totalWins":-3,
		"turnDistribution":{"3":3,"4":-1}}`)
	s, ok := stats.Decode(raw)
	require.True(t, ok)
	assert.Equal(t, 4, s.BestStreak)
	assert.Equal(t, 3, s.TotalWins)
	assert.Equal(t, 3, s.TotalGames)
	assert.Zero(t, s.TurnDistribution["4"])
}

func TestEncode_IsVersioned(t *testing.T) {
	raw, err := stats.Encode(stats.Defaults())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":1`)

	back, ok := stats.Decode(raw)
	require.True(t, ok)
	assert.Equal(t, stats.Defaults(), back)
}

type failingKV struct{ store.KV }

func (failingKV) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestRecordOutcome_SaveFailureStillReturnsStats(t *testing.T) {
	agg := stats.NewAggregator(failingKV{store.NewMemory()})
	s, err := agg.RecordOutcome(context.Background(), true, 3)
	assert.Error(t, err)
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	prev := stats.Defaults()
	_ = stats.Apply(prev, true, 3)
	assert.Zero(t, prev.TurnDistribution["3"])
}

func TestApply_NonPositiveTurnsNeverCreateNegativeBucket(t *testing.T) {
	s := stats.Apply(stats.Defaults(), true, -2)
	assert.Equal(t, 1, s.TurnDistribution["1"])
	assert.NotContains(t, s.TurnDistribution, "-2")
	assert.NotContains(t, s.TurnDistribution, "0")
}
