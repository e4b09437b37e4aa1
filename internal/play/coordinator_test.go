package play_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ljp-solutions/word-ladder/internal/daily"
	"github.com/ljp-solutions/word-ladder/internal/game"
	"github.com/ljp-solutions/word-ladder/internal/move"
	"github.com/ljp-solutions/word-ladder/internal/play"
	"github.com/ljp-solutions/word-ladder/internal/stats"
	"github.com/ljp-solutions/word-ladder/internal/store"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) SubmitOutcome(ctx context.Context, p game.Puzzle, o play.Outcome) error {
	return m.Called(ctx, p, o).Error(0)
}

var puzzle = game.Puzzle{Date: "2025-03-01", StartWord: "CART", TargetWord: "CARE"}

func validator() *move.Validator {
	return move.NewValidator(words.NewOracle(words.NewList([]string{"CARD", "CARE"})))
}

func newCoordinator(kv store.KV, sub play.Submitter) *play.Coordinator {
	return &play.Coordinator{
		Tracker:   daily.NewTracker(kv),
		Stats:     stats.NewAggregator(kv),
		Submitter: sub,
	}
}

func TestCoordinator_WinUpdatesEverything(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	sub := new(mockSubmitter)
	sub.On("SubmitOutcome", mock.Anything, mock.Anything, play.Outcome{Won: true, Streak: 1, Turns: 2}).Return(nil).Once()

	c := newCoordinator(kv, sub)
	var recorded stats.GameStats
	c.OnRecorded = func(_ context.Context, _ game.Completion, s stats.GameStats) { recorded = s }

	s, marker, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	require.Nil(t, marker)

	_, err = s.SubmitMove(ctx, "CARD")
	require.NoError(t, err)
	_, err = s.SubmitMove(ctx, "CARE")
	require.NoError(t, err)

	sub.AssertExpectations(t)
	assert.Equal(t, 1, recorded.TotalWins)

	m, ok := daily.NewTracker(kv).Completed(ctx, "2025-03-01")
	require.True(t, ok)
	assert.Equal(t, daily.PlayMarker{Date: "2025-03-01", Won: true, Turns: 2, Streak: 1, Word: "CARE"}, m)
}

func TestCoordinator_BeginAfterPlayReturnsMarker(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	c := newCoordinator(kv, nil)

	s, _, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	_, err = s.SubmitMove(ctx, "CARE")
	require.NoError(t, err)

	again, marker, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	assert.Nil(t, again)
	require.NotNil(t, marker)
	assert.True(t, marker.Won)
	assert.Equal(t, 1, stats.NewAggregator(kv).Load(ctx).TotalGames)
}

func TestCoordinator_SubmitFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	sub := new(mockSubmitter)
	sub.On("SubmitOutcome", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("offline"))

	s, _, err := newCoordinator(kv, sub).Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	_, err = s.SubmitMove(ctx, "CARE")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NewAggregator(kv).Load(ctx).CurrentStreak)
	_, ok := daily.NewTracker(kv).Completed(ctx, puzzle.Date)
	assert.True(t, ok)
}

func TestCoordinator_LossViaTurnCap(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	sub := new(mockSubmitter)
	sub.On("SubmitOutcome", mock.Anything, mock.Anything, play.Outcome{Won: false, Streak: 0, Turns: 1}).Return(nil).Once()

	s, _, err := newCoordinator(kv, sub).Begin(ctx, puzzle, validator(), game.WithMaxTurns(1))
	require.NoError(t, err)
	res, err := s.SubmitMove(ctx, "CARD")
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, res.Status)

	sub.AssertExpectations(t)
	st := stats.NewAggregator(kv).Load(ctx)
	assert.Equal(t, 1, st.TotalGames)
	assert.Zero(t, st.TotalWins)
}

func TestCoordinator_InvalidPuzzle(t *testing.T) {
	_, _, err := newCoordinator(store.NewMemory(), nil).Begin(context.Background(),
		game.Puzzle{Date: "2025-03-01", StartWord: "CART", TargetWord: "CART"}, validator())
	assert.ErrorIs(t, err, game.ErrInvalidPuzzle)
}

func TestCoordinator_TwoSessionsSameDayRecordOnce(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	sub := new(mockSubmitter)
	sub.On("SubmitOutcome", mock.Anything, mock.Anything, play.Outcome{Won: true, Streak: 1, Turns: 1}).Return(nil).Once()
	c := newCoordinator(kv, sub)

	first, marker, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	require.Nil(t, marker)
	second, marker, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	require.Nil(t, marker)

	for _, s := range []*game.Session{first, second} {
		res, err := s.SubmitMove(ctx, "CARE")
		require.NoError(t, err)
		assert.True(t, res.Completed)
	}

	sub.AssertExpectations(t)
	st := stats.NewAggregator(kv).Load(ctx)
	assert.Equal(t, 1, st.TotalGames)
	assert.Equal(t, 1, st.TotalWins)
	assert.Equal(t, 1, st.CurrentStreak)
}

type failingStats struct{}

func (failingStats) RecordOutcome(context.Context, bool, int) (stats.GameStats, error) {
	return stats.GameStats{}, errors.New("disk full")
}

func TestCoordinator_MarkerWrittenWhenStatsFail(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	c := &play.Coordinator{Tracker: daily.NewTracker(kv), Stats: failingStats{}}

	s, _, err := c.Begin(ctx, puzzle, validator())
	require.NoError(t, err)
	_, err = s.SubmitMove(ctx, "CARE")
	require.NoError(t, err)

	m, ok := daily.NewTracker(kv).Completed(ctx, puzzle.Date)
	require.True(t, ok)
	assert.True(t, m.Won)
	assert.Zero(t, m.Streak)
}

func TestCoordinator_RejectsDatelessPuzzle(t *testing.T) {
	_, _, err := newCoordinator(store.NewMemory(), nil).Begin(context.Background(),
		game.Puzzle{StartWord: "CART", TargetWord: "CARE"}, validator())
	assert.ErrorIs(t, err, game.ErrInvalidPuzzle)
}
