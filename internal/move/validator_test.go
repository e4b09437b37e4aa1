package move_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ljp-solutions/word-ladder/internal/move"
	"github.com/ljp-solutions/word-ladder/internal/words"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Lookup(ctx context.Context, word string) (bool, error) {
	args := m.Called(ctx, word)
	return args.Bool(0), args.Error(1)
}

func (m *mockChecker) IsValidWord(ctx context.Context, word string) bool {
	return m.Called(ctx, word).Bool(0)
}

func TestValidate_StructuralRejectionSkipsOracle(t *testing.T) {
	oracle := new(mockChecker)
	v := move.NewValidator(oracle)

	for _, cand := range []string{"CURB", "CART", "CARTS", "TRAC"} {
		got := v.Validate(context.Background(), "CART", cand)
		assert.Equal(t, move.Verdict{Reason: move.ReasonTooManyChanges}, got, cand)
	}
	oracle.AssertNumberOfCalls(t, "Lookup", 0)
	oracle.AssertNumberOfCalls(t, "IsValidWord", 0)
}

func TestValidate_NotAWord(t *testing.T) {
	oracle := new(mockChecker)
	oracle.On("IsValidWord", mock.Anything, "CARX").Return(false).Once()
	oracle.On("Lookup", mock.Anything, "CARX").Return(false, nil).Once()

	got := move.NewValidator(oracle).Validate(context.Background(), "CART", "CARX")
	assert.False(t, got.Valid)
	assert.Equal(t, move.ReasonNotAWord, got.Reason)

	strict := move.NewValidator(oracle, move.WithStrictLookup()).Validate(context.Background(), "CART", "CARX")
	assert.Equal(t, move.ReasonNotAWord, strict.Reason)
	oracle.AssertExpectations(t)
}

func TestValidate_ValidChangeAndSwap(t *testing.T) {
	oracle := new(mockChecker)
	oracle.On("IsValidWord", mock.Anything, mock.Anything).Return(true)
	v := move.NewValidator(oracle)

	assert.Equal(t, move.Verdict{Valid: true}, v.Validate(context.Background(), "CART", "CARD"))
	assert.Equal(t, move.Verdict{Valid: true}, v.Validate(context.Background(), "CRAT", "CART"))
	oracle.AssertNumberOfCalls(t, "IsValidWord", 2)
	oracle.AssertNumberOfCalls(t, "Lookup", 0)
}

func TestValidate_LookupFailure(t *testing.T) {
	oracle := new(mockChecker)
	oracle.On("Lookup", mock.Anything, "CARD").Return(false, errors.New("timeout"))

	failClosed := move.NewValidator(words.NewOracle(downDict{})).Validate(context.Background(), "CART", "CARD")
	assert.Equal(t, move.ReasonNotAWord, failClosed.Reason)

	strict := move.NewValidator(oracle, move.WithStrictLookup()).Validate(context.Background(), "CART", "CARD")
	assert.False(t, strict.Valid)
	assert.Equal(t, move.ReasonLookupUnavailable, strict.Reason)
}

type downDict struct{}

func (downDict) Contains(context.Context, string) (bool, error) { return false, errors.New("timeout") }

func TestValidate_WithWordsOracle(t *testing.T) {
	oracle := words.NewOracle(words.NewList([]string{"CARD", "CARE"}))
	v := move.NewValidator(oracle)

	assert.True(t, v.Validate(context.Background(), "cart", "card").Valid)
	assert.Equal(t, move.ReasonNotAWord, v.Validate(context.Background(), "CART", "CARP").Reason)
}

func TestReasonMessage(t *testing.T) {
	assert.NotEmpty(t, move.ReasonTooManyChanges.Message())
	assert.NotEmpty(t, move.ReasonNotAWord.Message())
	assert.NotEmpty(t, move.ReasonLookupUnavailable.Message())
	assert.Empty(t, move.ReasonNone.Message())
}
