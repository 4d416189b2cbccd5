package web

import (
	"testing"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizolute/internal/models"
)

func newDeck(now time.Time) *ReviewDeck {
	return NewReviewDeck([]models.Flashcard{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	}, now)
}

func TestNewDeckStartsWithFirstCard(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	deck := newDeck(now)

	next, err := deck.Next(now)

	require.NoError(t, err)
	assert.Equal(t, 0, next.Index)
	assert.Equal(t, "q1", next.Card.Question)
	assert.Equal(t, DeckStats{Total: 3, Due: 3, New: 3}, deck.Stats(now))
}

func TestRatedCardMovesOut(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	deck := newDeck(now)

	rated, err := deck.Rate(0, fsrs.Good, now)
	require.NoError(t, err)
	assert.True(t, rated.Schedule.Due.After(now))

	next, err := deck.Next(now)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Index)
}

func TestAgainCardsAreDrilledFirst(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	deck := newDeck(now)

	_, err := deck.Rate(2, fsrs.Again, now)
	require.NoError(t, err)

	next, err := deck.Next(now)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Index)

	_, err = deck.Rate(2, fsrs.Good, now)
	require.NoError(t, err)

	next, err = deck.Next(now)
	require.NoError(t, err)
	assert.Equal(t, 0, next.Index)
}

func TestNoDueCards(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	deck := newDeck(now)
	for i := 0; i < deck.Len(); i++ {
		_, err := deck.Rate(i, fsrs.Easy, now)
		require.NoError(t, err)
	}

	_, err := deck.Next(now)
	assert.ErrorIs(t, err, ErrNoDueCards)

	stats := deck.Stats(now)
	assert.Equal(t, 0, stats.New)
	assert.Equal(t, 0, stats.Due)
	assert.Equal(t, 3, stats.Learning+stats.Review)

	later := now.AddDate(1, 0, 0)
	_, err = deck.Next(later)
	assert.NoError(t, err)
}

func TestRateUnknownCard(t *testing.T) {
	now := time.Now()
	_, err := newDeck(now).Rate(7, fsrs.Good, now)

	assert.ErrorIs(t, err, ErrNoSuchCard)
}

func TestParseRating(t *testing.T) {
	for raw, want := range map[string]fsrs.Rating{
		"again":  fsrs.Again,
		" Hard ": fsrs.Hard,
		"GOOD":   fsrs.Good,
		"easy":   fsrs.Easy,
	} {
		got, err := ParseRating(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRating("meh")
	assert.Error(t, err)
}
