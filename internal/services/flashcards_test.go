package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizolute/internal/models"
)

func TestParseFlashcards(t *testing.T) {
	want := []models.Flashcard{
		{Question: "What is ATP?", Answer: "The energy currency of the cell."},
		{Question: "Where is it made?", Answer: "Mitochondria [mostly]."},
	}
	array := `[{"question":"What is ATP?","answer":"The energy currency of the cell."},` +
		`{"question":"Where is it made?","answer":"Mitochondria [mostly]."}]`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", array},
		{"code fence", "```json\n" + array + "\n```"},
		{"prose around array", "Here are your flashcards:\n" + array + "\nGood luck!"},
		{"footnote before array", "Based on section [2] of the text: " + array},
		{"unclosed bracket in prose", "Notes [draft\n" + array},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, ParseFlashcards(tt.raw))
		})
	}
}

func TestParseFlashcardsFallback(t *testing.T) {
	raw := strings.Repeat("é", 600)

	cards := ParseFlashcards(raw)

	require.Len(t, cards, 1)
	assert.Equal(t, "Generated content", cards[0].Question)
	assert.Equal(t, strings.Repeat("é", 500), cards[0].Answer)
}

func TestParseFlashcardsFallbackOnObject(t *testing.T) {
	cards := ParseFlashcards(`{"question":"q","answer":"a"}`)

	require.Len(t, cards, 1)
	assert.Equal(t, `{"question":"q","answer":"a"}`, cards[0].Answer)
}

func TestParseFlashcardsUnquotedValues(t *testing.T) {
	raw := `Here you go: [{"question":"How many chambers?","answer":4},` +
		`{"question":"Is the heart a muscle?","answer":true},{"question":"Unknown","answer":null}]`

	cards := ParseFlashcards(raw)

	assert.Equal(t, []models.Flashcard{
		{Question: "How many chambers?", Answer: "4"},
		{Question: "Is the heart a muscle?", Answer: "true"},
		{Question: "Unknown", Answer: ""},
	}, cards)
}

func TestParseQuizUnquotedValues(t *testing.T) {
	raw := `[{"question":"2+2?","options":[3,4,5.5],"correct":4,"explanation":42}]`

	quiz := ParseQuiz(raw)

	require.Len(t, quiz, 1)
	assert.Equal(t, []string{"3", "4", "5.5"}, quiz[0].Options)
	assert.Equal(t, "4", quiz[0].Correct)
	assert.Equal(t, "42", quiz[0].Explanation)
}

func TestParseQuiz(t *testing.T) {
	raw := "Sure!\n```json\n[{\"question\":\"2+2?\",\"options\":[\"A) 3\",\"B) 4\",\"C) 5\",\"D) 22\"],\"correct\":\"B\",\"explanation\":\"Basic sum\"}]\n```"

	quiz := ParseQuiz(raw)

	require.Len(t, quiz, 1)
	assert.Equal(t, "B", quiz[0].Correct)
	assert.Equal(t, []string{"A) 3", "B) 4", "C) 5", "D) 22"}, quiz[0].Options)
	assert.Equal(t, "Basic sum", quiz[0].Explanation)
}

func TestParseQuizFallback(t *testing.T) {
	raw := "I could not produce a quiz. " + strings.Repeat("x", 300)

	quiz := ParseQuiz(raw)

	require.Len(t, quiz, 1)
	assert.Equal(t, "Generated content", quiz[0].Question)
	assert.Equal(t, []string{"A) See details"}, quiz[0].Options)
	assert.Equal(t, "A", quiz[0].Correct)
	assert.Len(t, []rune(quiz[0].Explanation), 200)
	assert.True(t, strings.HasPrefix(quiz[0].Explanation, "I could not produce a quiz."))
}

func TestParseQuizIgnoresInnerOptionArrays(t *testing.T) {
	// truncated reply: the outer array never closes, only option lists do
	raw := `[{"question":"Q1","options":["A) a","B) b"],"correct":"A"`

	quiz := ParseQuiz(raw)

	require.Len(t, quiz, 1)
	assert.Equal(t, "Generated content", quiz[0].Question)
}

func TestBracketSpans(t *testing.T) {
	spans := bracketSpans(`x [1] y ["a]", [2]] z [`)

	assert.Equal(t, []string{`[1]`, `["a]", [2]]`, `[2]`}, spans)
}
