package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"quizolute/internal/models"
)

const (
	flashcardFallbackLimit = 500
	quizFallbackLimit      = 200
	fallbackQuestion       = "Generated content"
)

// ParseFlashcards turns a raw model reply into flashcards. It tries the whole
// reply, then each balanced [...] span in order, and finally degrades to a
// single card holding the first 500 characters of the reply.
func ParseFlashcards(raw string) []models.Flashcard {
	var decoded []flashcardJSON
	if decodeArray(raw, &decoded) {
		cards := make([]models.Flashcard, len(decoded))
		for i, c := range decoded {
			cards[i] = models.Flashcard{Question: string(c.Question), Answer: string(c.Answer)}
		}
		return cards
	}
	return []models.Flashcard{{
		Question: fallbackQuestion,
		Answer:   truncateRunes(raw, flashcardFallbackLimit),
	}}
}

// ParseQuiz is ParseFlashcards for quiz questions; the fallback keeps the
// first 200 characters as the explanation.
func ParseQuiz(raw string) []models.QuizQuestion {
	var decoded []quizQuestionJSON
	if decodeArray(raw, &decoded) {
		quiz := make([]models.QuizQuestion, len(decoded))
		for i, q := range decoded {
			var options []string
			if q.Options != nil {
				options = make([]string, len(q.Options))
				for j, opt := range q.Options {
					options[j] = string(opt)
				}
			}
			quiz[i] = models.QuizQuestion{
				Question:    string(q.Question),
				Options:     options,
				Correct:     string(q.Correct),
				Explanation: string(q.Explanation),
			}
		}
		return quiz
	}
	return []models.QuizQuestion{{
		Question:    fallbackQuestion,
		Options:     []string{"A) See details"},
		Correct:     "A",
		Explanation: truncateRunes(raw, quizFallbackLimit),
	}}
}

// Models do not always quote their values ("answer": 4, "correct": 2), so
// generated records decode through looseText instead of string.
type flashcardJSON struct {
	Question looseText `json:"question"`
	Answer   looseText `json:"answer"`
}

type quizQuestionJSON struct {
	Question    looseText   `json:"question"`
	Options     []looseText `json:"options"`
	Correct     looseText   `json:"correct"`
	Explanation looseText   `json:"explanation"`
}

// looseText accepts any JSON value. Strings keep their content, null is
// empty, and numbers, booleans, objects and arrays keep their JSON text.
type looseText string

func (t *looseText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = looseText(s)
		return nil
	}
	*t = looseText(data)
	return nil
}

// decodeArray fills out from the first decodable JSON array in raw.
func decodeArray[T any](raw string, out *[]T) bool {
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), out); err == nil && *out != nil {
		return true
	}
	for _, span := range bracketSpans(raw) {
		var candidate []T
		if err := json.Unmarshal([]byte(span), &candidate); err == nil && candidate != nil {
			*out = candidate
			return true
		}
	}
	return false
}

// stripCodeFence removes markdown code block formatting if present
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	// Skip past the opening ``` and optional language identifier (e.g., "json")
	start := 3
	if newlineIdx := strings.Index(content[start:], "\n"); newlineIdx != -1 {
		start += newlineIdx + 1
	}
	if endIdx := strings.Index(content[start:], "```"); endIdx != -1 {
		content = content[start : start+endIdx]
	} else {
		content = content[start:]
	}
	return strings.TrimSpace(content)
}

// bracketSpans returns the balanced [...] span opening at each '[' in s, in
// order of their opening bracket. Brackets inside JSON string literals do not
// count toward balance.
func bracketSpans(s string) []string {
	var spans []string
	for open := strings.IndexByte(s, '['); open != -1; {
		if end := matchBracket(s, open); end != -1 {
			spans = append(spans, s[open:end+1])
		}
		next := strings.IndexByte(s[open+1:], '[')
		if next == -1 {
			break
		}
		open += next + 1
	}
	return spans
}

// matchBracket returns the index of the ']' closing the '[' at open, or -1.
func matchBracket(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
