package models

type Mode string

const (
	ModeFlashcards Mode = "flashcards"
	ModeSummary    Mode = "summary"
	ModeQuiz       Mode = "quiz"
)

// Valid reports whether m is one of the generation modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFlashcards, ModeSummary, ModeQuiz:
		return true
	}
	return false
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// ChatMessage is one entry of the conversation history.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	Context string        `json:"context,omitempty"`
	History []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
}

type RelatedTopic struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// SearchResult is the combined instant-answer and AI summary payload.
// Optional fields are omitted when the upstream had nothing for them.
type SearchResult struct {
	Query          string         `json:"query"`
	AISummary      string         `json:"aiSummary,omitempty"`
	Abstract       string         `json:"abstract,omitempty"`
	AbstractSource string         `json:"abstractSource,omitempty"`
	AbstractURL    string         `json:"abstractUrl,omitempty"`
	Definition     string         `json:"definition,omitempty"`
	Answer         string         `json:"answer,omitempty"`
	RelatedTopics  []RelatedTopic `json:"relatedTopics"`
}

// Empty reports whether no renderable block is present.
func (r SearchResult) Empty() bool {
	return r.AISummary == "" && r.Abstract == "" && r.Definition == "" &&
		r.Answer == "" && len(r.RelatedTopics) == 0
}

type FlashcardsResponse struct {
	Success    bool        `json:"success"`
	Flashcards []Flashcard `json:"flashcards"`
}

type SummaryResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}

type QuizResponse struct {
	Success bool           `json:"success"`
	Quiz    []QuizQuestion `json:"quiz"`
}

type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SearchResponse struct {
	Success bool         `json:"success"`
	Result  SearchResult `json:"result"`
}

type HealthModels struct {
	Text   string `json:"text"`
	Vision string `json:"vision"`
}

type HealthResponse struct {
	Status          string       `json:"status"`
	TokenConfigured bool         `json:"tokenConfigured"`
	Models          HealthModels `json:"models"`
	Timestamp       string       `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
