package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"quizolute/internal/completion"
	"quizolute/internal/models"
	"quizolute/pkg/websearch"
)

// maxChatHistory is how many prior turns are forwarded to the model.
const maxChatHistory = 8

// Completer produces text completions, falling back across models.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteMessages(ctx context.Context, messages []completion.Message) (string, error)
}

// Describer transcribes images with a vision-capable model.
type Describer interface {
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// StudyService turns uploaded study material into flashcards, summaries and
// quizzes, and answers chat and search requests. It holds no per-user state.
type StudyService struct {
	llm    Completer
	vision Describer
	search websearch.WebSearchService
	pdf    *PDFService
	log    *zap.Logger
}

func NewStudyService(
	llm Completer,
	vision Describer,
	search websearch.WebSearchService,
	pdf *PDFService,
	log *zap.Logger,
) *StudyService {
	if pdf == nil {
		pdf = NewPDFService(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StudyService{
		llm:    llm,
		vision: vision,
		search: search,
		pdf:    pdf,
		log:    log,
	}
}

func (s *StudyService) GenerateFlashcards(ctx context.Context, input GenerateInput) ([]models.Flashcard, error) {
	raw, err := s.generate(ctx, models.ModeFlashcards, input)
	if err != nil {
		return nil, err
	}
	cards := ParseFlashcards(raw)
	s.log.Info("flashcards generated", zap.Int("count", len(cards)))
	return cards, nil
}

// Summarize returns the model's markdown summary unparsed.
func (s *StudyService) Summarize(ctx context.Context, input GenerateInput) (string, error) {
	return s.generate(ctx, models.ModeSummary, input)
}

func (s *StudyService) GenerateQuiz(ctx context.Context, input GenerateInput) ([]models.QuizQuestion, error) {
	raw, err := s.generate(ctx, models.ModeQuiz, input)
	if err != nil {
		return nil, err
	}
	quiz := ParseQuiz(raw)
	s.log.Info("quiz generated", zap.Int("questions", len(quiz)))
	return quiz, nil
}

func (s *StudyService) generate(ctx context.Context, mode models.Mode, input GenerateInput) (string, error) {
	content, err := s.ExtractText(ctx, mode, input)
	if err != nil {
		return "", err
	}
	s.log.Debug("generating",
		zap.String("mode", string(mode)),
		zap.Int("chars", len(content)),
		zap.Int("files", len(input.Files)),
	)
	return s.llm.Complete(ctx, systemPromptFor(mode), content)
}

// Chat answers a study question, grounding the model in the supplied
// document context and the most recent history turns.
func (s *StudyService) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", errNoMessage
	}

	history := req.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	messages := make([]completion.Message, 0, len(history)+2)
	messages = append(messages, completion.Message{
		Role:    completion.RoleSystem,
		Content: chatSystemPrompt(strings.TrimSpace(req.Context)),
	})
	for _, turn := range history {
		messages = append(messages, completion.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, completion.Message{Role: completion.RoleUser, Content: message})

	return s.llm.CompleteMessages(ctx, messages)
}
