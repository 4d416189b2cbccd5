// Package web holds the presentation layer: the per-user session state, the
// markdown renderer and the HTML fragments shown for each result.
package web

import (
	"context"
	"errors"
	"html/template"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizolute/internal/client"
	"quizolute/internal/models"
)

const (
	maxHistory = 10

	roleUser      = "user"
	roleAssistant = "assistant"

	chatFailedReply      = "Sorry, I encountered an error. Please try again."
	chatUnreachableReply = "Unable to connect to AI. Make sure the server is running."
	generateFailed       = "Failed to generate content"
	generateUnreachable  = "Failed to generate content. Make sure the server is running."
)

var (
	ErrNoFiles            = errors.New("no files selected")
	ErrGenerationInFlight = errors.New("generation already in progress")
)

// API is the part of the service client a session talks to.
type API interface {
	Generate(ctx context.Context, mode models.Mode, text string, files []client.Attachment) (*client.GenerateResult, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// UploadedFile is a file the user selected, identified locally.
type UploadedFile struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
}

// GenerateOutcome is what a generate action shows. Err is set when the
// request failed; HTML then holds the error banner.
type GenerateOutcome struct {
	HTML   template.HTML
	Result *client.GenerateResult
	Err    error
}

// ChatOutcome is the assistant entry appended for one user message.
type ChatOutcome struct {
	Reply models.ChatMessage
	HTML  template.HTML
	Err   error
}

// Session is the state of one user's study session: selected files, the
// generation mode, the document text that grounds chat, and the recent
// conversation. Methods are safe for concurrent use.
type Session struct {
	api API
	log *zap.Logger
	now func() time.Time

	mu              sync.Mutex
	files           []UploadedFile
	mode            models.Mode
	documentContext string
	history         []models.ChatMessage
	generating      bool
	quiz            *Quiz
	deck            *ReviewDeck
}

func NewSession(api API, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		api:  api,
		log:  log,
		now:  time.Now,
		mode: models.ModeFlashcards,
	}
}

// AddFile selects a file. An empty MIME type is detected from the content.
func (s *Session) AddFile(name, mimeType string, data []byte) UploadedFile {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}

	f := UploadedFile{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Data:     data,
	}

	s.mu.Lock()
	s.files = append(s.files, f)
	s.mu.Unlock()
	return f
}

// RemoveFile drops the file with id and reports whether it was present.
func (s *Session) RemoveFile(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) Files() []UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadedFile(nil), s.files...)
}

func (s *Session) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return errors.New("unknown mode " + string(mode))
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

func (s *Session) Mode() models.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) DocumentContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentContext
}

func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.history...)
}

// Generating reports whether a generate request is outstanding.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Quiz returns the answer state of the last generated quiz, if any.
func (s *Session) Quiz() *Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

// Deck returns the review deck built from the last generated flashcards.
func (s *Session) Deck() *ReviewDeck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck
}

// Generate sends the selected files to the endpoint of the current mode.
// Text files are read into the text field and replace DocumentContext;
// images and PDFs are sent as file parts. Only one generate request runs at
// a time; a second call while one is outstanding returns
// ErrGenerationInFlight without contacting the service.
func (s *Session) Generate(ctx context.Context) (GenerateOutcome, error) {
	s.mu.Lock()
	if len(s.files) == 0 {
		s.mu.Unlock()
		return GenerateOutcome{}, ErrNoFiles
	}
	if s.generating {
		s.mu.Unlock()
		return GenerateOutcome{}, ErrGenerationInFlight
	}
	s.generating = true
	mode := s.mode
	files := append([]UploadedFile(nil), s.files...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	var text strings.Builder
	var attachments []client.Attachment
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.MimeType, "text/"):
			text.WriteString(strings.ToValidUTF8(string(f.Data), "�"))
			text.WriteString("\n\n")
		case strings.HasPrefix(f.MimeType, "image/"), f.MimeType == "application/pdf":
			attachments = append(attachments, client.Attachment{Name: f.Name, MimeType: f.MimeType, Data: f.Data})
		default:
			s.log.Debug("file type not sent", zap.String("name", f.Name), zap.String("mime", f.MimeType))
		}
	}

	allText := text.String()
	s.mu.Lock()
	s.documentContext = allText
	s.mu.Unlock()

	if strings.TrimSpace(allText) == "" {
		allText = ""
	}

	result, err := s.api.Generate(ctx, mode, allText, attachments)
	if err != nil {
		s.log.Warn("generation failed", zap.String("mode", string(mode)), zap.Error(err))
		return GenerateOutcome{HTML: RenderError(generateErrorMessage(err)), Err: err}, nil
	}

	outcome := GenerateOutcome{Result: result}
	switch mode {
	case models.ModeFlashcards:
		outcome.HTML = RenderFlashcards(result.Flashcards)
		s.mu.Lock()
		s.deck = NewReviewDeck(result.Flashcards, s.now())
		s.mu.Unlock()
	case models.ModeSummary:
		outcome.HTML = RenderSummaryBlock(result.Summary)
	case models.ModeQuiz:
		quiz := NewQuiz(result.Quiz)
		outcome.HTML = RenderQuiz(quiz)
		s.mu.Lock()
		s.quiz = quiz
		s.mu.Unlock()
	}
	return outcome, nil
}

func generateErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return generateFailed
	}
	return generateUnreachable
}

// Chat appends message to the history and asks the service for a reply
// grounded in DocumentContext. The request carries the retained history
// without message itself. Failures become friendly assistant replies,
// which are kept in the history like any other reply. A blank message is
// ignored and returns ok false.
func (s *Session) Chat(ctx context.Context, message string) (outcome ChatOutcome, ok bool) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatOutcome{}, false
	}

	s.mu.Lock()
	s.appendHistory(models.ChatMessage{Role: roleUser, Content: message})
	prior := append([]models.ChatMessage(nil), s.history[:len(s.history)-1]...)
	req := models.ChatRequest{
		Message: message,
		Context: s.documentContext,
		History: prior,
	}
	s.mu.Unlock()

	reply, err := s.requestReply(ctx, req)
	msg := models.ChatMessage{Role: roleAssistant, Content: reply}

	s.mu.Lock()
	s.appendHistory(msg)
	s.mu.Unlock()

	return ChatOutcome{Reply: msg, HTML: RenderChatMessage(msg), Err: err}, true
}

func (s *Session) requestReply(ctx context.Context, req models.ChatRequest) (string, error) {
	resp, err := s.api.Chat(ctx, req)
	switch {
	case errors.Is(err, client.ErrServerUnreachable):
		s.log.Warn("chat unreachable", zap.Error(err))
		return chatUnreachableReply, err
	case err != nil:
		s.log.Warn("chat failed", zap.Error(err))
		return chatFailedReply, err
	case !resp.Success:
		return chatFailedReply, nil
	}
	return resp.Response, nil
}

// appendHistory adds msg and evicts the oldest entries beyond the cap.
// Callers hold s.mu.
func (s *Session) appendHistory(msg models.ChatMessage) {
	s.history = append(s.history, msg)
	if over := len(s.history) - maxHistory; over > 0 {
		s.history = append([]models.ChatMessage(nil), s.history[over:]...)
	}
}

// Transcript renders the retained conversation in order.
func (s *Session) Transcript() template.HTML {
	var b strings.Builder
	for _, msg := range s.History() {
		b.WriteString(string(RenderChatMessage(msg)))
	}
	return template.HTML(b.String())
}

// Search looks query up and renders the result blocks. A blank query
// renders nothing.
func (s *Session) Search(ctx context.Context, query string) (template.HTML, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	resp, err := s.api.Search(ctx, query)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			// The service answered, just without a result.
			return RenderSearchUnavailable(), err
		}
		s.log.Warn("search failed", zap.String("query", query), zap.Error(err))
		return RenderSearchFailed(), err
	}
	if !resp.Success {
		return RenderSearchUnavailable(), nil
	}
	return RenderSearch(resp.Result), nil
}
