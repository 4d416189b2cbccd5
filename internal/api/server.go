package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"quizolute/internal/apperrors"
	"quizolute/internal/models"
	"quizolute/internal/services"
)

const (
	maxMultipartMemory = 8 << 20 // 8 MB
	defaultMaxUpload   = 10 << 20
	timestampLayout    = "2006-01-02T15:04:05.000Z"
)

// StudyService is the content generation surface the handlers depend on.
type StudyService interface {
	GenerateFlashcards(ctx context.Context, input services.GenerateInput) ([]models.Flashcard, error)
	Summarize(ctx context.Context, input services.GenerateInput) (string, error)
	GenerateQuiz(ctx context.Context, input services.GenerateInput) ([]models.QuizQuestion, error)
	Chat(ctx context.Context, req models.ChatRequest) (string, error)
	Search(ctx context.Context, query string) (*models.SearchResult, error)
}

// Options configures the HTTP surface.
type Options struct {
	MaxUploadBytes  int64
	StaticDir       string
	CORSOrigins     []string
	TokenConfigured bool
	TextModel       string
	VisionModel     string
}

type Server struct {
	router *chi.Mux
	study  StudyService
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

func NewServer(study StudyService, opts Options, log *zap.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router: chi.NewRouter(),
		study:  study,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(recoverer(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			methodNotAllowed(w)
		})

		r.Post("/generate-flashcards", s.handleGenerateFlashcards)
		r.Post("/summarize", s.handleSummarize)
		r.Post("/generate-quiz", s.handleGenerateQuiz)
		r.Post("/chat", s.handleChat)
		r.Get("/search", s.handleSearch)
		r.Get("/health", s.handleHealth)
	})

	if dir := s.opts.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			s.log.Warn("static directory not found, serving API only", zap.String("dir", dir))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:          "ok",
		TokenConfigured: s.opts.TokenConfigured,
		Models: models.HealthModels{
			Text:   s.opts.TextModel,
			Vision: s.opts.VisionModel,
		},
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := s.readGenerateInput(w, r)
	defer cleanup()
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	cards, err := s.study.GenerateFlashcards(r.Context(), input)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.FlashcardsResponse{Success: true, Flashcards: cards})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := s.readGenerateInput(w, r)
	defer cleanup()
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	summary, err := s.study.Summarize(r.Context(), input)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SummaryResponse{Success: true, Summary: summary})
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := s.readGenerateInput(w, r)
	defer cleanup()
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	quiz, err := s.study.GenerateQuiz(r.Context(), input)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuizResponse{Success: true, Quiz: quiz})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, r, decodeError(err))
		return
	}
	if err := validateRequest(&req); err != nil {
		s.respondWithError(w, r, err)
		return
	}

	reply, err := s.study.Chat(r.Context(), req)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Success: true, Response: reply})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.study.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchResponse{Success: true, Result: *result})
}

// readGenerateInput accepts multipart (optional text field, any number of
// file parts), urlencoded, or JSON {"text": ...} bodies. The returned cleanup
// removes multipart temp files and is always safe to call.
func (s *Server) readGenerateInput(w http.ResponseWriter, r *http.Request) (services.GenerateInput, func(), error) {
	var input services.GenerateInput
	cleanup := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return input, cleanup, decodeError(err)
		}
		input.Text = body.Text

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return input, cleanup, decodeError(err)
		}
		form := r.MultipartForm
		cleanup = func() { _ = form.RemoveAll() }

		input.Text = r.FormValue("text")
		for _, fh := range form.File["file"] {
			upload, err := readUpload(fh)
			if err != nil {
				return input, cleanup, err
			}
			input.Files = append(input.Files, upload)
		}

	default:
		if err := r.ParseForm(); err != nil {
			return input, cleanup, decodeError(err)
		}
		input.Text = r.PostFormValue("text")
	}

	return input, cleanup, nil
}

func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	src, err := fh.Open()
	if err != nil {
		return services.Upload{}, apperrors.Validation("could not read uploaded file " + fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return services.Upload{}, apperrors.Validation("could not read uploaded file " + fh.Filename)
	}
	return services.Upload{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

// decodeError classifies a body read or parse failure.
func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.PayloadTooLarge("File too large")
	}
	if errors.Is(err, io.EOF) {
		return apperrors.Validation("request body is empty")
	}
	if strings.Contains(err.Error(), "multipart") {
		return apperrors.Validation("invalid multipart form")
	}
	return apperrors.Validation("invalid request body")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
