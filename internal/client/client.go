// Package client is a typed HTTP client for the study API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizolute/internal/models"
)

// ErrServerUnreachable is returned when no HTTP response could be obtained.
var ErrServerUnreachable = errors.New("server unreachable")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Attachment is a file sent as a `file` part of a generation request.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// GenerateResult holds the payload of whichever mode was requested.
type GenerateResult struct {
	Mode       models.Mode
	Flashcards []models.Flashcard
	Summary    string
	Quiz       []models.QuizQuestion
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the service rooted at baseURL (for example
// "http://localhost:3000"). A nil httpClient gets a two minute timeout, since
// generation waits on model inference.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// EndpointFor returns the API path serving a generation mode.
func EndpointFor(mode models.Mode) (string, error) {
	switch mode {
	case models.ModeFlashcards:
		return "/api/generate-flashcards", nil
	case models.ModeSummary:
		return "/api/summarize", nil
	case models.ModeQuiz:
		return "/api/generate-quiz", nil
	}
	return "", fmt.Errorf("unknown mode %q", mode)
}

// Generate posts text and attachments as multipart form data to the endpoint
// for mode.
func (c *Client) Generate(ctx context.Context, mode models.Mode, text string, files []Attachment) (*GenerateResult, error) {
	path, err := EndpointFor(mode)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeMultipart(text, files)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Mode: mode}
	switch mode {
	case models.ModeFlashcards:
		var resp models.FlashcardsResponse
		if err := c.do(ctx, http.MethodPost, path, contentType, body, &resp); err != nil {
			return nil, err
		}
		result.Flashcards = resp.Flashcards
	case models.ModeSummary:
		var resp models.SummaryResponse
		if err := c.do(ctx, http.MethodPost, path, contentType, body, &resp); err != nil {
			return nil, err
		}
		result.Summary = resp.Summary
	case models.ModeQuiz:
		var resp models.QuizResponse
		if err := c.do(ctx, http.MethodPost, path, contentType, body, &resp); err != nil {
			return nil, err
		}
		result.Quiz = resp.Quiz
	}
	return result, nil
}

func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	var resp models.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	path := "/api/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var resp models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrServerUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(text string, files []Attachment) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if text != "" {
		if err := mw.WriteField("text", text); err != nil {
			return nil, "", fmt.Errorf("write text field: %w", err)
		}
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		header.Set("Content-Type", mimeType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
