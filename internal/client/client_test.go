package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizolute/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL+"/", server.Client())
}

func TestGenerateSendsMultipartToModeEndpoint(t *testing.T) {
	var gotPath, gotText, gotRequestID string
	var gotFiles []string
	var gotTypes []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-Id")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotText = r.FormValue("text")
		for _, fh := range r.MultipartForm.File["file"] {
			gotFiles = append(gotFiles, fh.Filename)
			gotTypes = append(gotTypes, fh.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"success":true,"quiz":[{"question":"Q","options":["A) x","B) y"],"correct":"A"}]}`))
	})

	result, err := c.Generate(context.Background(), models.ModeQuiz, "notes\n\n", []Attachment{
		{Name: "board.png", MimeType: "image/png", Data: []byte{0x89, 'P'}},
		{Name: "scan.jpg", Data: []byte{0xff}},
	})

	require.NoError(t, err)
	assert.Equal(t, "/api/generate-quiz", gotPath)
	assert.Equal(t, "notes\n\n", gotText)
	assert.Equal(t, []string{"board.png", "scan.jpg"}, gotFiles)
	assert.Equal(t, []string{"image/png", "application/octet-stream"}, gotTypes)
	assert.NotEmpty(t, gotRequestID)
	require.Len(t, result.Quiz, 1)
	assert.Equal(t, "A", result.Quiz[0].Correct)
}

func TestGenerateOmitsEmptyTextField(t *testing.T) {
	var hasText bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasText = r.MultipartForm.Value["text"]
		_, _ = w.Write([]byte(`{"success":true,"summary":"## S"}`))
	})

	result, err := c.Generate(context.Background(), models.ModeSummary, "", []Attachment{{Name: "a.png", MimeType: "image/png", Data: []byte("x")}})

	require.NoError(t, err)
	assert.False(t, hasText)
	assert.Equal(t, "## S", result.Summary)
}

func TestEndpointFor(t *testing.T) {
	cases := map[models.Mode]string{
		models.ModeFlashcards: "/api/generate-flashcards",
		models.ModeSummary:    "/api/summarize",
		models.ModeQuiz:       "/api/generate-quiz",
	}
	for mode, want := range cases {
		got, err := EndpointFor(mode)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := EndpointFor("essay")
	assert.Error(t, err)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No text content provided"}`))
	})

	_, err := c.Generate(context.Background(), models.ModeFlashcards, "", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "No text content provided", apiErr.Message)
	assert.False(t, errors.Is(err, ErrServerUnreachable))
}

func TestNon2xxWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "atp")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestTransportFailureIsServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(url, nil)
	_, err := c.Health(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnreachable)
}

func TestChatPostsJSON(t *testing.T) {
	var got models.ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"success":true,"response":"ATP synthase."}`))
	})

	resp, err := c.Chat(context.Background(), models.ChatRequest{
		Message: "What makes ATP?",
		Context: "doc",
		History: []models.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ATP synthase.", resp.Response)
	assert.Equal(t, "doc", got.Context)
	assert.Len(t, got.History, 2)
}

func TestSearchEscapesQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"success":true,"result":{"query":"a&b c","relatedTopics":[]}}`))
	})

	resp, err := c.Search(context.Background(), "a&b c")

	require.NoError(t, err)
	assert.Equal(t, "a&b c", gotQuery)
	assert.Equal(t, "a&b c", resp.Result.Query)
	assert.True(t, resp.Result.Empty())
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"status":"ok","tokenConfigured":true,"models":{"text":"t","vision":"v"},"timestamp":"2024-01-01T00:00:00.000Z"}`))
	})

	resp, err := c.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.TokenConfigured)
	assert.Equal(t, "v", resp.Models.Vision)
}
