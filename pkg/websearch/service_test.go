package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (WebSearchService, *[]url.Values) {
	t.Helper()
	var seen []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query())
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewWebSearchService(Config{BaseURL: server.URL + "/", Timeout: 5}), &seen
}

func TestSearchBuildsInstantAnswerQuery(t *testing.T) {
	svc, seen := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := svc.Search(context.Background(), "  photosynthesis  ")

	require.NoError(t, err)
	require.Len(t, *seen, 1)
	q := (*seen)[0]
	assert.Equal(t, "photosynthesis", q.Get("q"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1", q.Get("no_html"))
	assert.Equal(t, "1", q.Get("skip_disambig"))
}

func TestSearchNormalizesFields(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-javascript")
		_, _ = w.Write([]byte(`{
			"Heading": "Photosynthesis",
			"Abstract": "Process used by plants.",
			"AbstractSource": "Wikipedia",
			"AbstractURL": "https://en.wikipedia.org/wiki/Photosynthesis",
			"Definition": "",
			"Answer": "",
			"RelatedTopics": [
				{"Text": "Chlorophyll", "FirstURL": "https://duckduckgo.com/Chlorophyll"},
				{"Name": "Group", "Topics": [{"Text": "nested"}]},
				{"Text": "Calvin cycle", "FirstURL": "https://duckduckgo.com/Calvin_cycle"},
				{"Text": "Light reactions", "FirstURL": "u3"},
				{"Text": "Stomata", "FirstURL": "u4"},
				{"Text": "Sixth topic", "FirstURL": "u6"}
			]
		}`))
	})

	answer, err := svc.Search(context.Background(), "photosynthesis")

	require.NoError(t, err)
	assert.Equal(t, "Process used by plants.", answer.Abstract)
	assert.Equal(t, "Wikipedia", answer.AbstractSource)
	assert.Empty(t, answer.Definition)
	// first five entries are kept, then the group without text is dropped
	require.Len(t, answer.RelatedTopics, 4)
	assert.Equal(t, Topic{Text: "Chlorophyll", URL: "https://duckduckgo.com/Chlorophyll"}, answer.RelatedTopics[0])
	assert.Equal(t, "Stomata", answer.RelatedTopics[3].Text)
}

func TestSearchIgnoresStructuredAnswer(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Answer": {"from": "calculator", "result": "4"}}`))
	})

	answer, err := svc.Search(context.Background(), "2+2")

	require.NoError(t, err)
	assert.Empty(t, answer.Answer)
	assert.Empty(t, answer.Context())
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, seen := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Search(context.Background(), "   ")

	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "empty_query", searchErr.Code)
	assert.Empty(t, *seen)
}

func TestSearchHTTPError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down for maintenance"))
	})

	_, err := svc.Search(context.Background(), "anything")

	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "http_503", searchErr.Code)
	assert.Equal(t, "Service unavailable: down for maintenance", searchErr.Error())
}

func TestSearchMalformedBody(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := svc.Search(context.Background(), "anything")

	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "response_parse_failed", searchErr.Code)
}

func TestInstantAnswerContext(t *testing.T) {
	answer := &InstantAnswer{
		Abstract:   "Main text",
		Definition: "A definition",
		Answer:     "42",
		RelatedTopics: []Topic{
			{Text: "one", URL: "u1"},
			{Text: "two", URL: "u2"},
		},
	}

	want := "Main Info: Main text\n" +
		"Definition: A definition\n" +
		"Answer: 42\n" +
		"Related Information:\none\ntwo\n"
	assert.Equal(t, want, answer.Context())
	assert.Empty(t, (&InstantAnswer{}).Context())
}
