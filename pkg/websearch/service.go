package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.duckduckgo.com/"

// service implements the WebSearchService interface
type service struct {
	config *Config
	client *http.Client
}

// NewWebSearchService creates a new instant-answer client with the given configuration
func NewWebSearchService(config Config) WebSearchService {
	return NewWebSearchServiceWithClient(config, nil)
}

// NewWebSearchServiceWithClient is NewWebSearchService with a caller-supplied HTTP client.
func NewWebSearchServiceWithClient(config Config, client *http.Client) WebSearchService {
	// Set default values
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30
	}
	if config.MaxRelated <= 0 {
		config.MaxRelated = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "Quizolute/1.0"
	}
	if client == nil {
		client = &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		}
	}

	return &service{
		config: &config,
		client: client,
	}
}

// upstream payload; only the fields we surface are decoded
type ddgResponse struct {
	Heading        string          `json:"Heading"`
	Abstract       string          `json:"Abstract"`
	AbstractText   string          `json:"AbstractText"`
	AbstractSource string          `json:"AbstractSource"`
	AbstractURL    string          `json:"AbstractURL"`
	Definition     string          `json:"Definition"`
	Answer         json.RawMessage `json:"Answer"`
	RelatedTopics  []ddgTopic      `json:"RelatedTopics"`
}

// ddgTopic is either a plain topic or a named group of topics. Groups carry
// no Text and are dropped.
type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Search implements WebSearchService
func (s *service) Search(ctx context.Context, query string) (*InstantAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &SearchError{
			Code:    "empty_query",
			Message: "No search query provided",
		}
	}

	endpoint, err := s.buildURL(query)
	if err != nil {
		return nil, &SearchError{
			Code:    "request_creation_failed",
			Message: "Invalid search endpoint",
			Details: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &SearchError{
			Code:    "request_creation_failed",
			Message: "Failed to create HTTP request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &SearchError{
			Code:    "network_error",
			Message: "Network request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{
			Code:    "response_read_failed",
			Message: "Failed to read response body",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleHTTPError(resp.StatusCode, body)
	}

	var raw ddgResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &SearchError{
			Code:    "response_parse_failed",
			Message: "Failed to parse instant-answer response",
			Details: err.Error(),
		}
	}

	return s.normalize(query, &raw), nil
}

func (s *service) buildURL(query string) (string, error) {
	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// normalize maps the upstream payload. Related topics are cut to the first
// MaxRelated entries before textless entries are dropped.
func (s *service) normalize(query string, raw *ddgResponse) *InstantAnswer {
	abstract := raw.Abstract
	if abstract == "" {
		abstract = raw.AbstractText
	}

	answer := &InstantAnswer{
		Query:          query,
		Heading:        raw.Heading,
		Abstract:       abstract,
		AbstractSource: raw.AbstractSource,
		AbstractURL:    raw.AbstractURL,
		Definition:     raw.Definition,
		Answer:         decodeAnswer(raw.Answer),
		RelatedTopics:  []Topic{},
	}

	topics := raw.RelatedTopics
	if len(topics) > s.config.MaxRelated {
		topics = topics[:s.config.MaxRelated]
	}
	for _, t := range topics {
		if t.Text == "" {
			continue
		}
		answer.RelatedTopics = append(answer.RelatedTopics, Topic{Text: t.Text, URL: t.FirstURL})
	}

	return answer
}

// decodeAnswer accepts the plain-string form of Answer. Structured answers
// (calculators, converters) have no readable text and are ignored.
func decodeAnswer(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return text
}

// handleHTTPError converts HTTP errors to SearchError
func (s *service) handleHTTPError(statusCode int, body []byte) *SearchError {
	message := "HTTP request failed"
	switch statusCode {
	case 400:
		message = "Bad request - invalid parameters"
	case 403:
		message = "Forbidden - request blocked"
	case 429:
		message = "Rate limit exceeded"
	case 500:
		message = "Internal server error"
	case 502:
		message = "Bad gateway"
	case 503:
		message = "Service unavailable"
	}

	details := strings.TrimSpace(string(body))
	if len(details) > 200 {
		details = details[:200]
	}

	return &SearchError{
		Code:    fmt.Sprintf("http_%d", statusCode),
		Message: message,
		Details: details,
	}
}
