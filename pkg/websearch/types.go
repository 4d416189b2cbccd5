package websearch

import (
	"context"
	"strings"
)

// WebSearchService defines the interface for instant-answer lookups
type WebSearchService interface {
	// Search looks up a query and returns whatever instant-answer fields the upstream has
	Search(ctx context.Context, query string) (*InstantAnswer, error)
}

// InstantAnswer is the normalized upstream response. Empty strings mean the
// upstream had nothing for that field.
type InstantAnswer struct {
	Query          string  `json:"query"`
	Heading        string  `json:"heading,omitempty"`
	Abstract       string  `json:"abstract,omitempty"`
	AbstractSource string  `json:"abstract_source,omitempty"`
	AbstractURL    string  `json:"abstract_url,omitempty"`
	Definition     string  `json:"definition,omitempty"`
	Answer         string  `json:"answer,omitempty"`
	RelatedTopics  []Topic `json:"related_topics"`
}

// Topic is a single related-topic entry
type Topic struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Context renders the answer as the labelled plain-text block fed to the
// summarizing model. It returns "" when there is nothing to summarize.
func (a *InstantAnswer) Context() string {
	var b strings.Builder
	if a.Abstract != "" {
		b.WriteString("Main Info: " + a.Abstract + "\n")
	}
	if a.Definition != "" {
		b.WriteString("Definition: " + a.Definition + "\n")
	}
	if a.Answer != "" {
		b.WriteString("Answer: " + a.Answer + "\n")
	}
	if len(a.RelatedTopics) > 0 {
		texts := make([]string, 0, len(a.RelatedTopics))
		for _, t := range a.RelatedTopics {
			texts = append(texts, t.Text)
		}
		b.WriteString("Related Information:\n" + strings.Join(texts, "\n") + "\n")
	}
	return b.String()
}

// Config holds configuration for the instant-answer client
type Config struct {
	// Endpoint of the instant-answer API (default: https://api.duckduckgo.com/)
	BaseURL string

	// Maximum number of related topics kept (default: 5)
	MaxRelated int

	// HTTP client timeout in seconds (default: 30)
	Timeout int

	UserAgent string
}

// SearchError represents an error that occurred during search
type SearchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *SearchError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
