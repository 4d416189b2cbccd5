package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quizolute/internal/apperrors"
	"quizolute/internal/models"
)

var (
	errNoMessage = apperrors.Validation("No message provided")
	errNoQuery   = apperrors.Validation("No search query provided")
)

// Search looks the query up on the instant-answer API and, when anything came
// back, asks the model for a readable answer. A failed summary is logged and
// left out; it never fails the search.
func (s *StudyService) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errNoQuery
	}

	answer, err := s.search.Search(ctx, query)
	if err != nil {
		s.log.Error("instant-answer lookup failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSearch, err.Error())
	}

	result := &models.SearchResult{
		Query:          query,
		Abstract:       answer.Abstract,
		AbstractSource: answer.AbstractSource,
		AbstractURL:    answer.AbstractURL,
		Definition:     answer.Definition,
		Answer:         answer.Answer,
		RelatedTopics:  make([]models.RelatedTopic, 0, len(answer.RelatedTopics)),
	}
	for _, t := range answer.RelatedTopics {
		result.RelatedTopics = append(result.RelatedTopics, models.RelatedTopic{Text: t.Text, URL: t.URL})
	}

	searchContext := answer.Context()
	if strings.TrimSpace(searchContext) == "" {
		return result, nil
	}

	summary, err := s.llm.Complete(ctx, researchPrompt, researchUserPrompt(query, searchContext))
	if err != nil {
		s.log.Warn("AI enhancement failed", zap.String("query", query), zap.Error(err))
		return result, nil
	}
	result.AISummary = summary
	return result, nil
}
