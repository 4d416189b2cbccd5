package services

import (
	"context"
	"strings"

	"quizolute/internal/models"
)

// transcribeImage routes an image through the vision model with the
// mode-specific extraction instruction. The transcription is not retried.
func (s *StudyService) transcribeImage(ctx context.Context, mode models.Mode, data []byte, mimeType string) (string, error) {
	text, err := s.vision.Describe(ctx, data, mimeType, visionPromptFor(mode))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
