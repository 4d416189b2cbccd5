package services

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quizolute/internal/apperrors"
	"quizolute/internal/models"
)

const maxConcurrentExtractions = 4

// Upload is one attached file of a generation request.
type Upload struct {
	Name     string
	MimeType string
	Data     []byte
}

// GenerateInput is everything a generation request carried.
type GenerateInput struct {
	Text  string
	Files []Upload
}

type inputKind int

const (
	kindUnsupported inputKind = iota
	kindText
	kindImage
	kindPDF
)

// ExtractText resolves a request to the plain text fed to the model. The
// text field comes first, followed by each file's extraction in upload order,
// separated by blank lines. Files are extracted concurrently.
func (s *StudyService) ExtractText(ctx context.Context, mode models.Mode, input GenerateInput) (string, error) {
	extracted := make([]string, len(input.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExtractions)
	for i, file := range input.Files {
		g.Go(func() error {
			text, err := s.extractFile(gctx, mode, file)
			if err != nil {
				return err
			}
			extracted[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(extracted)+1)
	if strings.TrimSpace(input.Text) != "" {
		parts = append(parts, input.Text)
	}
	for _, text := range extracted {
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	content := strings.Join(parts, "\n\n")
	if strings.TrimSpace(content) == "" {
		return "", apperrors.Validation("No text content provided")
	}
	return content, nil
}

func (s *StudyService) extractFile(ctx context.Context, mode models.Mode, file Upload) (string, error) {
	mimeType := resolveMimeType(file)
	switch classify(mimeType) {
	case kindText:
		return strings.ToValidUTF8(string(file.Data), "�"), nil
	case kindImage:
		s.log.Info("transcribing image", zap.String("file", file.Name), zap.String("mime", mimeType))
		return s.transcribeImage(ctx, mode, file.Data, mimeType)
	case kindPDF:
		text, err := s.pdf.ExtractText(file.Data)
		if err != nil {
			s.log.Warn("pdf extraction failed", zap.String("file", file.Name), zap.Error(err))
			return "", apperrors.Validation(fmt.Sprintf("Could not read PDF %q", file.Name))
		}
		if text == "" {
			s.log.Warn("pdf has no text layer", zap.String("file", file.Name))
		}
		return text, nil
	default:
		s.log.Warn("ignoring unsupported upload", zap.String("file", file.Name), zap.String("mime", mimeType))
		return "", nil
	}
}

// resolveMimeType returns the declared media type without parameters,
// sniffing the content when the client declared nothing useful.
func resolveMimeType(file Upload) string {
	declared := strings.TrimSpace(file.MimeType)
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mediaType
		}
	}
	if declared == "" || declared == "application/octet-stream" {
		detected := mimetype.Detect(file.Data).String()
		if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
			return mediaType
		}
		return detected
	}
	return strings.ToLower(declared)
}

func classify(mimeType string) inputKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return kindImage
	case mimeType == "application/pdf":
		return kindPDF
	case strings.HasPrefix(mimeType, "text/"):
		return kindText
	}
	return kindUnsupported
}
