package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quizolute/internal/apperrors"
	"quizolute/internal/models"
)

func TestExtractTextCombinesInUploadOrder(t *testing.T) {
	svc, m := setupService()
	m.vision.On("Describe", mock.Anything, []byte("img-1"), "image/png", visionPromptTextOnly).Return("first image", nil).Once()
	m.vision.On("Describe", mock.Anything, []byte("img-2"), "image/jpeg", visionPromptTextOnly).Return("second image", nil).Once()

	text, err := svc.ExtractText(context.Background(), models.ModeFlashcards, GenerateInput{
		Text: "typed notes",
		Files: []Upload{
			{Name: "a.png", MimeType: "image/png", Data: []byte("img-1")},
			{Name: "b.txt", MimeType: "text/plain; charset=utf-8", Data: []byte("file text")},
			{Name: "c.jpg", MimeType: "image/jpeg", Data: []byte("img-2")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "typed notes\n\nfirst image\n\nfile text\n\nsecond image", text)
	m.vision.AssertExpectations(t)
}

func TestExtractTextPlainFileOnly(t *testing.T) {
	svc, m := setupService()

	text, err := svc.ExtractText(context.Background(), models.ModeSummary, GenerateInput{
		Files: []Upload{{Name: "notes.txt", MimeType: "text/plain", Data: []byte("Chapter 1\nCells")}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Chapter 1\nCells", text)
	m.vision.AssertNotCalled(t, "Describe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractTextSniffsUndeclaredType(t *testing.T) {
	svc, m := setupService()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	m.vision.On("Describe", mock.Anything, png, "image/png", visionPromptDefault).Return("sniffed", nil).Once()

	text, err := svc.ExtractText(context.Background(), models.ModeQuiz, GenerateInput{
		Files: []Upload{{Name: "blob", MimeType: "application/octet-stream", Data: png}},
	})

	require.NoError(t, err)
	assert.Equal(t, "sniffed", text)
}

func TestExtractTextIgnoresUnsupported(t *testing.T) {
	svc, _ := setupService()

	_, err := svc.ExtractText(context.Background(), models.ModeSummary, GenerateInput{
		Files: []Upload{{Name: "a.zip", MimeType: "application/zip", Data: []byte("PK\x03\x04")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestExtractTextRejectsBrokenPDF(t *testing.T) {
	svc, _ := setupService()

	_, err := svc.ExtractText(context.Background(), models.ModeSummary, GenerateInput{
		Files: []Upload{{Name: "broken.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4 garbage")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, kindImage, classify("image/webp"))
	assert.Equal(t, kindPDF, classify("application/pdf"))
	assert.Equal(t, kindText, classify("text/markdown"))
	assert.Equal(t, kindUnsupported, classify("application/zip"))
}
