package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFService pulls the plain-text layer out of uploaded PDFs. Scanned PDFs
// without a text layer yield an empty string.
type PDFService struct {
	// maxPages bounds how many pages are read; zero means all.
	maxPages int
}

func NewPDFService(maxPages int) *PDFService {
	return &PDFService{maxPages: maxPages}
}

func (s *PDFService) ExtractText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	if s.maxPages <= 0 || numPages <= s.maxPages {
		plain, err := r.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("read pdf text: %w", err)
		}
		raw, err := io.ReadAll(plain)
		if err != nil {
			return "", fmt.Errorf("read pdf text: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var builder strings.Builder
	fonts := make(map[string]*pdf.Font)
	for pageNum := 1; pageNum <= s.maxPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", pageNum, err)
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return strings.TrimSpace(builder.String()), nil
}
