package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"

	"quizolute/internal/models"
)

// FileType is the icon and badge shown for an uploaded file.
type FileType struct {
	Icon  string
	Class string
	Label string
}

var fileTypes = map[string]FileType{
	"application/pdf":    {Icon: "📄", Class: "pdf", Label: "PDF"},
	"application/msword": {Icon: "📝", Class: "doc", Label: "DOC"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {Icon: "📝", Class: "doc", Label: "DOCX"},
	"text/plain":                    {Icon: "📋", Class: "txt", Label: "TXT"},
	"application/vnd.ms-powerpoint": {Icon: "📊", Class: "ppt", Label: "PPT"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {Icon: "📊", Class: "ppt", Label: "PPTX"},
	"image/png":  {Icon: "🖼️", Class: "img", Label: "PNG"},
	"image/jpeg": {Icon: "🖼️", Class: "img", Label: "JPG"},
	"image/gif":  {Icon: "🖼️", Class: "img", Label: "GIF"},
}

var defaultFileType = FileType{Icon: "📄", Class: "txt", Label: "FILE"}

// FileTypeFor looks up the display entry for a MIME type.
func FileTypeFor(mimeType string) FileType {
	if ft, ok := fileTypes[mimeType]; ok {
		return ft
	}
	return defaultFileType
}

// ModeLabel is the text of the generate button for a mode.
func ModeLabel(mode models.Mode) string {
	switch mode {
	case models.ModeSummary:
		return "Generate Summary"
	case models.ModeQuiz:
		return "Generate Quiz"
	}
	return "Generate Flashcards"
}

// LoadingMessage is shown while a generation request for mode is in flight.
func LoadingMessage(mode models.Mode) string {
	switch mode {
	case models.ModeSummary:
		return "Generating summary..."
	case models.ModeQuiz:
		return "Building quiz questions..."
	}
	return "Creating flashcards..."
}

const (
	typingPlaceholder = "Thinking..."
	searchLoading     = "Searching and analyzing..."
)

var templates = template.Must(template.New("web").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
{{define "loading"}}<div class="results-loading"><div class="loading-spinner"></div><p class="loading-text">{{.}}</p></div>{{end}}

{{define "error"}}<div class="results-error"><p>❌ {{.}}</p></div>{{end}}

{{define "files"}}{{range .}}<div class="file-item" data-id="{{.ID}}"><div class="file-icon {{.Type.Class}}">{{.Type.Icon}}</div><div class="file-info"><div class="file-name" title="{{.Name}}">{{.Name}}</div><div class="file-size">{{.Size}} • {{.Type.Label}}</div></div><button class="file-remove" data-id="{{.ID}}" aria-label="Remove file">×</button></div>{{end}}{{end}}

{{define "flashcards"}}<div class="flashcards-grid">{{range $i, $c := .}}<div class="flashcard" onclick="this.classList.toggle('flipped')"><div class="flashcard-inner"><div class="flashcard-front"><div class="flashcard-label">Question {{inc $i}}</div><div class="flashcard-content">{{$c.Question}}</div><div class="flashcard-hint">Click to flip</div></div><div class="flashcard-back"><div class="flashcard-label">Answer</div><div class="flashcard-content">{{$c.Answer}}</div></div></div></div>{{end}}</div>{{end}}

{{define "summary"}}<div class="summary-container">{{.}}</div>{{end}}

{{define "quiz"}}<div class="quiz-container">{{range $i, $q := .}}<div class="quiz-question" data-correct="{{$q.Correct}}"><div class="quiz-question-number">Question {{inc $i}}</div><div class="quiz-question-text">{{$q.Question}}</div><div class="quiz-options">{{range $j, $o := $q.Options}}<button class="quiz-option{{if $o.Correct}} correct{{end}}{{if $o.Incorrect}} incorrect{{end}}{{if $o.Selected}} selected{{end}}" data-question="{{$i}}" data-option="{{$j}}"{{if $o.Disabled}} disabled{{end}}>{{$o.Text}}</button>{{end}}</div><div class="quiz-explanation{{if $q.ExplanationVisible}} visible{{end}}">{{$q.Explanation}}</div></div>{{end}}</div>{{end}}

{{define "chat"}}<div class="chat-message {{.Role}}"><div class="message-avatar">{{.Avatar}}</div><div class="message-content">{{.Content}}</div></div>{{end}}

{{define "search"}}{{if .AISummary}}<div class="search-result-item ai-summary"><div class="search-result-title"><span>🤖</span> AI Summary</div><div class="search-result-text">{{.AISummary}}</div></div>{{end}}
{{- if .Abstract}}<div class="search-result-item"><div class="search-result-title">📚 {{.AbstractTitle}}</div><div class="search-result-text">{{.Abstract}}</div>{{if .AbstractURL}}<a href="{{.AbstractURL}}" target="_blank" class="search-result-link">Read more →</a>{{end}}</div>{{end}}
{{- if .Definition}}<div class="search-result-item"><div class="search-result-title">📖 Definition</div><div class="search-result-text">{{.Definition}}</div></div>{{end}}
{{- if .Answer}}<div class="search-result-item"><div class="search-result-title">💡 Quick Answer</div><div class="search-result-text">{{.Answer}}</div></div>{{end}}
{{- if .RelatedTopics}}<div class="search-result-item"><div class="search-result-title">🔗 Related Topics</div>{{range .RelatedTopics}}<div class="search-result-text">{{.Text}}</div>{{if .URL}}<a href="{{.URL}}" target="_blank" class="search-result-link">Learn more →</a>{{end}}{{end}}</div>{{end}}{{end}}

{{define "search-message"}}<div class="search-result-item"><div class="search-result-text">{{.}}</div></div>{{end}}

{{define "search-error"}}<div class="results-error">{{.}}</div>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="styles.css">
</head>
<body>
<main>{{.Body}}</main>
</body>
</html>
{{end}}
`))

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are static; failure here means a programming error.
		panic(err)
	}
	return template.HTML(buf.String())
}

// RenderLoading is the spinner banner shown while a request is pending.
func RenderLoading(message string) template.HTML {
	return execute("loading", message)
}

// RenderError is the inline error banner.
func RenderError(message string) template.HTML {
	return execute("error", message)
}

type fileItem struct {
	ID   string
	Name string
	Size string
	Type FileType
}

// RenderFileList lists the selected files with icon, human readable size and
// type badge. An empty list renders nothing.
func RenderFileList(files []UploadedFile) template.HTML {
	if len(files) == 0 {
		return ""
	}
	items := make([]fileItem, len(files))
	for i, f := range files {
		items[i] = fileItem{
			ID:   f.ID,
			Name: f.Name,
			Size: humanize.Bytes(uint64(len(f.Data))),
			Type: FileTypeFor(f.MimeType),
		}
	}
	return execute("files", items)
}

func RenderFlashcards(cards []models.Flashcard) template.HTML {
	if len(cards) == 0 {
		return RenderError("No flashcards generated")
	}
	return execute("flashcards", cards)
}

func RenderSummaryBlock(summary string) template.HTML {
	if strings.TrimSpace(summary) == "" {
		return RenderError("No summary generated")
	}
	return execute("summary", RenderSummary(summary))
}

// RenderQuiz renders every question of the quiz in its current answer state.
func RenderQuiz(quiz *Quiz) template.HTML {
	if quiz == nil || quiz.Len() == 0 {
		return RenderError("No quiz generated")
	}
	return execute("quiz", quiz.Views())
}

type chatItem struct {
	Role    string
	Avatar  string
	Content template.HTML
}

// RenderChatMessage renders one conversation entry. User text is shown as
// typed; assistant replies go through the chat markdown renderer.
func RenderChatMessage(msg models.ChatMessage) template.HTML {
	if msg.Role == roleUser {
		return execute("chat", chatItem{
			Role:    roleUser,
			Avatar:  "👤",
			Content: template.HTML(template.HTMLEscapeString(msg.Content)),
		})
	}
	return execute("chat", chatItem{
		Role:    roleAssistant,
		Avatar:  "🤖",
		Content: RenderChatMarkdown(msg.Content),
	})
}

// RenderTyping is the transient placeholder shown while a reply is pending.
func RenderTyping() template.HTML {
	return execute("chat", chatItem{
		Role:    roleAssistant + " typing",
		Avatar:  "🤖",
		Content: template.HTML(typingPlaceholder),
	})
}

type searchView struct {
	AISummary     template.HTML
	AbstractTitle string
	Abstract      string
	AbstractURL   string
	Definition    string
	Answer        string
	RelatedTopics []models.RelatedTopic
}

// RenderSearch renders the search blocks in fixed order, each only when its
// field is non-empty, or a no-results message when none qualifies.
func RenderSearch(result models.SearchResult) template.HTML {
	if result.Empty() {
		return execute("search-message",
			`No results found for "`+result.Query+`". Try a different search term or ask the AI chatbot above!`)
	}

	title := result.AbstractSource
	if title == "" {
		title = result.Query
	}
	view := searchView{
		AbstractTitle: title,
		Abstract:      result.Abstract,
		AbstractURL:   result.AbstractURL,
		Definition:    result.Definition,
		Answer:        result.Answer,
		RelatedTopics: result.RelatedTopics,
	}
	if result.AISummary != "" {
		escaped := template.HTMLEscapeString(result.AISummary)
		view.AISummary = template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	}
	return execute("search", view)
}

// RenderSearchUnavailable is shown when the service answered without a result.
func RenderSearchUnavailable() template.HTML {
	return execute("search-message", "No results found. Try asking the AI chatbot instead!")
}

// RenderSearchFailed is shown when the service could not be reached.
func RenderSearchFailed() template.HTML {
	return execute("search-error", "Search failed. Make sure the server is running.")
}

func RenderSearchLoading() template.HTML {
	return RenderLoading(searchLoading)
}

// RenderPage wraps a fragment in a standalone HTML document.
func RenderPage(title string, body template.HTML) template.HTML {
	return execute("page", struct {
		Title string
		Body  template.HTML
	}{title, body})
}
