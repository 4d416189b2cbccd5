package web

import (
	"errors"
	"strings"
	"sync"

	"quizolute/internal/models"
)

var (
	ErrNoSuchQuestion = errors.New("no such question")
	ErrNoSuchOption   = errors.New("no such option")
)

// OptionView is the display state of one answer button.
type OptionView struct {
	Text      string
	Disabled  bool
	Correct   bool
	Incorrect bool
	Selected  bool
}

// QuestionView is the display state of one quiz question.
type QuestionView struct {
	Question           string
	Correct            string
	Options            []OptionView
	Explanation        string
	ExplanationVisible bool
}

// Quiz tracks which option was picked for each question. Once any option of
// a question is picked, the question is locked and further picks are ignored.
type Quiz struct {
	mu        sync.Mutex
	questions []models.QuizQuestion
	selected  []int
}

func NewQuiz(questions []models.QuizQuestion) *Quiz {
	selected := make([]int, len(questions))
	for i := range selected {
		selected[i] = -1
	}
	return &Quiz{questions: questions, selected: selected}
}

func (q *Quiz) Len() int {
	return len(q.questions)
}

// Answer records option as the pick for question. It reports whether the
// pick was correct and whether it was applied; a locked question is left
// unchanged.
func (q *Quiz) Answer(question, option int) (correct bool, applied bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if question < 0 || question >= len(q.questions) {
		return false, false, ErrNoSuchQuestion
	}
	qq := q.questions[question]
	if option < 0 || option >= len(qq.Options) {
		return false, false, ErrNoSuchOption
	}
	if q.selected[question] >= 0 {
		return q.selected[question] == CorrectOptionIndex(qq), false, nil
	}
	q.selected[question] = option
	return option == CorrectOptionIndex(qq), true, nil
}

// Score returns how many answered questions were answered correctly.
func (q *Quiz) Score() (correct, answered int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, sel := range q.selected {
		if sel < 0 {
			continue
		}
		answered++
		if sel == CorrectOptionIndex(q.questions[i]) {
			correct++
		}
	}
	return correct, answered
}

// Views returns the display state of every question.
func (q *Quiz) Views() []QuestionView {
	q.mu.Lock()
	defer q.mu.Unlock()

	views := make([]QuestionView, len(q.questions))
	for i, qq := range q.questions {
		views[i] = questionView(qq, q.selected[i])
	}
	return views
}

func questionView(qq models.QuizQuestion, selected int) QuestionView {
	answered := selected >= 0
	correct := CorrectOptionIndex(qq)

	view := QuestionView{
		Question:    qq.Question,
		Correct:     qq.Correct,
		Options:     make([]OptionView, len(qq.Options)),
		Explanation: qq.Explanation,
	}
	for i, text := range qq.Options {
		opt := OptionView{Text: text}
		if answered {
			opt.Disabled = true
			opt.Correct = i == correct
			opt.Selected = i == selected
			opt.Incorrect = i == selected && i != correct
		}
		view.Options[i] = opt
	}
	view.ExplanationVisible = answered && strings.TrimSpace(qq.Explanation) != ""
	return view
}

// CorrectOptionIndex finds the option labelled with the question's correct
// letter, matching "B)", "B." or "B " at the start of the option. Only the first
// match counts. It returns -1 when no option carries the label.
func CorrectOptionIndex(qq models.QuizQuestion) int {
	label := normalizeLabel(qq.Correct)
	if label == "" {
		return -1
	}
	for i, opt := range qq.Options {
		opt = strings.ToUpper(strings.TrimSpace(opt))
		if strings.HasPrefix(opt, label+")") || strings.HasPrefix(opt, label+".") || strings.HasPrefix(opt, label+" ") {
			return i
		}
	}
	return -1
}

// normalizeLabel reduces "b", "B)" or " B. " to "B".
func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimRight(label, ").")
	return strings.ToUpper(strings.TrimSpace(label))
}
