package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizolute/internal/completion"
	"quizolute/pkg/websearch"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func (m *mockCompleter) CompleteMessages(ctx context.Context, messages []completion.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type mockDescriber struct {
	mock.Mock
}

func (m *mockDescriber) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	args := m.Called(ctx, image, mimeType, prompt)
	return args.String(0), args.Error(1)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string) (*websearch.InstantAnswer, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*websearch.InstantAnswer), args.Error(1)
	}
	return nil, args.Error(1)
}

type serviceMocks struct {
	llm    *mockCompleter
	vision *mockDescriber
	search *mockSearcher
}

func setupService() (*StudyService, serviceMocks) {
	m := serviceMocks{
		llm:    &mockCompleter{},
		vision: &mockDescriber{},
		search: &mockSearcher{},
	}
	return NewStudyService(m.llm, m.vision, m.search, nil, nil), m
}
