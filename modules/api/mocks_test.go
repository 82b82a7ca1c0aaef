package api

import (
	"context"
	"errors"

	histdomain "github.com/example/smart-ai/domain/history"
	domain "github.com/example/smart-ai/domain/user"
	"github.com/example/smart-ai/modules/qa"
	"github.com/go-monolith/mono/pkg/types"
)

// mockAuthPort implements auth.AuthPort for testing
type mockAuthPort struct {
	registerFunc      func(ctx context.Context, username, password string) (*domain.User, error)
	loginFunc         func(ctx context.Context, username, password string) (*domain.AccessToken, error)
	validateTokenFunc func(ctx context.Context, token string) (*domain.Claims, error)
}

func (m *mockAuthPort) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

// mockAskPort implements qa.AskPort for testing
type mockAskPort struct {
	calls   int
	askFunc func(ctx context.Context, question string) (*qa.Answer, error)
}

func (m *mockAskPort) Ask(ctx context.Context, question string) (*qa.Answer, error) {
	m.calls++
	if m.askFunc != nil {
		return m.askFunc(ctx, question)
	}
	return &qa.Answer{Question: question, Answer: "42"}, nil
}

// mockHistoryPort implements history.HistoryPort for testing
type mockHistoryPort struct {
	entries []histdomain.Entry
	err     error
}

func (m *mockHistoryPort) Append(_ context.Context, question, answer string) (uint, error) {
	if m.err != nil {
		return 0, m.err
	}
	id := uint(len(m.entries) + 1)
	m.entries = append(m.entries, histdomain.Entry{ID: id, Question: question, Answer: answer})
	return id, nil
}

func (m *mockHistoryPort) ListAll(context.Context) ([]histdomain.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

// nopLogger implements types.Logger for testing
type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)          {}
func (l *nopLogger) Info(msg string, args ...any)           {}
func (l *nopLogger) Warn(msg string, args ...any)           {}
func (l *nopLogger) Error(msg string, args ...any)          {}
func (l *nopLogger) With(args ...any) types.Logger          { return l }
func (l *nopLogger) WithError(err error) types.Logger       { return l }
func (l *nopLogger) WithModule(module string) types.Logger { return l }
