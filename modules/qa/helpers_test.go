package qa

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	domain "github.com/example/smart-ai/domain/history"
	"github.com/go-monolith/mono/pkg/types"
)

// nopLogger implements types.Logger for testing
type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)          {}
func (l *nopLogger) Info(msg string, args ...any)           {}
func (l *nopLogger) Warn(msg string, args ...any)           {}
func (l *nopLogger) Error(msg string, args ...any)          {}
func (l *nopLogger) With(args ...any) types.Logger          { return l }
func (l *nopLogger) WithError(err error) types.Logger       { return l }
func (l *nopLogger) WithModule(module string) types.Logger { return l }

// fakeGenerator answers by echoing, optionally blocking until released.
type fakeGenerator struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, question string) (string, error) {
	g.calls.Add(1)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return "answer to " + question, nil
}

// memoryHistory is an in-memory HistoryPort.
type memoryHistory struct {
	mu      sync.Mutex
	entries []domain.Entry
	err     error
}

func (h *memoryHistory) Append(_ context.Context, question, answer string) (uint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return 0, h.err
	}
	id := uint(len(h.entries) + 1)
	h.entries = append(h.entries, domain.Entry{ID: id, Question: question, Answer: answer})
	return id, nil
}

func (h *memoryHistory) ListAll(context.Context) ([]domain.Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	return append([]domain.Entry(nil), h.entries...), nil
}

func (h *memoryHistory) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

var errModelDown = errors.New("model unavailable")
