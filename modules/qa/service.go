package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/smart-ai/modules/history"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEmptyInput is returned for a blank question.
	ErrEmptyInput = errors.New("question cannot be empty")
	// ErrUpstream is returned when generation or history storage fails.
	ErrUpstream = errors.New("upstream failure")
)

// Answer is the result of asking a question.
type Answer struct {
	ID       uint   `json:"-"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Service validates questions, runs them through the pool and records them.
type Service struct {
	pool    *Pool
	history history.HistoryPort
	group   singleflight.Group
	logger  types.Logger
}

// NewService creates a new Service.
func NewService(pool *Pool, historyPort history.HistoryPort, logger types.Logger) *Service {
	return &Service{
		pool:    pool,
		history: historyPort,
		logger:  logger,
	}
}

// Ask answers question and appends the pair to the history log.
// Identical questions in flight at the same time share one generation.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, ErrEmptyInput
	}

	// The shared generation must not die with whichever caller started it.
	ch := s.group.DoChan(q, func() (any, error) {
		return s.pool.Submit(context.WithoutCancel(ctx), q)
	})

	var answer string
	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, ErrQueueFull) {
				return nil, res.Err
			}
			return nil, fmt.Errorf("%w: generation: %v", ErrUpstream, res.Err)
		}
		answer = res.Val.(string)
		if res.Shared {
			s.logger.Debug("Generation shared between callers", "question_len", len(q))
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	id, err := s.history.Append(ctx, q, answer)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrUpstream, err)
	}

	return &Answer{ID: id, Question: q, Answer: answer}, nil
}
