package history

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/smart-ai/domain/history"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// HistoryPort is the history log as seen by other modules.
type HistoryPort interface {
	Append(ctx context.Context, question, answer string) (uint, error)
	ListAll(ctx context.Context) ([]domain.Entry, error)
}

// HistoryAdapter implements HistoryPort using the service container.
type HistoryAdapter struct {
	container mono.ServiceContainer
}

// NewHistoryAdapter creates a new HistoryAdapter.
func NewHistoryAdapter(container mono.ServiceContainer) *HistoryAdapter {
	return &HistoryAdapter{container: container}
}

// Append records a question/answer pair.
func (a *HistoryAdapter) Append(ctx context.Context, question, answer string) (uint, error) {
	req := AppendRequest{Question: question, Answer: answer}
	var resp AppendResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "append", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("append request failed: %w", err)
	}
	return resp.ID, nil
}

// ListAll returns the full history ordered by ID.
func (a *HistoryAdapter) ListAll(ctx context.Context) ([]domain.Entry, error) {
	req := ListRequest{}
	var resp ListResponse

	if err := helper.CallRequestReplyService(
		ctx, a.container, "list", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	if resp.Entries == nil {
		return []domain.Entry{}, nil
	}
	return resp.Entries, nil
}
