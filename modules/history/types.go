package history

import (
	domain "github.com/example/smart-ai/domain/history"
)

// AppendRequest represents a request to record a question/answer pair.
type AppendRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AppendResponse carries the stored entry.
type AppendResponse struct {
	ID uint `json:"id"`
}

// ListRequest represents a request for the full history.
type ListRequest struct{}

// ListResponse carries all entries ordered by ID.
type ListResponse struct {
	Entries []domain.Entry `json:"entries"`
}
