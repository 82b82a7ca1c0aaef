package api

import domain "github.com/example/smart-ai/domain/history"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MessageResponse is a plain success indicator.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AskRequest carries a question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse echoes the question with its answer.
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HistoryEntry is one item of the /history listing.
type HistoryEntry struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func toHistoryEntries(entries []domain.Entry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{ID: e.ID, Question: e.Question, Answer: e.Answer})
	}
	return out
}
