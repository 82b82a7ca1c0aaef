package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/smart-ai/modules/auth"
	"github.com/example/smart-ai/modules/history"
	"github.com/example/smart-ai/modules/qa"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth       auth.AuthPort
	asker      qa.AskPort
	history    history.HistoryPort
	askTimeout time.Duration
	logger     types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	authPort auth.AuthPort,
	asker qa.AskPort,
	historyPort history.HistoryPort,
	askTimeout time.Duration,
	logger types.Logger,
) *Handlers {
	return &Handlers{
		auth:       authPort,
		asker:      asker,
		history:    historyPort,
		askTimeout: askTimeout,
		logger:     logger,
	}
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   code,
		Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: "Internal Server Error",
	})
}

// Health reports liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "OK"})
}

// Register handles user registration. No token is issued.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "Invalid request body")
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return badRequest(c, "bad_request", "Username and password are required")
	}

	_, err := h.auth.Register(c.UserContext(), req.Username, req.Password)
	switch {
	case err == nil:
		return c.JSON(MessageResponse{Message: "User created successfully"})
	case errors.Is(err, auth.ErrUsernameTaken):
		return badRequest(c, auth.CodeUsernameTaken, "Username already registered")
	case errors.Is(err, auth.ErrInvalidInput):
		return badRequest(c, "bad_request", "Invalid username or password")
	default:
		h.logger.Error("Registration failed", "error", err)
		return internalError(c)
	}
}

// Token exchanges form-encoded credentials for a bearer token. Missing
// fields are rejected exactly like wrong ones.
func (h *Handlers) Token(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return unauthorized(c, auth.CodeInvalidCredentials, "Incorrect username or password")
	}

	token, err := h.auth.Login(c.UserContext(), username, password)
	switch {
	case err == nil:
		return c.JSON(TokenResponse{
			AccessToken: token.Token,
			TokenType:   "bearer",
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return unauthorized(c, auth.CodeInvalidCredentials, "Incorrect username or password")
	default:
		h.logger.Error("Login failed", "error", err)
		return internalError(c)
	}
}

// Ask answers a question and records it in the history log.
func (h *Handlers) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad_request", "Invalid request body")
	}

	if strings.TrimSpace(req.Question) == "" {
		return badRequest(c, "empty_input", "Question cannot be empty.")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.askTimeout)
	defer cancel()

	answer, err := h.asker.Ask(ctx, req.Question)
	switch {
	case err == nil:
		return c.JSON(AskResponse{
			Question: answer.Question,
			Answer:   answer.Answer,
		})
	case errors.Is(err, qa.ErrEmptyInput):
		return badRequest(c, "empty_input", "Question cannot be empty.")
	case errors.Is(err, qa.ErrQueueFull):
		c.Set(fiber.HeaderRetryAfter, "5")
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "busy",
			Message: "The model is busy, try again shortly.",
		})
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Error("Question timed out", "timeout", h.askTimeout.String(), "error", err)
		return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{
			Error:   "timeout",
			Message: "The model did not answer in time.",
		})
	default:
		h.logger.Error("Question failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "upstream_failure",
			Message: "Failed to generate an answer.",
		})
	}
}

// History lists every answered question in insertion order.
func (h *Handlers) History(c *fiber.Ctx) error {
	entries, err := h.history.ListAll(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to fetch history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "upstream_failure",
			Message: "Error fetching history.",
		})
	}
	return c.JSON(toHistoryEntries(entries))
}
