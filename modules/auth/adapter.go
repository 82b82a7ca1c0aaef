package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/smart-ai/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort is what other modules use to reach auth functionality.
type AuthPort interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.AccessToken, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthAdapter implements AuthPort using the service container.
// Response codes are translated back to this package's sentinel errors.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, username, password string) (*domain.User, error) {
	req := RegisterRequest{Username: username, Password: password}
	var resp RegisterResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"register",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}

	switch resp.Error {
	case "":
		return &domain.User{ID: resp.ID, Username: resp.Username}, nil
	case CodeUsernameTaken:
		return nil, ErrUsernameTaken
	case CodeInvalidInput:
		return nil, ErrInvalidInput
	default:
		return nil, fmt.Errorf("register failed: %s", resp.Error)
	}
}

// Login exchanges credentials for an access token.
func (a *AuthAdapter) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp LoginResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"login",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	switch resp.Error {
	case "":
		return &domain.AccessToken{
			Token:     resp.AccessToken,
			TokenType: resp.TokenType,
			ExpiresAt: resp.ExpiresAt,
		}, nil
	case CodeInvalidCredentials:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("login failed: %s", resp.Error)
	}
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		Subject:   resp.Subject,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
