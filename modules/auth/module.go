package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/smart-ai/database"
	domain "github.com/example/smart-ai/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

var errNotStarted = errors.New("auth module not started")

// Config configures the auth module.
type Config struct {
	JWT          JWTConfig
	BcryptCost   int
	DBPath       string
	DatabaseURL  string
	StoreTimeout time.Duration
}

// AuthModule provides registration, login and token validation. The HTTP
// layer calls it directly through AuthPort; other modules can use the
// request-reply services via AuthAdapter.
type AuthModule struct {
	config  Config
	store   UserStore
	service *Service
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)
var _ AuthPort = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(config Config, logger types.Logger) *AuthModule {
	return &AuthModule{
		config: config,
		logger: logger,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the credential store and builds the auth service.
func (m *AuthModule) Start(ctx context.Context) error {
	if m.config.JWT.SecretKey == "" {
		return errors.New("signing key is not configured")
	}

	store, err := m.openStore(ctx)
	if err != nil {
		return err
	}
	m.store = store

	hasher := NewPasswordHasher(m.config.BcryptCost)
	m.service = NewService(
		store,
		hasher,
		NewTokenIssuer(m.config.JWT),
		NewTokenVerifier(m.config.JWT),
		m.config.StoreTimeout,
		m.logger,
	)

	m.logger.Info("Auth module started",
		"store", m.storeKind(),
		"bcrypt_cost", hasher.Cost(),
		"token_ttl", m.config.JWT.AccessTokenTTL.String())
	return nil
}

// Stop closes the credential store.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			m.logger.Warn("Failed to close credential store", "error", err)
		}
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "credential store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("credential store ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"store": m.storeKind(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info("Registered services", "services", []string{"register", "login", "validate-token"})
	return nil
}

// Register creates an account. It runs on the caller's goroutine, so a slow
// hash never queues behind other auth requests.
func (m *AuthModule) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if m.service == nil {
		return nil, errNotStarted
	}
	return m.service.Register(ctx, username, password)
}

// Login exchanges credentials for an access token.
func (m *AuthModule) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	if m.service == nil {
		return nil, errNotStarted
	}
	return m.service.Login(ctx, username, password)
}

// ValidateToken verifies an access token.
func (m *AuthModule) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	if m.service == nil {
		return nil, errNotStarted
	}
	return m.service.ValidateToken(ctx, token)
}

func (m *AuthModule) openStore(ctx context.Context) (UserStore, error) {
	if m.config.DatabaseURL != "" {
		store, err := NewPostgresUserStore(ctx, m.config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres credential store: %w", err)
		}
		return store, nil
	}

	db, err := database.OpenSQLite(m.config.DBPath, database.Options{}, &domain.User{})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return NewUserRepository(db), nil
}

func (m *AuthModule) storeKind() string {
	if m.config.DatabaseURL != "" {
		return "postgres"
	}
	return "sqlite:" + m.config.DBPath
}

// handleRegister handles user registration. Domain failures are reported in
// the response; only infrastructure failures are returned as errors.
func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		return RegisterResponse{ID: user.ID, Username: user.Username}, nil
	case errors.Is(err, ErrUsernameTaken):
		return RegisterResponse{Error: CodeUsernameTaken}, nil
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPasswordTooLong):
		return RegisterResponse{Error: CodeInvalidInput}, nil
	default:
		m.logger.Error("Registration failed", "error", err)
		return RegisterResponse{}, err
	}
}

// handleLogin handles user login.
func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	token, err := m.service.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		return LoginResponse{
			AccessToken: token.Token,
			TokenType:   token.TokenType,
			ExpiresAt:   token.ExpiresAt,
		}, nil
	case errors.Is(err, ErrInvalidCredentials):
		return LoginResponse{Error: CodeInvalidCredentials}, nil
	default:
		m.logger.Error("Login failed", "error", err)
		return LoginResponse{}, err
	}
}

// handleValidateToken handles token validation.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{
			Valid: false,
			Error: CodeInvalidToken,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:     true,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
