package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/smart-ai/domain/user"
	"github.com/go-monolith/mono/pkg/types"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong password alike.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInvalidInput is returned when username or password is blank.
	ErrInvalidInput = errors.New("username and password are required")
	// ErrStoreTimeout is returned when a storage call exceeds its deadline.
	ErrStoreTimeout = errors.New("credential store timed out")
)

// Service handles registration, login and token validation.
type Service struct {
	store        UserStore
	hasher       *PasswordHasher
	issuer       *TokenIssuer
	verifier     *TokenVerifier
	storeTimeout time.Duration
	logger       types.Logger
}

// NewService creates a new Service.
func NewService(
	store UserStore,
	hasher *PasswordHasher,
	issuer *TokenIssuer,
	verifier *TokenVerifier,
	storeTimeout time.Duration,
	logger types.Logger,
) *Service {
	return &Service{
		store:        store,
		hasher:       hasher,
		issuer:       issuer,
		verifier:     verifier,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// Register creates a new account. No token is issued.
//
// The lookup before hashing only saves a bcrypt round for an obvious
// conflict; the store's unique constraint is what decides a race.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.findByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.store.Create(storeCtx, username, passwordHash)
	if err != nil {
		return nil, s.storeError(storeCtx, err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and mints an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.VerifyMissing(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// ValidateToken verifies a presented token. The rejection reason is logged,
// the caller only ever sees ErrInvalidToken.
func (s *Service) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Warn("Token rejected", "reason", RejectionReason(err), "error", err)
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenTTL returns the lifetime of tokens minted by Login.
func (s *Service) TokenTTL() time.Duration {
	return s.issuer.TTL()
}

func (s *Service) findByUsername(ctx context.Context, username string) (*domain.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.store.FindByUsername(storeCtx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, s.storeError(storeCtx, err)
	}
	return user, nil
}

// storeError classifies a failed store call. Failed calls are never retried.
func (s *Service) storeError(ctx context.Context, err error) error {
	if errors.Is(err, ErrUsernameTaken) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Error("Credential store timed out", "timeout", s.storeTimeout, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}
	s.logger.Error("Credential store failed", "error", err)
	return err
}
