package auth

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/smart-ai/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Reasons a token was rejected. They are meant for server logs only.
const (
	ReasonMalformed = "malformed"
	ReasonSignature = "signature"
	ReasonExpired   = "expired"
	ReasonClaims    = "claims"
)

// TokenError carries the rejection reason alongside ErrInvalidToken.
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid token (%s): %v", e.Reason, e.Err)
}

// Is makes errors.Is(err, ErrInvalidToken) hold for every TokenError.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// RejectionReason extracts the rejection reason from a verification error.
func RejectionReason(err error) string {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Reason
	}
	return ""
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	// ClockSkew is the leeway allowed on expiry checks. Zero means none.
	ClockSkew time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (c JWTConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// TokenIssuer mints HS256 access tokens.
type TokenIssuer struct {
	config JWTConfig
	key    []byte
}

// NewTokenIssuer creates a TokenIssuer. The key is copied once and never mutated.
func NewTokenIssuer(config JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		config: config,
		key:    []byte(config.SecretKey),
	}
}

// TTL returns the default token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.config.AccessTokenTTL
}

// Issue mints a token for subject using the configured TTL.
func (i *TokenIssuer) Issue(subject string) (*domain.AccessToken, error) {
	return i.IssueWithTTL(subject, i.config.AccessTokenTTL)
}

// IssueWithTTL mints a token for subject that expires ttl from now.
// A negative ttl produces a token that is already expired.
func (i *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (*domain.AccessToken, error) {
	now := i.config.now()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.AccessToken{
		Token:     signed,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// TokenVerifier checks signature and expiry of presented tokens.
type TokenVerifier struct {
	key    []byte
	parser *jwt.Parser
}

// NewTokenVerifier creates a TokenVerifier sharing the issuer's secret.
func NewTokenVerifier(config JWTConfig) *TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(config.now),
	}
	if config.ClockSkew > 0 {
		opts = append(opts, jwt.WithLeeway(config.ClockSkew))
	}

	return &TokenVerifier{
		key:    []byte(config.SecretKey),
		parser: jwt.NewParser(opts...),
	}
}

// Verify validates the token and returns its claims. Every failure satisfies
// errors.Is(err, ErrInvalidToken); RejectionReason tells the cases apart.
func (v *TokenVerifier) Verify(tokenString string) (*domain.Claims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, &TokenError{Reason: classify(err), Err: err}
	}
	if !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, &TokenError{Reason: ReasonClaims, Err: errors.New("missing subject or expiry")}
	}

	return &domain.Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonClaims
	}
}
