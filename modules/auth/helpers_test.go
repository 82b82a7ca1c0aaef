package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/example/smart-ai/database"
	domain "github.com/example/smart-ai/domain/user"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/crypto/bcrypt"
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

// setupTestRepository opens a file-backed SQLite store in a temp dir.
func setupTestRepository(t *testing.T) *UserRepository {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "users.db"), database.Options{}, &domain.User{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo := NewUserRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// newTestService wires a Service over store with the cheapest bcrypt cost.
func newTestService(store UserStore) *Service {
	config := testJWTConfig()
	return NewService(
		store,
		NewPasswordHasher(bcrypt.MinCost),
		NewTokenIssuer(config),
		NewTokenVerifier(config),
		time.Second,
		&nopLogger{},
	)
}
