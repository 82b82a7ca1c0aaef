package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/smart-ai/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
)

// UserStore persists user records. Create must fail with ErrUsernameTaken
// when the storage layer's unique constraint rejects the username.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Ping(ctx context.Context) error
	Close() error
}

// UserRepository is the GORM-backed UserStore.
type UserRepository struct {
	db *gorm.DB
}

var _ UserStore = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
// The db handle should be opened with TranslateError enabled.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a user. Uniqueness is enforced by the username index.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	user := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByUsername finds a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", result.Error)
	}
	return &user, nil
}

// Ping checks the database connection.
func (r *UserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database connection.
func (r *UserRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for handles opened without TranslateError.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
