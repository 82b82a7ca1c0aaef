package history

import (
	"context"
	"fmt"

	domain "github.com/example/smart-ai/domain/history"
	"gorm.io/gorm"
)

// Repository is the append-only question/answer log.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores a question/answer pair and returns it with its assigned ID.
func (r *Repository) Append(ctx context.Context, question, answer string) (*domain.Entry, error) {
	entry := &domain.Entry{
		Question: question,
		Answer:   answer,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}
	return entry, nil
}

// ListAll returns every entry in insertion order.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Entry{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
