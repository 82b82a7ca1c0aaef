package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_Create(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, "alice", "hash-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Create() did not assign an ID")
	}

	second, err := repo.Create(ctx, "bob", "hash-2")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second.ID <= user.ID {
		t.Errorf("second ID = %d, want greater than %d", second.ID, user.ID)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "alice", "hash-1"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := repo.Create(ctx, "alice", "hash-2")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrUsernameTaken)
	}

	found, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found.PasswordHash != "hash-1" {
		t.Errorf("PasswordHash = %v, want original %v", found.PasswordHash, "hash-1")
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", "hash-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("existing user", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("FindByUsername() error = %v", err)
		}
		if found.ID != created.ID {
			t.Errorf("ID = %v, want %v", found.ID, created.ID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "bob")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByUsername() error = %v, want %v", err, ErrUserNotFound)
		}
	})
}

func TestUserRepository_CanceledContext(t *testing.T) {
	repo := setupTestRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Create(ctx, "alice", "hash"); err == nil {
		t.Error("Create() with canceled context error = nil, want error")
	}
}

func TestUserRepository_Ping(t *testing.T) {
	repo := setupTestRepository(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
