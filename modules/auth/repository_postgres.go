package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/smart-ai/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const usersSchema = `
create table if not exists users (
	id bigserial primary key,
	username text not null unique,
	password_hash text not null,
	created_at timestamptz not null default now()
)`

// PostgresUserStore is a UserStore backed by a pgx connection pool.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

var _ UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore connects to databaseURL, pings it and ensures the users table exists.
func NewPostgresUserStore(ctx context.Context, databaseURL string) (*PostgresUserStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if _, err := pool.Exec(connectCtx, usersSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}

	return &PostgresUserStore{pool: pool}, nil
}

// Create inserts a user; a unique violation maps to ErrUsernameTaken.
func (s *PostgresUserStore) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	var out domain.User
	err := s.pool.QueryRow(ctx, `
		insert into users (username, password_hash)
		values ($1, $2)
		returning id, username, password_hash, created_at
	`, username, passwordHash).Scan(
		&out.ID,
		&out.Username,
		&out.PasswordHash,
		&out.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &out, nil
}

// FindByUsername looks up a user by exact username.
func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		select id, username, password_hash, created_at
		from users
		where username = $1
	`, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// Ping checks pool connectivity.
func (s *PostgresUserStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresUserStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
