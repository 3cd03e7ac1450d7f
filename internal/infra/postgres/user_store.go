package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"atelier-learning-service/internal/domain"
)

// UserStore persists accounts.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `INSERT INTO users (id, email, display_name, password_hash, is_premium)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.Premium).Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	user.CreatedAt = createdAt
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx, `SELECT id, email, display_name, password_hash, is_premium, created_at
		FROM users WHERE email=$1`, email).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.Premium, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
