package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// GetUserByEmail loads one user account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, hashed_password, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a user account with an already-hashed password.
func (s *Store) CreateUser(ctx context.Context, name, email, hashedPassword string) (*models.User, error) {
	u := models.User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, hashed_password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.HashedPassword,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}
