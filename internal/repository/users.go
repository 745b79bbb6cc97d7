package repository

import (
	"context"
	"fmt"

	"github.com/arvield/cloudnotes/internal/server"
	"github.com/google/uuid"
)

// UsersRepository persists User rows.
type UsersRepository struct {
	server *server.Server
}

func NewUsersRepository(s *server.Server) *UsersRepository {
	return &UsersRepository{server: s}
}

const userColumns = "id, username, password_hash, is_superuser, created_at"

// GetByUsername fetches a user by username. Returns pgx.ErrNoRows
// (wrapped) when no such user exists.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.server.DB.Pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("fetching user by username: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by primary key.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := r.server.DB.Pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("fetching user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new user row.
func (r *UsersRepository) Create(ctx context.Context, u User) error {
	_, err := r.server.DB.Pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, is_superuser)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, u.IsSuperuser,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// UpdateCredentials replaces a user's password hash and superuser flag.
// Used by the bootstrap job to make repeated runs converge on the
// configured state instead of failing on the unique username.
func (r *UsersRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, passwordHash string, superuser bool) error {
	_, err := r.server.DB.Pool.Exec(ctx,
		"UPDATE users SET password_hash = $2, is_superuser = $3 WHERE id = $1",
		id, passwordHash, superuser,
	)
	if err != nil {
		return fmt.Errorf("updating user credentials: %w", err)
	}
	return nil
}
