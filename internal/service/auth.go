package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arvield/cloudnotes/internal/auth"
	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/repository"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuthService verifies credentials and issues session tokens. It also
// carries the administrative-account bootstrap used by the
// createsuperuser job.
type AuthService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewAuthService(s *server.Server, repos *repository.Repositories) *AuthService {
	return &AuthService{server: s, repos: repos}
}

// Login checks a username/password pair and returns a signed session
// token. Unknown user and wrong password return the same error so the
// response does not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	invalid := errs.NewUnauthorizedError("Invalid username or password", false)

	user, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", invalid
		}
		return "", err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", invalid
	}

	token, err := auth.IssueToken(
		s.server.Config.SecretKey,
		user.ID.String(),
		user.Username,
		user.IsSuperuser,
		time.Now(),
	)
	if err != nil {
		return "", err
	}

	return token, nil
}

// EnsureSuperuser creates the administrative account, or resets its
// password if it already exists. The job may run any number of times;
// it always converges on the configured credentials.
func (s *AuthService) EnsureSuperuser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("superuser name and password must be configured")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing superuser password: %w", err)
	}

	existing, err := s.repos.Users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		s.server.Logger.Info().Str("username", username).Msg("superuser exists, resetting credentials")
		return s.repos.Users.UpdateCredentials(ctx, existing.ID, hash, true)

	case errors.Is(err, pgx.ErrNoRows):
		s.server.Logger.Info().Str("username", username).Msg("creating superuser")
		return s.repos.Users.Create(ctx, repository.User{
			ID:           uuid.New(),
			Username:     username,
			PasswordHash: hash,
			IsSuperuser:  true,
		})

	default:
		return err
	}
}
