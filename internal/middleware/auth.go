package middleware

import (
	"net/http"

	"github.com/arvield/cloudnotes/internal/auth"
	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/labstack/echo/v4"
)

// UserSuperuserKey is the echo context key holding whether the
// authenticated user is a superuser.
const UserSuperuserKey = "user_superuser"

// AuthMiddleware authenticates requests from the session cookie.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{server: s}
}

// Authenticate parses and verifies the session token from the request
// cookie and attaches the user identity to the echo context. Requests
// without a valid session are rejected with 401.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				return errs.NewUnauthorizedError("Authentication required", false)
			}

			claims, err := auth.ParseToken(m.server.Config.SecretKey, cookie.Value)
			if err != nil {
				// Expired or tampered token. Clear the cookie so the
				// client does not keep retrying with it.
				c.SetCookie(&http.Cookie{
					Name:     auth.SessionCookie,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				return errs.NewUnauthorizedError("Invalid or expired session", false)
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserNameKey, claims.Username)
			c.Set(UserSuperuserKey, claims.Superuser)

			return next(c)
		}
	}
}
