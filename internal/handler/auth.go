package handler

import (
	"net/http"

	"github.com/arvield/cloudnotes/internal/auth"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/arvield/cloudnotes/internal/service"
	"github.com/arvield/cloudnotes/internal/validation"
	"github.com/labstack/echo/v4"
)

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	Handler
	services *service.Services
}

func NewAuthHandler(s *server.Server, services *service.Services) *AuthHandler {
	return &AuthHandler{Handler{server: s}, services}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

type loginResponse struct {
	Username string `json:"username"`
}

// Login verifies credentials and sets the session cookie.
//
// The token travels in an HTTP-only cookie rather than the response
// body, so browser scripts never see it.
func (h *AuthHandler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := validation.BindAndValidate(c, req); err != nil {
		return err
	}

	token, err := h.services.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   !h.server.Config.Debug,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResponse{Username: req.Username})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}
