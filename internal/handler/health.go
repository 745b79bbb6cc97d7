package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/arvield/cloudnotes/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service and its dependencies are
// usable. The deployment platform probes this endpoint to decide if an
// instance should receive traffic.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler{server: s}}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Status checks the database pool and the object store. Any failing
// dependency turns the response into a 503 so the platform stops
// routing to this instance.
func (h *HealthHandler) Status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{
		Status: "ok",
		Checks: map[string]string{},
	}
	status := http.StatusOK

	if err := h.server.DB.Pool.Ping(ctx); err != nil {
		resp.Checks["database"] = err.Error()
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = "ok"
	}

	if err := h.server.Store.Check(ctx); err != nil {
		resp.Checks["storage"] = err.Error()
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["storage"] = "ok"
	}

	return c.JSON(status, resp)
}
