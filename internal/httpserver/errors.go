package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/service"
)

// fail logs a handler failure and converts a service error into an HTTP
// error. Upstream and persistence messages are passed through.
func fail(l *slog.Logger, event string, err error) error {
	status, reason := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", reason, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", reason, "error", err)
	}
	return echo.NewHTTPError(status, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusInternalServerError, "upstream"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
