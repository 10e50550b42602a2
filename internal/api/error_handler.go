package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/righthome/cosmos-api/internal/core/domain"
)

// errorResponse is the canonical error envelope: every response carries a
// success flag and a human-readable message.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "please fill all required fields"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "email is already verified"
	case errors.Is(err, domain.ErrVerificationNeeded):
		return http.StatusBadRequest, "email change requires verification"
	case errors.Is(err, domain.ErrNotAdmin):
		return http.StatusBadRequest, "user is not an administrator"
	case errors.Is(err, domain.ErrAlreadyAdmin):
		return http.StatusBadRequest, "user is already an administrator"
	case errors.Is(err, domain.ErrInvalidProjectType):
		return http.StatusBadRequest, "invalid project type"
	case errors.Is(err, domain.ErrInvalidConsultationStatus):
		return http.StatusBadRequest, "invalid consultation status"
	case errors.Is(err, domain.ErrInvalidService):
		return http.StatusBadRequest, "invalid service category"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusForbidden, "please verify your email first"
	case errors.Is(err, domain.ErrLastAdmin):
		return http.StatusForbidden, "cannot remove the last administrator"
	case errors.Is(err, domain.ErrSelfDeletion):
		return http.StatusForbidden, "you cannot delete your own account"
	case errors.Is(err, domain.ErrSelfDemotion):
		return http.StatusForbidden, "you cannot demote yourself"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrConsultationNotFound):
		return http.StatusNotFound, "consultation not found"
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound, "project image not found"
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "email is already in use"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many login attempts, try again later"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
