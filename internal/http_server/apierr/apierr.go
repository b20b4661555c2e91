// Package apierr is the single place where service errors become HTTP
// responses.
package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"jobportal/internal/auth"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type mapping struct {
	err    error
	status int
}

// Order matters: specific errors precede the ones they wrap.
var known = []mapping{
	{auth.ErrRefreshTokenRequired, http.StatusBadRequest},
	{auth.ErrInvalidResetToken, http.StatusBadRequest},
	{auth.ErrInvalidRole, http.StatusBadRequest},
	{auth.ErrPasswordTooLong, http.StatusBadRequest},
	{auth.ErrEmailTaken, http.StatusBadRequest},
	{auth.ErrPhoneTaken, http.StatusBadRequest},
	{auth.ErrUserExists, http.StatusBadRequest},

	{auth.ErrNoToken, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrSessionUserNotFound, http.StatusUnauthorized},
	{auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{auth.ErrRefreshTokenSuperseded, http.StatusUnauthorized},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrIncorrectPassword, http.StatusUnauthorized},

	{auth.ErrUserNotFound, http.StatusNotFound},

	{auth.ErrEmailDelivery, http.StatusInternalServerError},
}

// Status reports the HTTP status and client-facing message for err.
// Unknown errors map to 500 with a generic message.
func Status(err error) (int, string) {
	for _, m := range known {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}

	return http.StatusInternalServerError, "Internal error"
}

// Render writes err as {"success":false,...}. Server errors are logged
// with their details, which never reach the client.
func Render(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, msg := Status(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, resp.Error(msg))
}

// BadRequest renders a 400 with msg.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, resp.Error(msg))
}

// Validation renders validator failures field by field.
func Validation(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		BadRequest(w, r, "Invalid request")
		return
	}

	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, resp.ValidationError(verrs))
}
