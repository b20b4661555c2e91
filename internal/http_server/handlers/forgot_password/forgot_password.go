package forgotPassword

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobportal/internal/http_server/apierr"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetRequester interface {
	ForgotPassword(ctx context.Context, email string) error
}

func New(log *slog.Logger, validate *validator.Validate, requester ResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.forgot_password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("Failed to decode request body", sl.Err(err))
			apierr.BadRequest(w, r, "Failed to decode request")

			return
		}

		if err := validate.Struct(req); err != nil {
			log.Info("Invalid request", sl.Err(err))
			apierr.Validation(w, r, err)

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := requester.ForgotPassword(ctx, strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK("Password reset link sent to your email"))
	}
}
