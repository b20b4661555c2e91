package resetPassword

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/http_server/apierr"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPass string) error
}

func New(log *slog.Logger, validate *validator.Validate, resetter PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reset_password.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := resetter.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK("Password reset successfully"))
	}
}
