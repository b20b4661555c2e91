package changePassword

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/auth"
	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/middleware/authn"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID, oldPass, newPass string) error
}

func New(log *slog.Logger, validate *validator.Validate, changer PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.change_password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			apierr.Render(w, r, log, auth.ErrNoToken)

			return
		}

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

		if err := changer.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		render.JSON(w, r, resp.OK("Password changed successfully"))
	}
}
