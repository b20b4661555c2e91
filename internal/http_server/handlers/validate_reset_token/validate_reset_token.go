package validateResetToken

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/http_server/apierr"
	resp "jobportal/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Valid bool `json:"valid"`
}

type TokenValidator interface {
	ValidateResetToken(ctx context.Context, token string) error
}

// New checks ?token= without consuming it.
func New(log *slog.Logger, validator TokenValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.validate_reset_token.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := validator.ValidateResetToken(ctx, r.URL.Query().Get("token")); err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK("Token is valid"),
			Valid:    true,
		})
	}
}
