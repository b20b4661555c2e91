package logout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/auth"
	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/cookies"
	"jobportal/internal/http_server/middleware/authn"
	resp "jobportal/internal/lib/api/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type UserLogouter interface {
	Logout(ctx context.Context, userID string) error
}

func New(log *slog.Logger, logouter UserLogouter, cookieManager *cookies.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			apierr.Render(w, r, log, auth.ErrNoToken)

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := logouter.Logout(ctx, user.ID); err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		cookieManager.Clear(w)

		log.Info("User logged out", slog.String("id", user.ID))

		render.JSON(w, r, resp.OK("Logged out successfully"))
	}
}
