package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/cookies"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	RefreshToken string `json:"refreshToken"`
}

type Response struct {
	resp.Response
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error)
}

// New reads the refresh token from the refreshToken cookie, falling back
// to the JSON body. An empty body is allowed.
func New(log *slog.Logger, refresher TokenRefresher, cookieManager *cookies.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := cookies.Value(r, cookies.RefreshToken)

		if token == "" {
			var req Request

			if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
				log.Info("Failed to decode request body", sl.Err(err))
				apierr.BadRequest(w, r, "Failed to decode request")

				return
			}

			token = req.RefreshToken
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, pair, err := refresher.Refresh(ctx, token)
		if err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		log.Info("Tokens refreshed successfully", slog.String("id", user.ID))

		cookieManager.SetTokens(w, pair)

		render.JSON(w, r, Response{
			Response:     resp.OK("Access token refreshed"),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	}
}
