package me

import (
	"log/slog"
	"net/http"

	"jobportal/internal/auth"
	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/middleware/authn"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	User models.PublicUser `json:"user"`
}

func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			apierr.Render(w, r, log.With(
				slog.String("op", "handlers.me.New"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			), auth.ErrNoToken)

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(""),
			User:     user,
		})
	}
}
