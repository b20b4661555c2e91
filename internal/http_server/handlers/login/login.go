package login

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/cookies"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=student recruiter"`
}

type Response struct {
	resp.Response
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

type UserLoginer interface {
	Login(ctx context.Context, identifier, password string, role models.Role) (models.User, models.TokenPair, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	loginer UserLoginer,
	cookieManager *cookies.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

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

		identifier := strings.TrimSpace(req.Identifier)
		if strings.Contains(identifier, "@") {
			identifier = strings.ToLower(identifier)
		}

		user, pair, err := loginer.Login(ctx, identifier, req.Password, models.Role(req.Role))
		if err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		log.Info("User logged in successfully", slog.String("id", user.ID))

		cookieManager.SetTokens(w, pair)

		render.JSON(w, r, Response{
			Response:     resp.OK("Logged in successfully"),
			User:         user.Public(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	}
}
