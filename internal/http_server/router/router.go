package router

import (
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/http_server/cookies"
	changePassword "jobportal/internal/http_server/handlers/change_password"
	forgotPassword "jobportal/internal/http_server/handlers/forgot_password"
	"jobportal/internal/http_server/handlers/login"
	"jobportal/internal/http_server/handlers/logout"
	"jobportal/internal/http_server/handlers/me"
	"jobportal/internal/http_server/handlers/refresh"
	"jobportal/internal/http_server/handlers/register"
	resetPassword "jobportal/internal/http_server/handlers/reset_password"
	validateResetToken "jobportal/internal/http_server/handlers/validate_reset_token"
	"jobportal/internal/http_server/middleware/authn"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// Service is everything the HTTP surface needs from the auth service.
type Service interface {
	authn.Authenticator
	register.UserRegisterer
	login.UserLoginer
	logout.UserLogouter
	refresh.TokenRefresher
	changePassword.PasswordChanger
	forgotPassword.ResetRequester
	resetPassword.PasswordResetter
	validateResetToken.TokenValidator
}

// New builds the /user routes. requestTimeout caps the context of every
// handler; handlers may set shorter deadlines of their own.
func New(
	log *slog.Logger,
	svc Service,
	cookieManager *cookies.Manager,
	corsCfg config.CORS,
	requestTimeout time.Duration,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", register.New(log, validate, svc, cookieManager))
		r.Post("/login", login.New(log, validate, svc, cookieManager))
		r.Post("/refresh-token", refresh.New(log, svc, cookieManager))
		r.Post("/forgot-password", forgotPassword.New(log, validate, svc))
		r.Post("/reset-password", resetPassword.New(log, validate, svc))
		r.Get("/validate-reset-token", validateResetToken.New(log, svc))

		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, svc))

			r.Post("/logout", logout.New(log, svc, cookieManager))
			r.Post("/change-password", changePassword.New(log, validate, svc))
			r.Get("/me", me.New(log))
		})
	})

	return r
}
