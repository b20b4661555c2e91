package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/cookies"
	"jobportal/internal/models"

	"github.com/go-chi/chi/middleware"
)

type ctxKey struct{}

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.PublicUser, error)
}

// New rejects requests without a valid access token and attaches the
// resolved user to the request context.
func New(log *slog.Logger, authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn"

			user, err := authenticator.Authenticate(r.Context(), token(r))
			if err != nil {
				apierr.Render(w, r, log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				), err)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

// token prefers a non-empty Bearer header over the cookie.
func token(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if t, ok := strings.CutPrefix(h, "Bearer "); ok {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}

	return cookies.Value(r, cookies.AccessToken)
}

func WithUser(ctx context.Context, user models.PublicUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (models.PublicUser, bool) {
	user, ok := ctx.Value(ctxKey{}).(models.PublicUser)
	return user, ok
}
