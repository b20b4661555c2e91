package cookies

import (
	"net/http"
	"strings"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/models"
)

const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
)

// Manager writes the session cookies with the configured security flags.
// Cookie lifetimes follow the token TTLs.
type Manager struct {
	secure     bool
	sameSite   http.SameSite
	domain     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg config.Cookies, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secure:     cfg.Secure,
		sameSite:   parseSameSite(cfg.SameSite),
		domain:     cfg.Domain,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *Manager) SetTokens(w http.ResponseWriter, pair models.TokenPair) {
	m.set(w, AccessToken, pair.AccessToken, m.accessTTL)
	m.set(w, RefreshToken, pair.RefreshToken, m.refreshTTL)
}

// Clear expires both session cookies.
func (m *Manager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessToken, RefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   m.domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: m.sameSite,
		})
	}
}

func (m *Manager) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
}

// Value returns the named cookie or "" when it is absent.
func Value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}

	return c.Value
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
