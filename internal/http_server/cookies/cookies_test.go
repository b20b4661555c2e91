package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byName(cs []*http.Cookie) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie, len(cs))
	for _, c := range cs {
		out[c.Name] = c
	}
	return out
}

func TestSetTokens(t *testing.T) {
	m := New(config.Cookies{Secure: true, SameSite: "None"}, 15*time.Minute, 240*time.Hour)
	rec := httptest.NewRecorder()

	m.SetTokens(rec, models.TokenPair{AccessToken: "a", RefreshToken: "r"})

	got := byName(rec.Result().Cookies())
	require.Contains(t, got, AccessToken)
	require.Contains(t, got, RefreshToken)

	access := got[AccessToken]
	assert.Equal(t, "a", access.Value)
	assert.Equal(t, 900, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	assert.Equal(t, "/", access.Path)

	assert.Equal(t, 240*3600, got[RefreshToken].MaxAge)
}

func TestClear(t *testing.T) {
	m := New(config.Cookies{}, time.Minute, time.Hour)
	rec := httptest.NewRecorder()

	m.Clear(rec)

	got := byName(rec.Result().Cookies())
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, Value(r, RefreshToken))

	r.AddCookie(&http.Cookie{Name: RefreshToken, Value: "tok"})
	assert.Equal(t, "tok", Value(r, RefreshToken))
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("strict"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("bogus"))
}
