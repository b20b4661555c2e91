package jwt

import (
	"errors"
	"testing"
	"time"

	"jobportal/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = models.User{
	ID:       "5f1c7c8e-2f7a-4c1b-9a43-0c2f8d1e9b10",
	Email:    "a@x.com",
	FullName: "Ann Example",
}

func newIssuer(t *testing.T) *Issuer {
	t.Helper()

	iss, err := New("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
	require.NoError(t, err)

	return iss
}

func TestNew_MissingSecret(t *testing.T) {
	_, err := New("", "refresh", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = New("access", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = New("access", "refresh", 0, time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	iss := newIssuer(t)

	tok, err := iss.NewAccessToken(testUser)
	require.NoError(t, err)

	claims, err := iss.ParseAccessToken(tok)
	require.NoError(t, err)

	assert.Equal(t, testUser.ID, claims.Subject)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, testUser.FullName, claims.FullName)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	iss := newIssuer(t)

	tok, err := iss.NewRefreshToken(testUser)
	require.NoError(t, err)

	sub, err := iss.ParseRefreshToken(tok)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, sub)
}

func TestTokens_AreUniquePerIssue(t *testing.T) {
	iss := newIssuer(t)

	a, err := iss.NewRefreshToken(testUser)
	require.NoError(t, err)

	b, err := iss.NewRefreshToken(testUser)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	iss := newIssuer(t)

	access, err := iss.NewAccessToken(testUser)
	require.NoError(t, err)

	refresh, err := iss.NewRefreshToken(testUser)
	require.NoError(t, err)

	_, err = iss.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	iss := newIssuer(t)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := iss.NewAccessToken(testUser)
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParse_Malformed(t *testing.T) {
	iss := newIssuer(t)

	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := iss.ParseAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestParse_WrongAlgorithm(t *testing.T) {
	iss := newIssuer(t)

	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   testUser.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_MissingSubject(t *testing.T) {
	iss := newIssuer(t)

	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
