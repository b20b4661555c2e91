package jwt

import (
	"errors"
	"fmt"
	"time"

	"jobportal/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret = errors.New("token signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// AccessClaims identify the user on every authenticated request.
type AccessClaims struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the user id only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	parser        *jwt.Parser
	now           func() time.Time
}

func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	const op = "jwt.New"

	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSecret)
	}

	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("%s: token ttl must be positive", op)
	}

	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) NewAccessToken(user models.User) (string, error) {
	const op = "jwt.NewAccessToken"

	claims := AccessClaims{
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: i.registered(user.ID, i.accessTTL),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (i *Issuer) NewRefreshToken(user models.User) (string, error) {
	const op = "jwt.NewRefreshToken"

	claims := RefreshClaims{
		RegisteredClaims: i.registered(user.ID, i.refreshTTL),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Every failure collapses to ErrInvalidToken.
func (i *Issuer) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	if err := i.parse(tokenStr, claims, i.accessSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

// ParseRefreshToken verifies a refresh token and returns its subject.
func (i *Issuer) ParseRefreshToken(tokenStr string) (string, error) {
	claims := &RefreshClaims{}

	if err := i.parse(tokenStr, claims, i.refreshSecret); err != nil {
		return "", err
	}

	return claims.Subject, nil
}

func (i *Issuer) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	const op = "jwt.parse"

	token, err := i.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if !token.Valid {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%s: %w: missing sub claim", op, ErrInvalidToken)
	}

	return nil
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()

	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
}
