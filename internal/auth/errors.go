package auth

import (
	"errors"
	"fmt"
)

var (
	ErrNoToken                = errors.New("unauthenticated: no token")
	ErrInvalidToken           = errors.New("unauthenticated: invalid token")
	ErrSessionUserNotFound    = errors.New("unauthenticated: user not found")
	ErrRefreshTokenRequired   = errors.New("refresh token required")
	ErrInvalidRefreshToken    = errors.New("unauthenticated: invalid refresh token")
	ErrRefreshTokenSuperseded = errors.New("unauthenticated: refresh token expired or superseded")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrIncorrectPassword      = errors.New("old password is incorrect")
	ErrInvalidRole            = errors.New("role must be student or recruiter")
	ErrPasswordTooLong        = errors.New("password must be at most 72 bytes")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidResetToken      = errors.New("invalid or expired token")
	ErrEmailDelivery          = errors.New("email delivery failed")

	ErrUserExists = errors.New("user already exists")
	ErrEmailTaken = fmt.Errorf("%w: email is already registered", ErrUserExists)
	ErrPhoneTaken = fmt.Errorf("%w: phone number is already registered", ErrUserExists)
)
