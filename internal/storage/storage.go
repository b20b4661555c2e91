package storage

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrEmailTaken         = fmt.Errorf("%w: email is already registered", ErrUserExists)
	ErrPhoneTaken         = fmt.Errorf("%w: phone number is already registered", ErrUserExists)
	ErrUserNotFound       = errors.New("user not found")
	ErrRefreshTokenStale  = errors.New("refresh token was replaced")
	ErrResetTokenNotFound = errors.New("reset token not found or expired")
	ErrCacheMiss          = errors.New("cache miss")
)
