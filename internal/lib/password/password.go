package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes is the longest input bcrypt accepts.
const MaxBytes = 72

var ErrTooLong = errors.New("password is longer than 72 bytes")

// Hash returns a salted bcrypt hash of plain.
func Hash(plain string) ([]byte, error) {
	const op = "password.Hash"

	if len(plain) > MaxBytes {
		return nil, ErrTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hash, nil
}

// Verify reports whether plain matches hash. A wrong password is
// (false, nil); an error means the stored hash itself is unusable.
func Verify(hash []byte, plain string) (bool, error) {
	const op = "password.Verify"

	err := bcrypt.CompareHashAndPassword(hash, []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}
