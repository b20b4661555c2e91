package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// HexToken returns n random bytes encoded as a 2n-character hex string.
func HexToken(n int) (string, error) {
	const op = "random.HexToken"

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(b), nil
}
