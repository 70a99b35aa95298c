package stub

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hasher wraps bcrypt with an injectable cost so tests can use the minimum
// (cost 4) instead of paying ~250ms per hash.
type hasher struct {
	cost int
}

func newHasher(cost int) *hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &hasher{cost: cost}
}

func (h *hasher) hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		// bcrypt silently truncates beyond 72 bytes; reject instead.
		return "", errors.New("stub: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("stub: hashing password: %w", err)
	}
	return string(hashed), nil
}

func (h *hasher) verify(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return errors.New("stub: invalid password")
	}
	return nil
}
