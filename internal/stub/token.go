package stub

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "blogstub"

// tokenService issues and validates the HS256 tokens the stub hands out on
// login. The payload carries the same identity claims the real platform
// embeds (userId, username), so a client can resolve identity from the
// credential alone.
type tokenService struct {
	secret []byte
	ttl    time.Duration
}

func newTokenService(secret string, ttl time.Duration) (*tokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("stub: token secret must be at least 16 characters")
	}
	return &tokenService{secret: []byte(secret), ttl: ttl}, nil
}

type identityClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *tokenService) issue(userID, username, role string) (string, error) {
	now := time.Now()
	claims := identityClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("stub: signing token: %w", err)
	}
	return signed, nil
}

// validate verifies a token and returns the user id it names.
func (s *tokenService) validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&identityClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("stub: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("stub: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", errors.New("stub: invalid token claims")
	}
	return claims.UserID, nil
}
