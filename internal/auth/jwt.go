package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, mis-signed and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated principal carried by a token. The user id
// is authoritative and stable; the display name is informational.
type Identity struct {
	ID   int
	Name string
}

// Claims mirrors what the identity provider puts into its tokens.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens issued by the identity provider with a
// shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier for the given secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Validate parses and verifies a token and returns the identity in it.
func (v *Verifier) Validate(token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: userID, Name: claims.Name}, nil
}
