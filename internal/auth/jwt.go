// Package auth verifies the tokens the host platform issues for its users.
//
// The host signs a JWT per user session and hands it to the browser, either as
// the "token" cookie or as an Authorization: Bearer header. The token carries:
//
//	sub   internal user id
//	caps  capability names granted to the user (e.g. "mod/snippet:addsnip")
//	jti   unique token id, logged for tracing
//	iss   must match the configured issuer
//
// The service never looks up users or capabilities itself: whatever the token
// says is the answer to "who is calling and what may they do".
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const DefaultTokenTTL = 15 * time.Minute

// Identity is the verified caller.
type Identity struct {
	UserID       int64
	Capabilities []string
	TokenID      string
}

// Has reports whether the identity was granted capability.
func (i Identity) Has(capability string) bool {
	return slices.Contains(i.Capabilities, capability)
}

// TokenService signs and verifies HS256 tokens with a shared secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if issuer == "" {
		return nil, errors.New("auth: issuer is required")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

type claims struct {
	Caps []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a token for userID with the given capabilities, valid for
// DefaultTokenTTL. The host normally issues tokens; this is used by the
// operator CLI and tests.
func (s *TokenService) Generate(userID int64, caps []string) (string, error) {
	return s.GenerateWithDuration(userID, caps, DefaultTokenTTL)
}

// GenerateWithDuration signs a token valid for d. A negative d yields an
// already expired token.
func (s *TokenService) GenerateWithDuration(userID int64, caps []string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Caps: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    s.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry, and returns the
// identity the token describes.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errors.New("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}

	return Identity{UserID: userID, Capabilities: c.Caps, TokenID: c.ID}, nil
}
