// Package auth turns bearer tokens into owner identities.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultOwner is the identity used when a request carries no valid token.
const DefaultOwner = "default-user"

const issuer = "notesd"

var (
	ErrMissingOwner = errors.New("token has no id or sub claim")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

// Claims carries the owner id. Tokens from other issuers may put it in
// `sub` only.
type Claims struct {
	ID any `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// Owner returns the id claim, falling back to sub. Numeric ids are
// rendered in decimal.
func (c *Claims) Owner() string {
	switch v := c.ID.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.TrimSpace(c.Subject)
}

// Verifier checks HS256 tokens against a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify validates tokenString and returns the owner it names.
func (v *Verifier) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return "", fmt.Errorf("token is malformed")
			case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
				return "", fmt.Errorf("token is expired or not active yet")
			}
		}
		return "", fmt.Errorf("couldn't handle this token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token is invalid")
	}

	owner := claims.Owner()
	if owner == "" {
		return "", ErrMissingOwner
	}
	return owner, nil
}

// Issue signs a token for owner that expires after ttl. A non-positive ttl
// issues a token without expiry.
func (v *Verifier) Issue(owner string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(owner) == "" {
		return "", ErrMissingOwner
	}
	claims := &Claims{
		ID: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  owner,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
