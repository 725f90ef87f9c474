package utils // utils provides helpers for token issuing and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// DefaultAccessTTLMin is the fallback token lifetime applied when the
// caller does not supply a positive TTL.
const DefaultAccessTTLMin = 15

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the serialized JWT string. Exp stores the
// expiration timestamp in UTC. Access tokens are short-lived and sent in
// the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. The subject
// claim carries the user's email, which is the stable identity the
// middleware resolves back to a user row. The role claim allows routes
// to gate on the marketplace role without a database read. A TTL of
// zero or less falls back to DefaultAccessTTLMin.
func NewAccessToken(secret, email, role string, ttlMin int) (AccessToken, error) {
	if ttlMin <= 0 {
		ttlMin = DefaultAccessTTLMin
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ErrInvalidToken is returned for any token that fails to parse,
// carries an unexpected signing method, is expired, or misses the
// subject claim. Callers must not distinguish between these cases in
// their responses.
var ErrInvalidToken = errors.New("invalid token")

// ParseAccessToken validates a signed access token and returns the
// subject email and role claims. Every failure mode collapses to
// ErrInvalidToken.
func ParseAccessToken(secret, raw string) (email, role string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", "", ErrInvalidToken
	}
	r, _ := claims["role"].(string)
	return sub, r, nil
}
