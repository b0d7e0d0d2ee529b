package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the signature or structure of a
	// token is malformed, independent of expiry.
	ErrInvalidToken = errors.New("invalid jwt token")
	// ErrTokenExpired is returned when a structurally valid token is past
	// its exp claim.
	ErrTokenExpired = errors.New("jwt token expired")
)

// Payload is the transient token content constructed per login or refresh.
// SessionID is empty on first issuance; refreshes reuse the existing one.
type Payload struct {
	ID        int64
	Email     string
	Device    string
	SessionID string
}

// Empty reports whether the payload carries no identity at all.
func (p Payload) Empty() bool {
	return p.ID == 0 && p.Email == "" && p.Device == ""
}

// Claims is the decoded token content: the payload fields plus the
// registered iat/exp claims (seconds since epoch).
type Claims struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Device    string `json:"device"`
	SessionID string `json:"sessionId,omitempty"`
	jwt.RegisteredClaims
}

// Payload reconstructs the transient payload from decoded claims.
func (c *Claims) Payload() Payload {
	return Payload{
		ID:        c.ID,
		Email:     c.Email,
		Device:    c.Device,
		SessionID: c.SessionID,
	}
}

// Codec signs and verifies tokens with a shared HS256 secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a [Codec]. The secret must be non-empty.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Sign produces a signed token embedding the payload, the current time as
// iat, and now+ttl as exp. No side effects.
func (c *Codec) Sign(p Payload, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("jwt: ttl must be positive")
	}

	now := time.Now()
	claims := Claims{
		ID:        p.ID,
		Email:     p.Email,
		Device:    p.Device,
		SessionID: p.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token, returning its claims. Signature or
// structure failures surface as [ErrInvalidToken]; an expired token as
// [ErrTokenExpired]. The parser fails fast on tampering.
func (c *Codec) Verify(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
