package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/soleares/authgate/jwt"
)

var (
	// ErrEmptyPayload is returned when GenerateToken receives a payload
	// with no identity.
	ErrEmptyPayload = errors.New("payload to generate auth token must be provided")
	// ErrEmptyToken is returned when VerifyToken receives an empty token.
	ErrEmptyToken = errors.New("auth token must be provided")
	// ErrInvalidToken wraps codec verification failures.
	ErrInvalidToken = errors.New("invalid jwt token")
	// ErrSessionExpired is returned when no cached session matches the
	// token's user and device. The cache is authoritative over the token's
	// own expiry claim; server-side revocation surfaces here.
	ErrSessionExpired = errors.New("jwt token is expired")
	// ErrRedisUnavailable wraps cache store failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Registry binds signed tokens to cache entries, scoped per user and
// device, and enforces TTLs mirroring token expiry.
type Registry struct {
	redis      redis.UniversalClient
	codec      *jwt.Codec
	sessionTTL time.Duration
	refreshTTL time.Duration
}

// NewRegistry creates a [Registry] over the given Redis client and codec.
// sessionTTL and refreshTTL are the two configured token lifetimes.
func NewRegistry(rdb redis.UniversalClient, codec *jwt.Codec, sessionTTL, refreshTTL time.Duration) *Registry {
	return &Registry{
		redis:      rdb,
		codec:      codec,
		sessionTTL: sessionTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateToken signs a token for the payload and writes the paired cache
// entry. TTL is the refresh lifetime when refresh is true, the session
// lifetime otherwise. When the payload carries no session id a random UUID
// suffix is minted, so two logins for the same user produce distinct keys.
//
//	Performance: 1 Redis SET.
func (r *Registry) GenerateToken(ctx context.Context, p jwt.Payload, refresh bool) (string, error) {
	if p.Empty() {
		return "", ErrEmptyPayload
	}

	ttl := r.sessionTTL
	if refresh {
		ttl = r.refreshTTL
	}

	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}

	token, err := r.codec.Sign(p, ttl)
	if err != nil {
		return "", err
	}

	value, err := json.Marshal(cachedValue{Token: token, Device: p.Device})
	if err != nil {
		return "", err
	}

	key := sessionKey(p.ID, p.SessionID)
	if err := r.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return token, nil
}

// VerifyToken decodes and validates a token, then requires a live cached
// session for (decoded user, device). Returns the decoded claims and the
// cache key of the matching session.
//
// A structurally valid token whose session was deleted (or expired out of
// the cache) fails with [ErrSessionExpired]: revocation is server-side and
// independent of the token's exp claim.
func (r *Registry) VerifyToken(ctx context.Context, token, device string) (*jwt.Claims, string, error) {
	if token == "" {
		return nil, "", ErrEmptyToken
	}

	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	cached, err := r.SingleSession(ctx, claims.ID, device)
	if err != nil {
		return nil, "", err
	}
	if cached == nil {
		return nil, "", ErrSessionExpired
	}

	return claims, cached.ID, nil
}

// SingleSession returns the first active session for the user whose device
// matches, or nil when none does.
func (r *Registry) SingleSession(ctx context.Context, id int64, device string) (*CachedSession, error) {
	sessions, err := r.ActiveSessions(ctx, id)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Device == device {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// ActiveSessions scans every key under the user's prefix, bulk-fetches the
// values, and reconstructs one [CachedSession] per live entry. Returns an
// empty slice, not an error, when no keys match.
//
//	Performance: SCAN over "user:<id>:*" + 1 MGET.
func (r *Registry) ActiveSessions(ctx context.Context, id int64) ([]CachedSession, error) {
	pattern := userKeyPrefix(id) + ":*"

	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return []CachedSession{}, nil
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sessions := make([]CachedSession, 0, len(keys))
	for i, raw := range values {
		// A key can expire between SCAN and MGET.
		if raw == nil {
			continue
		}

		text, ok := raw.(string)
		if !ok {
			continue
		}

		var value cachedValue
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			return nil, fmt.Errorf("session: corrupt entry %q: %w", keys[i], err)
		}

		sessions = append(sessions, CachedSession{
			ID:     keys[i],
			Device: value.Device,
			Token:  value.Token,
		})
	}

	return sessions, nil
}

// DeleteActiveSessions removes every cached session for the user. Store
// failures propagate to the caller unswallowed.
func (r *Registry) DeleteActiveSessions(ctx context.Context, id int64) error {
	sessions, err := r.ActiveSessions(ctx, id)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	keys := make([]string, len(sessions))
	for i, s := range sessions {
		keys[i] = s.ID
	}

	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteSession removes a single cached session by its full cache key.
func (r *Registry) DeleteSession(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time cache availability check.
func (r *Registry) Ping(ctx context.Context) error {
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
