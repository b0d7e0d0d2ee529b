package session

import (
	"fmt"
	"strconv"
	"strings"
)

const keyPrefix = "user:"

// CachedSession is one active session reconstructed from the cache. ID is
// the full cache key ("user:<userId>:<sessionId>").
type CachedSession struct {
	ID     string `json:"id"`
	Device string `json:"device"`
	Token  string `json:"token"`
}

// UserID extracts the owning user id from the cache key.
func (c CachedSession) UserID() (int64, error) {
	parts := strings.SplitN(c.ID, ":", 3)
	if len(parts) != 3 || parts[0] != "user" {
		return 0, fmt.Errorf("session: malformed key %q", c.ID)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

// SessionID extracts the random session suffix from the cache key.
func (c CachedSession) SessionID() string {
	parts := strings.SplitN(c.ID, ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

// cachedValue is the JSON blob stored under a session key.
type cachedValue struct {
	Token  string `json:"token"`
	Device string `json:"device"`
}

func userKeyPrefix(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func sessionKey(id int64, sessionID string) string {
	return userKeyPrefix(id) + ":" + sessionID
}
