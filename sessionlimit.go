package authgate

import (
	"context"
	"fmt"

	"github.com/soleares/authgate/session"
)

// SessionConflict describes why a sign-in attempt was rejected by the
// session-limit policy. Exactly one of Session (same device already
// signed in) or Sessions (ceiling exceeded) is populated.
type SessionConflict struct {
	Message  string                  `json:"message"`
	Session  *session.CachedSession  `json:"session,omitempty"`
	Sessions []session.CachedSession `json:"activeSessions,omitempty"`
	Count    int                     `json:"count,omitempty"`
}

// CheckSessionLimit runs before local sign-in: it rejects when the device
// already holds a session, or when the user's total session count exceeds
// the configured ceiling. A nil conflict means the attempt may proceed.
//
// The check and the subsequent session write are not atomic: two
// concurrent logins can both pass before either writes, permitting
// transient over-limit states. That race is accepted; there is no
// compare-and-swap on the cache.
func (s *Service) CheckSessionLimit(ctx context.Context, email, device string) (*SessionConflict, error) {
	user := s.users.GetUserByEmail(ctx, email)
	if !user.Success {
		return nil, NewBadRequest("unable to find user")
	}

	active, err := s.sessions.ActiveSessions(ctx, user.Data.ID)
	if err != nil {
		return nil, err
	}

	for i := range active {
		if active[i].Device == device {
			s.metrics.Inc(MetricSessionLimitRejected)
			s.emit(AuditEvent{
				EventType: EventLimitRejected,
				UserID:    user.Data.ID,
				Email:     email,
				Device:    device,
				Metadata:  map[string]string{"reason": "device_signed_in"},
			})
			return &SessionConflict{
				Message: "user is already signed in",
				Session: &active[i],
			}, nil
		}
	}

	if len(active) > s.maxSessions {
		s.metrics.Inc(MetricSessionLimitRejected)
		s.emit(AuditEvent{
			EventType: EventLimitRejected,
			UserID:    user.Data.ID,
			Email:     email,
			Device:    device,
			Metadata:  map[string]string{"reason": "session_ceiling"},
		})
		return &SessionConflict{
			Message:  fmt.Sprintf("%d active sessions", len(active)),
			Sessions: active,
			Count:    len(active),
		}, nil
	}

	return nil, nil
}
