package authgate

import (
	"context"
	"fmt"
	"time"

	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/password"
	"github.com/soleares/authgate/session"
)

// Service orchestrates credential validation and the user lifecycle,
// delegating every token concern to the session registry.
type Service struct {
	users       *Users
	sessions    *session.Registry
	hasher      *password.Hasher
	maxSessions int

	audit   *auditDispatcher
	metrics *Metrics
}

// NewService wires a [Service] from explicit handles. A nil sink disables
// audit dispatch. Construction is allocation-only; no I/O happens until a
// method is called.
func NewService(users *Users, sessions *session.Registry, hasher *password.Hasher, cfg Config, sink AuditSink) *Service {
	var dispatcher *auditDispatcher
	if sink != nil {
		dispatcher = newAuditDispatcher(sink, cfg.AuditBufferSize)
	}

	return &Service{
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		maxSessions: cfg.MaxSessions,
		audit:       dispatcher,
		metrics:     NewMetrics(),
	}
}

// Close flushes and stops the audit dispatcher.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

// Sessions exposes the session registry for middleware-level collaborators.
func (s *Service) Sessions() *session.Registry { return s.sessions }

// Users exposes the underlying user CRUD service.
func (s *Service) Users() *Users { return s.users }

// Metrics exposes the service's counters.
func (s *Service) Metrics() *Metrics { return s.metrics }

// AuditDropped reports how many audit events were discarded under pressure.
func (s *Service) AuditDropped() uint64 { return s.audit.Dropped() }

// NoteTokenRefresh records a silent token rotation performed by the
// HTTP middleware.
func (s *Service) NoteTokenRefresh(userID int64, email, device string) {
	s.metrics.Inc(MetricTokenRefreshed)
	s.emit(AuditEvent{EventType: EventTokenRefreshed, UserID: userID, Email: email, Device: device, Success: true})
}

func (s *Service) emit(event AuditEvent) {
	event.Timestamp = time.Now()
	s.audit.Emit(event)
}

// ValidateUser checks an email/password pair against the user store.
// A missing user is a hard [ErrNotFound] failure; a wrong password is a
// soft negative, returning (nil, nil) so callers can distinguish the two.
func (s *Service) ValidateUser(ctx context.Context, email, pw string) (*User, error) {
	user := s.users.GetUserByEmail(ctx, email)
	if !user.Success {
		return nil, NewNotFound("user " + email)
	}

	if s.hasher.Verify(pw, user.Data.Password) {
		return user.Data, nil
	}
	return nil, nil
}

// CreateUser hashes the password and persists a new user. A taken email
// fails with "account already exists for <email>".
func (s *Service) CreateUser(ctx context.Context, creds Credentials) Response[User] {
	if creds.Email == "" || creds.Password == "" {
		return Fail[User](NewEmptyInput("registration data"))
	}

	existing := s.users.GetUserByEmail(ctx, creds.Email)
	if existing.Success {
		s.metrics.Inc(MetricSignupDuplicate)
		return Fail[User](NewUnauthorized("account already exists for " + existing.Data.Email))
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return Fail[User](err)
	}

	return s.users.CreateUser(ctx, creds.Email, hash)
}

// EditUser applies a partial update. A new password is hashed before it
// reaches the store; the rest passes through untouched.
func (s *Service) EditUser(ctx context.Context, id int64, update UserUpdate) Response[User] {
	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return Fail[User](err)
		}
		update.Password = &hash
	}

	return s.users.EditUser(ctx, id, update)
}

// LocalSignup creates the user and immediately logs them in. The result
// message reflects whether token issuance succeeded; a signup whose login
// leg failed is still a created account.
func (s *Service) LocalSignup(ctx context.Context, device string, in SignupInput) Response[UserWithToken] {
	if in.Email == "" || in.Password == "" || in.PasswordMatch == "" {
		return Fail[UserWithToken](NewEmptyInput("registration data"))
	}

	if in.Password != in.PasswordMatch {
		return Fail[UserWithToken](NewBadRequest("password and confirmation password don't match"))
	}

	user := s.CreateUser(ctx, Credentials{Email: in.Email, Password: in.Password})
	if !user.Success {
		s.emit(AuditEvent{EventType: EventSignup, Email: in.Email, Error: user.Message})
		return Fail[UserWithToken](NewBadRequest(user.Message))
	}

	login := s.LocalLogin(ctx, user.Data, device)

	token := ""
	if login.Success && login.Data != nil {
		token = login.Data.AccessToken
	}

	outcome := "but not authenticated"
	if token != "" {
		outcome = "and authenticated"
	}

	s.metrics.Inc(MetricSignupSuccess)
	s.emit(AuditEvent{EventType: EventSignup, UserID: user.Data.ID, Email: user.Data.Email, Device: device, Success: true})

	result := UserWithToken{User: *user.Data, AccessToken: token}
	return OK(&result, fmt.Sprintf("user %s account successfully created %s", user.Data.Email, outcome))
}

// LocalLogin builds the token payload from the user and device, mints a
// token through the session registry, and returns the user with it.
func (s *Service) LocalLogin(ctx context.Context, user *User, device string) Response[UserWithToken] {
	if user == nil {
		return Fail[UserWithToken](NewEmptyInput("user to log in"))
	}

	payload := jwt.Payload{ID: user.ID, Email: user.Email, Device: device}

	fresh := s.users.GetUserByID(ctx, payload.ID)
	if !fresh.Success {
		return Response[UserWithToken]{Err: fresh.Err, Message: fresh.Message}
	}

	token, err := s.sessions.GenerateToken(ctx, payload, false)
	if err != nil {
		s.metrics.Inc(MetricLoginFailure)
		s.emit(AuditEvent{EventType: EventLogin, UserID: payload.ID, Email: payload.Email, Device: device, Error: err.Error()})
		return Fail[UserWithToken](err)
	}

	s.metrics.Inc(MetricLoginSuccess)
	s.metrics.Inc(MetricSessionCreated)
	s.emit(AuditEvent{EventType: EventLogin, UserID: payload.ID, Email: payload.Email, Device: device, Success: true})

	result := UserWithToken{User: *fresh.Data, AccessToken: token}
	return OK(&result, "user "+payload.Email+" logged in")
}

// LocalLogout deletes the user's active sessions. All outcomes, including
// cache failures, resolve to the envelope rather than an error return.
func (s *Service) LocalLogout(ctx context.Context, id int64) Response[struct{}] {
	if err := s.sessions.DeleteActiveSessions(ctx, id); err != nil {
		s.emit(AuditEvent{EventType: EventLogout, UserID: id, Error: err.Error()})
		return Fail[struct{}](err)
	}

	s.metrics.Inc(MetricSessionInvalidated)
	s.emit(AuditEvent{EventType: EventLogout, UserID: id, Success: true})

	return OK[struct{}](nil, fmt.Sprintf("user %d logged out", id))
}
