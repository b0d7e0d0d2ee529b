package authgate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/password"
	"github.com/soleares/authgate/session"
)

// mockUserStore is an in-package UserStore stub so service tests do not
// depend on a real store implementation.
type mockUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]User

	failCreate error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{nextID: 1, users: make(map[int64]User)}
}

func (m *mockUserStore) FindByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserStore) FindAll(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	return all, nil
}

func (m *mockUserStore) Create(_ context.Context, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	now := time.Now().UTC()
	u := User{ID: m.nextID, Email: email, Password: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.nextID++
	m.users[u.ID] = u
	return &u, nil
}

func (m *mockUserStore) Update(_ context.Context, id int64, update UserUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return &u, nil
}

func (m *mockUserStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func testConfig() Config {
	return Config{
		SessionSecret:    "service-test-secret",
		SessionTTL:       time.Hour,
		RefreshTTL:       24 * time.Hour,
		RefreshThreshold: 5 * time.Minute,
		MaxSessions:      2,
		BcryptCost:       4,
		AuditBufferSize:  16,
	}
}

func newTestService(t *testing.T, sink AuditSink) (*Service, *mockUserStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codec, err := jwt.NewCodec("service-test-secret")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	hasher, err := password.NewHasher(4)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	store := newMockUserStore()
	registry := session.NewRegistry(rdb, codec, time.Hour, 24*time.Hour)
	svc := NewService(NewUsers(store), registry, hasher, testConfig(), sink)
	t.Cleanup(svc.Close)

	return svc, store
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	resp := svc.CreateUser(ctx, Credentials{Email: "alice@example.com", Password: "hunter22"})
	if !resp.Success {
		t.Fatalf("CreateUser failed: %s", resp.Message)
	}

	stored, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.Password == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	user, err := svc.ValidateUser(ctx, "alice@example.com", "hunter22")
	if err != nil || user == nil {
		t.Fatalf("expected the original password to validate, got user=%v err=%v", user, err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	svc.CreateUser(ctx, Credentials{Email: "alice@example.com", Password: "hunter22"})
	resp := svc.CreateUser(ctx, Credentials{Email: "alice@example.com", Password: "other"})

	if resp.Success {
		t.Fatal("duplicate email must be rejected")
	}
	if !strings.Contains(resp.Message, "already exists for alice@example.com") {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if got := svc.Metrics().Value(MetricSignupDuplicate); got != 1 {
		t.Fatalf("expected 1 duplicate metric, got %d", got)
	}
}

func TestCreateUserEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp := svc.CreateUser(context.Background(), Credentials{})
	if resp.Success {
		t.Fatal("empty credentials must be rejected")
	}
	if resp.Err == nil || resp.Err.Status != 400 {
		t.Fatalf("expected a 400 envelope, got %+v", resp.Err)
	}
}

func TestValidateUser(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	svc.CreateUser(ctx, Credentials{Email: "alice@example.com", Password: "hunter22"})

	if _, err := svc.ValidateUser(ctx, "nobody@example.com", "x"); err == nil {
		t.Fatal("unknown user must be a hard failure")
	}

	user, err := svc.ValidateUser(ctx, "alice@example.com", "wrong")
	if err != nil {
		t.Fatalf("wrong password must be a soft negative, got %v", err)
	}
	if user != nil {
		t.Fatal("wrong password must not return the user")
	}
}

func TestLocalSignupIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	resp := svc.LocalSignup(ctx, "firefox", SignupInput{
		Email:         "alice@example.com",
		Password:      "hunter22",
		PasswordMatch: "hunter22",
	})
	if !resp.Success {
		t.Fatalf("signup failed: %s", resp.Message)
	}
	if !strings.HasSuffix(resp.Message, "created and authenticated") {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Data.AccessToken == "" {
		t.Fatal("signup returned no token")
	}

	claims, _, err := svc.Sessions().VerifyToken(ctx, resp.Data.AccessToken, "firefox")
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Device != "firefox" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if got := svc.Metrics().Value(MetricSignupSuccess); got != 1 {
		t.Fatalf("expected 1 signup metric, got %d", got)
	}
	if got := svc.Metrics().Value(MetricSessionCreated); got != 1 {
		t.Fatalf("expected 1 session-created metric, got %d", got)
	}
}

func TestLocalSignupPasswordMismatch(t *testing.T) {
	svc, store := newTestService(t, nil)

	resp := svc.LocalSignup(context.Background(), "firefox", SignupInput{
		Email:         "alice@example.com",
		Password:      "hunter22",
		PasswordMatch: "different",
	})
	if resp.Success {
		t.Fatal("mismatched passwords must be rejected")
	}
	if !strings.Contains(resp.Message, "don't match") {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(store.users) != 0 {
		t.Fatal("no user may be created on mismatch")
	}
}

func TestLocalLoginNilUser(t *testing.T) {
	svc, _ := newTestService(t, nil)

	resp := svc.LocalLogin(context.Background(), nil, "firefox")
	if resp.Success {
		t.Fatal("nil user must be rejected")
	}
}

func TestLocalLogoutRemovesAllSessions(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	signup := svc.LocalSignup(ctx, "firefox", SignupInput{
		Email:         "alice@example.com",
		Password:      "hunter22",
		PasswordMatch: "hunter22",
	})
	if !signup.Success {
		t.Fatalf("signup failed: %s", signup.Message)
	}

	// A second session on another device.
	user, _ := svc.ValidateUser(ctx, "alice@example.com", "hunter22")
	if login := svc.LocalLogin(ctx, user, "chrome"); !login.Success {
		t.Fatalf("second login failed: %s", login.Message)
	}

	out := svc.LocalLogout(ctx, signup.Data.ID)
	if !out.Success {
		t.Fatalf("logout failed: %s", out.Message)
	}

	active, err := svc.Sessions().ActiveSessions(ctx, signup.Data.ID)
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no sessions after logout, got %d", len(active))
	}
}

func TestEditUserHashesNewPassword(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	created := svc.CreateUser(ctx, Credentials{Email: "alice@example.com", Password: "hunter22"})
	if !created.Success {
		t.Fatalf("CreateUser failed: %s", created.Message)
	}

	newPassword := "correct-horse"
	resp := svc.EditUser(ctx, created.Data.ID, UserUpdate{Password: &newPassword})
	if !resp.Success {
		t.Fatalf("EditUser failed: %s", resp.Message)
	}

	stored, _ := store.FindByID(ctx, created.Data.ID)
	if stored.Password == newPassword {
		t.Fatal("new password stored in plaintext")
	}
	if user, err := svc.ValidateUser(ctx, "alice@example.com", newPassword); err != nil || user == nil {
		t.Fatalf("new password must validate, got user=%v err=%v", user, err)
	}
}
