package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/soleares/authgate"
)

// Memory is a map-backed authgate.UserStore for tests and examples.
// All methods copy User values out so callers cannot mutate shared state.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]authgate.User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1, users: make(map[int64]authgate.User)}
}

func (m *Memory) FindByID(_ context.Context, id int64) (*authgate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, authgate.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*authgate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, authgate.ErrUserNotFound
}

func (m *Memory) FindAll(_ context.Context) ([]authgate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]authgate.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *Memory) Create(_ context.Context, email, passwordHash string) (*authgate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	u := authgate.User{
		ID:        m.nextID,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextID++
	m.users[u.ID] = u
	return &u, nil
}

func (m *Memory) Update(_ context.Context, id int64, update authgate.UserUpdate) (*authgate.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, authgate.ErrUserNotFound
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

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return authgate.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}
