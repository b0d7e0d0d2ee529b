package authgate

import (
	"context"
	"errors"
	"strconv"
)

// Users is the CRUD service over the relational user store. Every method
// resolves to a [Response] envelope; store failures are wrapped, never
// rethrown.
type Users struct {
	store UserStore
}

// NewUsers creates a [Users] service over the given store.
func NewUsers(store UserStore) *Users {
	return &Users{store: store}
}

// GetAllUsers retrieves every user.
func (u *Users) GetAllUsers(ctx context.Context) Response[[]User] {
	users, err := u.store.FindAll(ctx)
	if err != nil {
		return Fail[[]User](err)
	}
	return OK(&users, "all users retrieved successfully")
}

// GetUserByID retrieves a single user by id.
func (u *Users) GetUserByID(ctx context.Context, id int64) Response[User] {
	user, err := u.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Fail[User](NewNotFound("user " + strconv.FormatInt(id, 10)))
		}
		return Fail[User](err)
	}
	return OK(user, "user retrieved successfully")
}

// GetUserByEmail retrieves a single user by email.
func (u *Users) GetUserByEmail(ctx context.Context, email string) Response[User] {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Fail[User](NewNotFound("user " + email))
		}
		return Fail[User](err)
	}
	return OK(user, "user retrieved successfully")
}

// CreateUser persists a new user record. The password is expected to be
// hashed already; hashing is the auth service's responsibility.
func (u *Users) CreateUser(ctx context.Context, email, passwordHash string) Response[User] {
	if email == "" || passwordHash == "" {
		return Fail[User](NewEmptyInput("user data"))
	}
	user, err := u.store.Create(ctx, email, passwordHash)
	if err != nil {
		return Fail[User](err)
	}
	return OK(user, "user "+user.Email+" created")
}

// EditUser applies a partial update to a user record.
func (u *Users) EditUser(ctx context.Context, id int64, update UserUpdate) Response[User] {
	user, err := u.store.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Fail[User](NewNotFound("user " + strconv.FormatInt(id, 10)))
		}
		return Fail[User](err)
	}
	return OK(user, "user "+user.Email+" updated")
}

// DeleteUser removes a user record.
func (u *Users) DeleteUser(ctx context.Context, id int64) Response[User] {
	user, err := u.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Fail[User](NewNotFound("user " + strconv.FormatInt(id, 10)))
		}
		return Fail[User](err)
	}
	if err := u.store.Delete(ctx, id); err != nil {
		return Fail[User](err)
	}
	return OK(user, "user "+user.Email+" deleted")
}
