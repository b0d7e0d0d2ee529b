package authgate

import (
	"context"
	"time"
)

// User is the identity record owned by the relational user store. The
// password field holds an opaque bcrypt hash and never serializes.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials is the email/password pair consumed by user creation and
// credential validation.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput is the local-signup request body. PasswordMatch must equal
// Password or the signup is rejected before any user is created.
type SignupInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	PasswordMatch string `json:"passwordMatch"`
}

// UserUpdate carries the mutable user fields for [UserStore.Update]. Nil
// fields are left unchanged.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserWithToken is a user paired with a freshly minted access token,
// returned by login and signup.
type UserWithToken struct {
	User
	AccessToken string `json:"access_token"`
}

// UserStore is the relational user store contract consumed by [Service]
// and [Users]. Implementations return [ErrUserNotFound] on lookup misses
// and are expected to be safe for concurrent use.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	Update(ctx context.Context, id int64, update UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// Response is the uniform envelope returned by every Service and Users
// method instead of a bare error.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Err     *Error `json:"error"`
	Message string `json:"message"`
}

// OK builds a successful envelope.
func OK[T any](data *T, message string) Response[T] {
	return Response[T]{Success: true, Data: data, Message: message}
}

// Fail builds an error envelope from any error, converting it into the
// taxonomy via [AsError]. The message defaults to the error text.
func Fail[T any](err error) Response[T] {
	apiErr := AsError(err)
	message := ""
	if apiErr != nil {
		message = apiErr.Message
	}
	return Response[T]{Err: apiErr, Message: message}
}
