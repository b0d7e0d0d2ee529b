package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/soleares/authgate"
)

// Postgres implements authgate.UserStore over database/sql with the pq
// driver. It owns no transaction logic; every method is a single statement.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database, verifies the connection, and
// ensures the users table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	s := &Postgres{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing connection pool without migrating.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Close releases the underlying pool.
func (s *Postgres) Close() error { return s.db.Close() }

func (s *Postgres) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         BIGSERIAL PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("store: migrate users: %w", err)
	}
	return nil
}

const userColumns = "id, email, password, created_at, updated_at"

func scanUser(row *sql.Row) (*authgate.User, error) {
	var u authgate.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, authgate.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*authgate.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*authgate.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

func (s *Postgres) FindAll(ctx context.Context) ([]authgate.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []authgate.User
	for rows.Next() {
		var u authgate.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Postgres) Create(ctx context.Context, email, passwordHash string) (*authgate.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		RETURNING `+userColumns+`
	`, email, passwordHash)
	return scanUser(row)
}

func (s *Postgres) Update(ctx context.Context, id int64, update authgate.UserUpdate) (*authgate.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET email      = COALESCE($2, email),
		    password   = COALESCE($3, password),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, update.Email, update.Password)
	return scanUser(row)
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return authgate.ErrUserNotFound
	}
	return nil
}
