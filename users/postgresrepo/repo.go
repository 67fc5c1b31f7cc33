// Package postgresrepo is the PostgreSQL implementation of users.UserRepo.
package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/users"
	"github.com/lib/pq"
)

var _ users.UserRepo = (*Repo)(nil)

const uniqueViolation = pq.ErrorCode("23505")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	date_joined   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectUser = `SELECT id, email, password_hash, first_name, last_name, date_joined FROM users`

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) (*Repo, error) {
	if db == nil {
		return nil, errors.New("[postgresrepo.New] db is required")
	}
	return &Repo{db: db}, nil
}

// Open connects to dsn with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.Unavailable(err, "postgresrepo.Open")
	}
	return db, nil
}

// InitSchema creates the users table when it does not exist.
func (r *Repo) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Unavailable(err, "postgresrepo.InitSchema")
	}
	return nil
}

func (r *Repo) Upsert(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = users.NormaliseEmail(user.Email)
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.DateJoined,
	)

	var pqErr *pq.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "email %s", user.Email)
	default:
		return apperrors.Unavailable(err, "postgresrepo.Upsert")
	}
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.Unavailable(err, "postgresrepo.Delete")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Unavailable(err, "postgresrepo.Delete")
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, users.NormaliseEmail(email))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *Repo) Ping(ctx context.Context) error {
	return apperrors.Unavailable(r.db.PingContext(ctx), "postgresrepo.Ping")
}

func (r *Repo) getOne(ctx context.Context, query string, arg string) (*users.User, error) {
	user := &users.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DateJoined,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", arg)
	case err != nil:
		return nil, apperrors.Unavailable(err, "postgresrepo.get")
	}
	return user, nil
}
