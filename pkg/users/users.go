// Package users persists the single local user row: a display name and an
// optional hashed PIN.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/unowned-ai/daybook/pkg/db"
)

var (
	ErrNoUser = errors.New("no user configured")
)

const (
	getUserStatement = `
	SELECT id, username, pin_hash, created_at FROM users
	ORDER BY id LIMIT 1
	`

	insertUserStatement = `
	INSERT INTO users (username, pin_hash, created_at) VALUES (?, ?, ?)
	`
)

type User struct {
	ID        int64          `db:"id" json:"id"`
	Username  string         `db:"username" json:"username"`
	PinHash   sql.NullString `db:"pin_hash" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// HasPin reports whether an account PIN is configured.
func (u User) HasPin() bool {
	return u.PinHash.Valid && u.PinHash.String != ""
}

type Repository struct {
	store *db.Store
	log   zerolog.Logger
	cost  int
}

func New(store *db.Store) *Repository {
	return &Repository{
		store: store,
		log:   store.Logger().With().Str("component", "users").Logger(),
		cost:  bcrypt.DefaultCost,
	}
}

func (r *Repository) Get(ctx context.Context) (User, error) {
	var u User
	if err := r.store.Get(ctx, &u, getUserStatement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNoUser
		}
		return User{}, fmt.Errorf("failed to read user: %w", err)
	}
	return u, nil
}

// HasAccount reports whether a PIN has been set.
func (r *Repository) HasAccount(ctx context.Context) (bool, error) {
	u, err := r.Get(ctx)
	if errors.Is(err, ErrNoUser) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.HasPin(), nil
}

// update sets the given columns on the user row in one transaction, creating
// the row first if none exists.
func (r *Repository) update(ctx context.Context, columns []string, values ...any) error {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(sets, ", "))

	return r.store.InTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, `SELECT id FROM users ORDER BY id LIMIT 1`)
		if errors.Is(err, sql.ErrNoRows) {
			res, err := tx.ExecContext(ctx, insertUserStatement, "", nil, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, append(values, id)...); err != nil {
			return fmt.Errorf("failed to update user %s: %w", strings.Join(columns, ", "), err)
		}
		return nil
	})
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username must not be empty", db.ErrInvalidArgument)
	}
	return username, nil
}

func (r *Repository) hashPin(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return "", fmt.Errorf("%w: PIN must not be empty", db.ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), r.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

func (r *Repository) SetUsername(ctx context.Context, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	if err := r.update(ctx, []string{"username"}, username); err != nil {
		return err
	}
	r.log.Info().Str("username", username).Msg("username set")
	return nil
}

// SetPin stores a bcrypt hash of the trimmed pin.
func (r *Repository) SetPin(ctx context.Context, pin string) error {
	hash, err := r.hashPin(pin)
	if err != nil {
		return err
	}
	if err := r.update(ctx, []string{"pin_hash"}, hash); err != nil {
		return err
	}
	r.log.Info().Msg("PIN set")
	return nil
}

// SetAccount writes the username and the PIN hash together. Both are checked
// before the store is touched.
func (r *Repository) SetAccount(ctx context.Context, username, pin string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	hash, err := r.hashPin(pin)
	if err != nil {
		return err
	}
	if err := r.update(ctx, []string{"username", "pin_hash"}, username, hash); err != nil {
		return err
	}
	r.log.Info().Str("username", username).Msg("account set")
	return nil
}

// VerifyPin reports whether pin matches the stored hash. It is false when no
// PIN is configured.
func (r *Repository) VerifyPin(ctx context.Context, pin string) (bool, error) {
	u, err := r.Get(ctx)
	if errors.Is(err, ErrNoUser) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !u.HasPin() {
		return false, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(u.PinHash.String), []byte(strings.TrimSpace(pin)))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare PIN: %w", err)
	}
	return true, nil
}

func (r *Repository) ClearPin(ctx context.Context) error {
	if _, err := r.store.Exec(ctx, `UPDATE users SET pin_hash = NULL`); err != nil {
		return fmt.Errorf("failed to clear PIN: %w", err)
	}
	return nil
}

func (r *Repository) ClearUsername(ctx context.Context) error {
	if _, err := r.store.Exec(ctx, `UPDATE users SET username = ''`); err != nil {
		return fmt.Errorf("failed to clear username: %w", err)
	}
	return nil
}
