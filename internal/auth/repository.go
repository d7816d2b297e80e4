package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository implements Store on Postgres. Lockout transitions are single
// UPDATE statements so the database serializes concurrent attempts against
// the same account.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AccountByEmail(ctx context.Context, email string) (Account, error) {
	return r.account(ctx, `WHERE email = $1`, email)
}

func (r *Repository) AccountByID(ctx context.Context, id string) (Account, error) {
	return r.account(ctx, `WHERE id = $1`, id)
}

func (r *Repository) account(ctx context.Context, where string, arg any) (Account, error) {
	var account Account
	var lockedUntil sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, role,
		       failed_login_attempts, locked_until, force_password_change,
		       created_at, updated_at
		FROM users
	`+where, arg).Scan(
		&account.ID, &account.Email, &account.Name, &account.PasswordHash,
		&account.Role, &account.FailedLoginAttempts, &lockedUntil,
		&account.ForcePasswordChange, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("query account: %w", err)
	}
	if lockedUntil.Valid {
		value := lockedUntil.Time.UTC()
		account.LockedUntil = &value
	}

	return account, nil
}

func (r *Repository) RegisterFailedLogin(ctx context.Context, id string, policy LockoutPolicy, now time.Time) (LoginState, error) {
	policy = policy.normalized()
	now = now.UTC()
	lockUntil := now.Add(policy.LockDuration)

	var state LoginState
	var lockedUntil sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			failed_login_attempts = CASE
				WHEN locked_until IS NOT NULL AND locked_until > $2 THEN failed_login_attempts
				WHEN failed_login_attempts + 1 >= $3 THEN 0
				ELSE failed_login_attempts + 1
			END,
			locked_until = CASE
				WHEN locked_until IS NOT NULL AND locked_until > $2 THEN locked_until
				WHEN failed_login_attempts + 1 >= $3 THEN $4
				ELSE NULL
			END,
			updated_at = $2
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until
	`, id, now, policy.FailureThreshold, lockUntil).Scan(&state.FailedAttempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginState{}, ErrAccountNotFound
		}
		return LoginState{}, fmt.Errorf("register failed login: %w", err)
	}
	if lockedUntil.Valid {
		value := lockedUntil.Time.UTC()
		state.LockedUntil = &value
	}

	return state, nil
}

func (r *Repository) ResetLoginState(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reset login state: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2,
		    force_password_change = FALSE,
		    failed_login_attempts = 0,
		    locked_until = NULL,
		    updated_at = $3
		WHERE id = $1
	`, id, passwordHash, now.UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

// ClearExpiredLocks nulls out lock timestamps that expired before the
// cutoff, in batches. Used by the maintenance endpoint; login correctness
// never depends on it.
func (r *Repository) ClearExpiredLocks(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM users
			WHERE locked_until IS NOT NULL AND locked_until < $1
			ORDER BY locked_until ASC
			LIMIT $2
		)
		UPDATE users u
		SET locked_until = NULL
		FROM stale
		WHERE u.id = stale.id
	`, cutoff.UTC(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("clear expired locks: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired locks rows affected: %w", err)
	}

	return affected, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
