package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// User is the provisioning view of an account; the password hash never
// leaves the repository.
type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	Role                string     `json:"role"`
	ForcePasswordChange bool       `json:"forcePasswordChange"`
	LockedUntil         *time.Time `json:"lockedUntil,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

var ErrEmailTaken = errors.New("email already registered")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, role, force_password_change, locked_until, created_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		var lockedUntil sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.ForcePasswordChange, &lockedUntil, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if lockedUntil.Valid {
			value := lockedUntil.Time.UTC()
			u.LockedUntil = &value
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// EnsureSeedAdmin provisions the first admin account when the users table is
// empty. The seeded account carries force_password_change so the configured
// password must be rotated on first login.
func (r *Repository) EnsureSeedAdmin(ctx context.Context, email, name, passwordHash string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate uuid v7: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, force_password_change, created_at, updated_at)
		SELECT $1, $2, $3, $4, 'admin', TRUE, NOW(), NOW()
		WHERE NOT EXISTS (SELECT 1 FROM users)
	`, id.String(), email, name, passwordHash)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	return nil
}

// Create provisions an account. New accounts always start with
// force_password_change set so the temporary password is rotated on first
// login.
func (r *Repository) Create(ctx context.Context, email, name, role, passwordHash string) (User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	u := User{
		ID:                  id.String(),
		Email:               email,
		Name:                name,
		Role:                role,
		ForcePasswordChange: true,
		CreatedAt:           now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, force_password_change, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
	`, u.ID, u.Email, u.Name, passwordHash, u.Role, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}
