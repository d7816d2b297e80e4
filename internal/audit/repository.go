package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists audit entries as append-only rows.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, entry Entry) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate audit id: %w", err)
	}

	details := "{}"
	if entry.Details != nil {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = string(encoded)
	}

	userID := entry.UserID
	if userID == "" {
		userID = UnknownUserID
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Audit writes outlive request cancellation; a half-finished login
	// should still leave its trace.
	_, err = r.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO audit_logs (id, user_id, user_email, action, details, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id.String(), userID, entry.UserEmail, string(entry.Action), details, entry.IP, entry.UserAgent, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// DeleteOlderThan prunes entries past the retention cutoff in batches.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM audit_logs
			WHERE created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
		)
		DELETE FROM audit_logs t
		USING stale
		WHERE t.id = stale.id
	`, cutoff.UTC(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale audit entries: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale audit entries rows affected: %w", err)
	}

	return affected, nil
}
