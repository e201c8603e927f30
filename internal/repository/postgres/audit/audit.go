package audit

import (
	"context"
	"time"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

type Entry struct {
	Action     string `json:"action"`
	ActorID    string `json:"actor_id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Details    string `json:"details"`
}

// Log is fire-and-forget from the caller's point of view: sync paths record
// the returned error at most, they never propagate it.
func (r Repository) Log(ctx context.Context, entry Entry) error {
	now := time.Now()

	detail := entity.AuditLog{
		Action:     &entry.Action,
		ActorID:    &entry.ActorID,
		TargetType: &entry.TargetType,
		TargetID:   &entry.TargetID,
		Details:    &entry.Details,
	}
	detail.CreatedAt = &now

	_, err := r.NewInsert().Model(&detail).Exec(ctx)
	return errors.Wrap(err, "writing audit log")
}

type RecentEntry struct {
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Recent returns the newest audit entries for the given target type, used by
// the sync health report.
func (r Repository) Recent(ctx context.Context, targetType string, limit int) ([]RecentEntry, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT action, target_id, details, created_at
		FROM audit_logs
		WHERE target_type = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, targetType, limit)
	if err != nil {
		return nil, errors.Wrap(err, "selecting recent audit logs")
	}
	defer rows.Close()

	var list []RecentEntry
	for rows.Next() {
		var entry RecentEntry
		if err := rows.Scan(&entry.Action, &entry.TargetID, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning audit log row")
		}
		list = append(list, entry)
	}

	return list, errors.Wrap(rows.Err(), "reading audit log rows")
}
