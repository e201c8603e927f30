package syncerror

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/entity"
	"worksync/backend/internal/pkg/repository/postgresql"
	"worksync/backend/internal/repository/postgres"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Create opens a new ledger entry. Every entry starts OPEN; there is no
// other entry point into the lifecycle.
func (r Repository) Create(ctx context.Context, request CreateRequest) (entity.SyncError, error) {
	now := time.Now()
	status := entity.SyncErrorStatusOpen
	retryCount := 0

	detail := entity.SyncError{
		SyncType:     &request.SyncType,
		ErrorCode:    &request.ErrorCode,
		ErrorMessage: &request.ErrorMessage,
		SiteID:       request.SiteID,
		RetryCount:   &retryCount,
		Status:       &status,
	}
	detail.CreatedAt = &now

	_, err := r.NewInsert().Model(&detail).Exec(ctx)
	if err != nil {
		return entity.SyncError{}, errors.Wrap(err, "creating sync error")
	}

	return detail, nil
}

func (r Repository) GetById(ctx context.Context, id int) (entity.SyncError, error) {
	var detail entity.SyncError

	err := r.NewSelect().Model(&detail).
		Where("id = ? AND deleted_at IS NULL", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.SyncError{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return entity.SyncError{}, errors.Wrap(err, "selecting sync error")
	}

	return detail, nil
}

// GetList returns ledger entries, OPEN records first, newest first within a
// status.
func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	whereQuery := `
		WHERE
			s.deleted_at IS NULL`
	args := []interface{}{}

	if filter.Status != nil {
		whereQuery += ` AND s.status = ?`
		args = append(args, *filter.Status)
	}
	if filter.SyncType != nil {
		whereQuery += ` AND s.sync_type = ?`
		args = append(args, *filter.SyncType)
	}
	if filter.SiteID != nil {
		whereQuery += ` AND s.site_id = ?`
		args = append(args, *filter.SiteID)
	}

	orderQuery := ` ORDER BY (s.status = 'OPEN') DESC, s.created_at DESC`

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	var limitQuery, offsetQuery string
	if filter.Limit != nil {
		limitQuery = fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}
	if filter.Offset != nil {
		offsetQuery = fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := `
		SELECT
			s.id,
			s.sync_type,
			s.error_code,
			s.error_message,
			s.site_id,
			s.retry_count,
			s.status,
			to_char(s.created_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM sync_errors s
	` + whereQuery + orderQuery + limitQuery + offsetQuery

	rows, err := r.QueryContext(ctx, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting sync errors"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse
	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.SyncType,
			&detail.ErrorCode,
			&detail.ErrorMessage,
			&detail.SiteID,
			&detail.RetryCount,
			&detail.Status,
			&detail.CreatedAt,
		); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning sync error row"), http.StatusInternalServerError)
		}
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading sync error rows"), http.StatusInternalServerError)
	}

	countQuery := `SELECT count(s.id) FROM sync_errors s ` + whereQuery

	var count int
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting sync errors"), http.StatusInternalServerError)
	}

	return list, count, nil
}

// AllowedTransition reports whether a ledger entry may move from current to
// target. OPEN -> RESOLVED and OPEN -> IGNORED are the only permitted moves;
// RESOLVED and IGNORED are terminal.
func AllowedTransition(current, target string) bool {
	if target != entity.SyncErrorStatusResolved && target != entity.SyncErrorStatusIgnored {
		return false
	}
	return current == entity.SyncErrorStatusOpen
}

// UpdateStatus applies one transition. The OPEN guard is repeated in the
// WHERE clause so a concurrent resolve cannot double-apply; a zero row count
// on an existing record means the record was not OPEN.
func (r Repository) UpdateStatus(ctx context.Context, request UpdateStatusRequest) (entity.SyncError, error) {
	if !AllowedTransition(entity.SyncErrorStatusOpen, request.Status) {
		return entity.SyncError{}, web.NewRequestError(
			errors.Errorf("status must be %s or %s", entity.SyncErrorStatusResolved, entity.SyncErrorStatusIgnored),
			http.StatusBadRequest)
	}

	query := r.NewUpdate().Model((*entity.SyncError)(nil)).
		Set("status = ?", request.Status).
		Set("updated_at = now()").
		Where("id = ?", request.ID).
		Where("deleted_at IS NULL").
		Where("status = ?", entity.SyncErrorStatusOpen)

	switch request.Retry {
	case RetryBump:
		query = query.Set("retry_count = retry_count + 1")
	case RetryReset:
		query = query.Set("retry_count = 0")
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return entity.SyncError{}, errors.Wrap(err, "updating sync error status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return entity.SyncError{}, errors.Wrap(err, "checking sync error update")
	}

	if affected == 0 {
		// Distinguish "no such record" from "terminal status".
		if _, err := r.GetById(ctx, request.ID); err != nil {
			return entity.SyncError{}, err
		}
		return entity.SyncError{}, web.NewRequestError(postgres.ErrInvalidTransition, http.StatusConflict)
	}

	return r.GetById(ctx, request.ID)
}

func (r Repository) GetStatusCounts(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts

	err := r.QueryRowContext(ctx, `
		SELECT
			count(*) FILTER (WHERE status = 'OPEN'),
			count(*) FILTER (WHERE status = 'RESOLVED'),
			count(*) FILTER (WHERE status = 'IGNORED')
		FROM sync_errors
		WHERE deleted_at IS NULL
	`).Scan(&counts.Open, &counts.Resolved, &counts.Ignored)
	if err != nil {
		return StatusCounts{}, errors.Wrap(err, "counting sync errors by status")
	}

	return counts, nil
}
