package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/entity"
	"worksync/backend/internal/pkg/daywindow"
	"worksync/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
	location *time.Location
}

func NewRepository(database *postgresql.Database, location *time.Location) *Repository {
	return &Repository{Database: database, location: location}
}

// Insert stores one event. The dedup index on (external_worker_id, site_id,
// checkin_at) makes replays of the same batch harmless; the bool reports
// whether a row was actually written.
func (r Repository) Insert(ctx context.Context, event entity.AttendanceEvent) (bool, error) {
	now := time.Now()
	event.CreatedAt = &now

	result, err := r.NewInsert().Model(&event).
		On("CONFLICT (external_worker_id, site_id, checkin_at) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "inserting attendance event")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "checking attendance insert")
	}

	return affected > 0, nil
}

// GetToday lists events inside the current day window, newest first. Only
// SUCCESS events count as presence, so that is the default filter.
func (r Repository) GetToday(ctx context.Context, filter Filter) ([]GetTodayResponse, int, error) {
	start, end := daywindow.Range(time.Now(), r.location)

	whereQuery := `
		WHERE
			a.deleted_at IS NULL
			AND a.checkin_at >= ? AND a.checkin_at < ?`
	args := []interface{}{start, end}

	if filter.SiteID != nil {
		whereQuery += ` AND a.site_id = ?`
		args = append(args, *filter.SiteID)
	}
	if filter.Result != nil {
		whereQuery += ` AND a.result = ?`
		args = append(args, *filter.Result)
	} else {
		whereQuery += ` AND a.result = 'SUCCESS'`
	}

	orderQuery := " ORDER BY a.checkin_at DESC"

	limitQuery, offsetQuery := paging(filter)

	query := `
		SELECT
			a.id,
			a.site_id,
			a.user_id,
			a.external_worker_id,
			w.name,
			w.company_name,
			a.checkin_at,
			a.result,
			a.source
		FROM attendance_events a
		LEFT JOIN workers w ON a.user_id = w.id
	` + whereQuery + orderQuery + limitQuery + offsetQuery

	return r.scanToday(ctx, query, args, whereQuery)
}

func (r Repository) scanToday(ctx context.Context, query string, args []interface{}, whereQuery string) ([]GetTodayResponse, int, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting today's attendance"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetTodayResponse
	for rows.Next() {
		var detail GetTodayResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.SiteID,
			&detail.UserID,
			&detail.ExternalWorkerID,
			&detail.WorkerName,
			&detail.CompanyName,
			&detail.CheckinAt,
			&detail.Result,
			&detail.Source,
		); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning attendance row"), http.StatusInternalServerError)
		}
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading attendance rows"), http.StatusInternalServerError)
	}

	countQuery := `
		SELECT count(a.id)
		FROM attendance_events a
		LEFT JOIN workers w ON a.user_id = w.id
	` + whereQuery

	var count int
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting attendance rows"), http.StatusInternalServerError)
	}

	return list, count, nil
}

// GetUnmatched lists events that never resolved to an internal worker, for
// the manual linking screen. Not an error state: the worker may simply not
// be registered yet.
func (r Repository) GetUnmatched(ctx context.Context, filter Filter) ([]GetUnmatchedResponse, int, error) {
	whereQuery := `
		WHERE
			a.deleted_at IS NULL
			AND a.user_id IS NULL`
	args := []interface{}{}

	if filter.SiteID != nil {
		whereQuery += ` AND a.site_id = ?`
		args = append(args, *filter.SiteID)
	}

	limitQuery, offsetQuery := paging(filter)

	query := `
		SELECT
			a.id,
			a.site_id,
			a.external_worker_id,
			a.checkin_at,
			a.result,
			a.source
		FROM attendance_events a
	` + whereQuery + ` ORDER BY a.checkin_at DESC` + limitQuery + offsetQuery

	rows, err := r.QueryContext(ctx, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting unmatched attendance"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetUnmatchedResponse
	for rows.Next() {
		var detail GetUnmatchedResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.SiteID,
			&detail.ExternalWorkerID,
			&detail.CheckinAt,
			&detail.Result,
			&detail.Source,
		); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning unmatched row"), http.StatusInternalServerError)
		}
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading unmatched rows"), http.StatusInternalServerError)
	}

	countQuery := `SELECT count(a.id) FROM attendance_events a ` + whereQuery

	var count int
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting unmatched rows"), http.StatusInternalServerError)
	}

	return list, count, nil
}

func paging(filter Filter) (string, string) {
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
	return limitQuery, offsetQuery
}
