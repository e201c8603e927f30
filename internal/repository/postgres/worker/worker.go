package worker

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
	"github.com/uptrace/bun"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	whereQuery := `
		WHERE
			w.deleted_at IS NULL`
	args := []interface{}{}

	if filter.Search != nil {
		whereQuery += ` AND (w.name ILIKE ? OR w.phone LIKE ? OR w.external_worker_id ILIKE ?)`
		pattern := "%" + *filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.IsActive != nil {
		whereQuery += ` AND w.is_active = ?`
		args = append(args, *filter.IsActive)
	}

	limitQuery, offsetQuery := paging(filter)

	query := `
		SELECT
			w.id,
			w.external_worker_id,
			w.name,
			w.phone,
			w.company_name,
			w.trade,
			w.is_active
		FROM workers w
	` + whereQuery + ` ORDER BY w.name` + limitQuery + offsetQuery

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting workers"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []GetListResponse
	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.ExternalWorkerID,
			&detail.Name,
			&detail.Phone,
			&detail.CompanyName,
			&detail.Trade,
			&detail.IsActive,
		); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning worker row"), http.StatusInternalServerError)
		}
		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading worker rows"), http.StatusInternalServerError)
	}

	countQuery := `SELECT count(w.id) FROM workers w ` + whereQuery

	var count int
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting workers"), http.StatusInternalServerError)
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (GetDetailByIdResponse, error) {
	var detail GetDetailByIdResponse

	err := r.QueryRowContext(ctx, `
		SELECT
			w.id,
			w.external_worker_id,
			w.name,
			w.phone,
			w.birth_date,
			w.company_name,
			w.position,
			w.trade,
			w.is_active
		FROM workers w
		WHERE w.id = ? AND w.deleted_at IS NULL
	`, id).Scan(
		&detail.ID,
		&detail.ExternalWorkerID,
		&detail.Name,
		&detail.Phone,
		&detail.BirthDate,
		&detail.CompanyName,
		&detail.Position,
		&detail.Trade,
		&detail.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "selecting worker"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) GetByExternalID(ctx context.Context, externalWorkerID string) (entity.Worker, error) {
	var detail entity.Worker

	err := r.NewSelect().Model(&detail).
		Where("external_worker_id = ? AND deleted_at IS NULL", externalWorkerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Worker{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.Worker{}, errors.Wrap(err, "selecting worker by external id")
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, request Candidate) error {
	now := time.Now()
	active := request.IsActive

	detail := entity.Worker{
		ExternalWorkerID: &request.ExternalWorkerID,
		Name:             &request.Name,
		Phone:            request.Phone,
		BirthDate:        request.BirthDate,
		CompanyName:      request.CompanyName,
		Position:         request.Position,
		Trade:            request.Trade,
		IsActive:         &active,
	}
	detail.CreatedAt = &now

	_, err := r.NewInsert().Model(&detail).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "creating worker")
	}

	return nil
}

func (r Repository) Update(ctx context.Context, id int, request Candidate) error {
	now := time.Now()
	active := request.IsActive

	detail := entity.Worker{
		ExternalWorkerID: &request.ExternalWorkerID,
		Name:             &request.Name,
		Phone:            request.Phone,
		BirthDate:        request.BirthDate,
		CompanyName:      request.CompanyName,
		Position:         request.Position,
		Trade:            request.Trade,
		IsActive:         &active,
	}
	detail.ID = id
	detail.UpdatedAt = &now

	_, err := r.NewUpdate().Model(&detail).
		Column("external_worker_id", "name", "phone", "birth_date",
			"company_name", "position", "trade", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "updating worker")
	}

	return nil
}

// DeactivateAbsent marks every linked worker whose external id is not in
// seen as inactive. Runs only after a complete upstream pass; historical
// attendance and points stay intact because nothing is deleted.
func (r Repository) DeactivateAbsent(ctx context.Context, seen []string) (int, error) {
	query := r.NewUpdate().Model((*entity.Worker)(nil)).
		Set("is_active = false").
		Set("updated_at = now()").
		Where("external_worker_id IS NOT NULL").
		Where("deleted_at IS NULL").
		Where("is_active = true")

	if len(seen) > 0 {
		query = query.Where("external_worker_id NOT IN (?)", bun.In(seen))
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "deactivating absent workers")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deactivated workers")
	}

	return int(affected), nil
}

func (r Repository) GetCounts(ctx context.Context) (Counts, error) {
	var counts Counts

	err := r.QueryRowContext(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE external_worker_id IS NOT NULL),
			count(*) FILTER (WHERE phone IS NULL OR phone = ''),
			count(*) FILTER (WHERE is_active = false)
		FROM workers
		WHERE deleted_at IS NULL
	`).Scan(&counts.Total, &counts.Linked, &counts.MissingPhone, &counts.Deactivated)
	if err != nil {
		return Counts{}, web.NewRequestError(errors.Wrap(err, "counting workers"), http.StatusInternalServerError)
	}

	return counts, nil
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
