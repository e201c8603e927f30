// Package replica reads worker records from the managed read copy of the
// external access-control database. All access is read-only and every query
// carries a timeout so a stalled replica cannot hang a sync page.
package replica

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const queryTimeout = 10 * time.Second

// Active employees carry state_flag 'W'; anything else means the worker has
// left the external system.
const activeStateFlag = "W"

const employeeSelect = `
	e.empl_cd, e.empl_nm, e.part_cd, COALESCE(p.part_nm, ''),
	COALESCE(e.tel_no, ''), COALESCE(e.social_no, ''),
	COALESCE(e.gojo_cd, ''), COALESCE(e.jijo_cd, ''),
	COALESCE(e.care_cd, ''), COALESCE(e.role_cd, ''),
	e.state_flag, COALESCE(e.entr_day, ''), COALESCE(e.retr_day, ''),
	e.update_dt`

const employeeFrom = `
	FROM employee e
	LEFT JOIN partner p ON e.site_cd = p.site_cd AND e.part_cd = p.part_cd`

type Repository struct {
	db     *sql.DB
	siteCd string
}

func NewRepository(dsn, siteCd string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening replica connection")
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Repository{db: db, siteCd: siteCd}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping probes replica connectivity before a sync pass.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return errors.Wrap(r.db.PingContext(ctx), "pinging replica")
}

// ListEmployeesPage fetches one page of employees ordered by employee code,
// plus the total row count so callers can compute the next cursor.
func (r *Repository) ListEmployeesPage(ctx context.Context, offset, limit int) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) `+employeeFrom+` WHERE e.site_cd = ?`, r.siteCd,
	).Scan(&total)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting replica employees")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeSelect+employeeFrom+`
		 WHERE e.site_cd = ?
		 ORDER BY e.empl_cd ASC
		 LIMIT ? OFFSET ?`,
		r.siteCd, limit, offset,
	)
	if err != nil {
		return Page{}, errors.Wrap(err, "selecting replica employees")
	}
	defer rows.Close()

	employees, err := scanEmployees(rows)
	if err != nil {
		return Page{}, err
	}

	return Page{Employees: employees, Total: total}, nil
}

// ListAllIDs returns every employee code on the replica for this site. Used
// once per full pass, after the final page, to find workers that vanished
// upstream.
func (r *Repository) ListAllIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT empl_cd FROM employee WHERE site_cd = ?`, r.siteCd)
	if err != nil {
		return nil, errors.Wrap(err, "selecting replica employee ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning employee id")
		}
		ids = append(ids, id)
	}

	return ids, errors.Wrap(rows.Err(), "reading employee ids")
}

// Search looks up employees by name or phone for manual reconciliation.
func (r *Repository) Search(ctx context.Context, name, phone string) ([]Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + employeeSelect + employeeFrom + ` WHERE e.site_cd = ?`
	args := []interface{}{r.siteCd}

	if name != "" {
		query += ` AND e.empl_nm LIKE ?`
		args = append(args, "%"+name+"%")
	}
	if phone != "" {
		query += ` AND e.tel_no LIKE ?`
		args = append(args, "%"+phone+"%")
	}
	query += ` ORDER BY e.update_dt DESC LIMIT 20`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "searching replica employees")
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func scanEmployees(rows *sql.Rows) ([]Employee, error) {
	var employees []Employee
	for rows.Next() {
		var e Employee
		var updatedAt sql.NullTime
		if err := rows.Scan(
			&e.EmplCd, &e.Name, &e.PartCd, &e.CompanyName,
			&e.Phone, &e.SocialNo,
			&e.GojoCd, &e.JijoCd, &e.CareCd, &e.RoleCd,
			&e.StateFlag, &e.EntrDay, &e.RetrDay,
			&updatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scanning replica employee")
		}
		if updatedAt.Valid {
			e.UpdatedAt = updatedAt.Time
		}
		e.IsActive = e.StateFlag == activeStateFlag
		employees = append(employees, e)
	}
	return employees, errors.Wrap(rows.Err(), "reading replica employees")
}
