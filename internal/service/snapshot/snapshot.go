// Package snapshot decodes the single-file access-control export dropped by
// the on-site terminal. The file is SQLite, but its text columns hold EUC-KR
// bytes despite the format's UTF-8 contract, so every column is read as a
// blob and decoded explicitly. When the decode fails the raw bytes are kept
// as-is; genuinely corrupt columns can therefore surface as mojibake, there
// is no checksum to catch them.
package snapshot

import (
	"bytes"
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/korean"
)

// WorkerDirectoryRecord is one employee row from the snapshot. Never mutated
// after parsing; a fresh snapshot supersedes the whole set.
type WorkerDirectoryRecord struct {
	ExternalWorkerID string  `json:"external_worker_id"`
	Name             string  `json:"name"`
	CompanyName      *string `json:"company_name"`
	Position         *string `json:"position"`
	Trade            *string `json:"trade"`
	LastSeen         *string `json:"last_seen"`
}

type Stats struct {
	TotalRows int      `json:"total_rows"`
	Companies []string `json:"companies"`
	LastSeen  *string  `json:"last_seen"`
}

const employeeQuery = `
	SELECT
		CAST(empl_cd AS BLOB),
		CAST(empl_nm AS BLOB),
		CAST(part_nm AS BLOB),
		CAST(jijo_nm AS BLOB),
		CAST(gojo_nm AS BLOB),
		CAST(last_dt AS BLOB)
	FROM employee`

// Parse reads the whole snapshot at path and returns its worker directory in
// row order. Rows missing the employee code or name are terminal placeholder
// rows and are dropped silently. Any failure to read the file as SQLite is
// fatal: no partial result is returned.
func Parse(ctx context.Context, path string) ([]WorkerDirectoryRecord, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening snapshot")
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, employeeQuery)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot is not a readable export")
	}
	defer rows.Close()

	var records []WorkerDirectoryRecord
	for rows.Next() {
		var emplCd, emplNm, partNm, jijoNm, gojoNm, lastDt []byte
		if err := rows.Scan(&emplCd, &emplNm, &partNm, &jijoNm, &gojoNm, &lastDt); err != nil {
			return nil, errors.Wrap(err, "scanning employee row")
		}

		externalWorkerID := decodeLegacy(emplCd)
		name := decodeLegacy(emplNm)
		if externalWorkerID == nil || *externalWorkerID == "" || name == nil || *name == "" {
			continue
		}

		records = append(records, WorkerDirectoryRecord{
			ExternalWorkerID: *externalWorkerID,
			Name:             *name,
			CompanyName:      decodeLegacy(partNm),
			Position:         decodeLegacy(jijoNm),
			Trade:            decodeLegacy(gojoNm),
			LastSeen:         decodeLegacy(lastDt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading employee rows")
	}

	return records, nil
}

// GetStats summarizes the snapshot without materializing every record: total
// row count, the distinct company names, and the most recent last-seen value.
func GetStats(ctx context.Context, path string) (Stats, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return Stats{}, errors.Wrap(err, "opening snapshot")
	}
	defer db.Close()

	var stats Stats
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employee`).Scan(&stats.TotalRows); err != nil {
		return Stats{}, errors.Wrap(err, "snapshot is not a readable export")
	}

	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT CAST(part_nm AS BLOB) FROM employee WHERE part_nm IS NOT NULL`)
	if err != nil {
		return Stats{}, errors.Wrap(err, "selecting companies")
	}
	defer rows.Close()

	for rows.Next() {
		var partNm []byte
		if err := rows.Scan(&partNm); err != nil {
			return Stats{}, errors.Wrap(err, "scanning company row")
		}
		if company := decodeLegacy(partNm); company != nil && *company != "" {
			stats.Companies = append(stats.Companies, *company)
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, errors.Wrap(err, "reading company rows")
	}

	var lastDt []byte
	if err := db.QueryRowContext(ctx,
		`SELECT MAX(CAST(last_dt AS BLOB)) FROM employee`).Scan(&lastDt); err != nil {
		return Stats{}, errors.Wrap(err, "selecting last seen")
	}
	stats.LastSeen = decodeLegacy(lastDt)

	return stats, nil
}

// decodeLegacy converts EUC-KR bytes to a UTF-8 string. x/text's decoder
// substitutes U+FFFD instead of failing, so a replacement rune in the output
// marks a failed decode and the raw bytes are returned unchanged.
func decodeLegacy(raw []byte) *string {
	if raw == nil {
		return nil
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil || bytes.ContainsRune(decoded, '�') {
		fallback := string(raw)
		return &fallback
	}

	value := string(decoded)
	return &value
}
