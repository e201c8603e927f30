package entity

import (
	"github.com/uptrace/bun"
)

const (
	SyncErrorStatusOpen     = "OPEN"
	SyncErrorStatusResolved = "RESOLVED"
	SyncErrorStatusIgnored  = "IGNORED"

	SyncTypeAttendance = "attendance"
	SyncTypeWorker     = "worker"
)

// SyncError rows are an audit trail: status moves OPEN -> RESOLVED or
// OPEN -> IGNORED and nothing is ever deleted.
type SyncError struct {
	bun.BaseModel `bun:"table:sync_errors"`

	BasicEntity
	SyncType     *string `json:"sync_type"     bun:"sync_type"`
	ErrorCode    *string `json:"error_code"    bun:"error_code"`
	ErrorMessage *string `json:"error_message" bun:"error_message"`
	SiteID       *string `json:"site_id"       bun:"site_id"`
	RetryCount   *int    `json:"retry_count"   bun:"retry_count"`
	Status       *string `json:"status"        bun:"status"`
}
