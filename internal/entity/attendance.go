package entity

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AttendanceResultSuccess = "SUCCESS"
	AttendanceResultFail    = "FAIL"

	AttendanceSourceDevice = "DEVICE"
	AttendanceSourceManual = "MANUAL"
)

// AttendanceEvent is immutable once created. UserID stays nil until the
// external worker id is linked to an internal worker.
type AttendanceEvent struct {
	bun.BaseModel `bun:"table:attendance_events"`

	BasicEntity
	SiteID           *string    `json:"site_id"   bun:"site_id"`
	UserID           *int       `json:"user_id"   bun:"user_id"`
	ExternalWorkerID *string    `json:"external_worker_id" bun:"external_worker_id"`
	CheckinAt        *time.Time `json:"checkin_at" bun:"checkin_at"`
	Result           *string    `json:"result"    bun:"result"`
	Source           *string    `json:"source"    bun:"source"`
}
