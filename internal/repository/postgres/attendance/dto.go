package attendance

import "time"

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	SiteID *string
	Result *string
}

// CreateRequest is one event of a batch submission. Everything is a pointer
// so validation can tell "absent" from "zero".
type CreateRequest struct {
	SiteID           *string `json:"site_id" form:"site_id"`
	ExternalWorkerID *string `json:"external_worker_id" form:"external_worker_id"`
	CheckinAt        *string `json:"checkin_at" form:"checkin_at"`
	Result           *string `json:"result" form:"result"`
	Source           *string `json:"source" form:"source"`
}

type GetTodayResponse struct {
	ID               int        `json:"id"`
	SiteID           *string    `json:"site_id"`
	UserID           *int       `json:"user_id"`
	ExternalWorkerID *string    `json:"external_worker_id"`
	WorkerName       *string    `json:"worker_name"`
	CompanyName      *string    `json:"company_name"`
	CheckinAt        *time.Time `json:"checkin_at"`
	Result           *string    `json:"result"`
	Source           *string    `json:"source"`
}

type GetUnmatchedResponse struct {
	ID               int        `json:"id"`
	SiteID           *string    `json:"site_id"`
	ExternalWorkerID *string    `json:"external_worker_id"`
	CheckinAt        *time.Time `json:"checkin_at"`
	Result           *string    `json:"result"`
	Source           *string    `json:"source"`
}
