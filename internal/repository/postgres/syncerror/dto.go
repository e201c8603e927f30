package syncerror

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	Status   *string
	SyncType *string
	SiteID   *string
}

type CreateRequest struct {
	SyncType     string  `json:"sync_type"`
	ErrorCode    string  `json:"error_code"`
	ErrorMessage string  `json:"error_message"`
	SiteID       *string `json:"site_id"`
}

const (
	RetryKeep  = ""
	RetryBump  = "bump"
	RetryReset = "reset"
)

// UpdateStatusRequest drives the one allowed lifecycle operation. Retry
// controls what happens to retry_count alongside the transition.
type UpdateStatusRequest struct {
	ID     int    `json:"id" form:"id"`
	Status string `json:"status" form:"status"`
	Retry  string `json:"retry" form:"retry"`
}

type GetListResponse struct {
	ID           int     `json:"id"`
	SyncType     *string `json:"sync_type"`
	ErrorCode    *string `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
	SiteID       *string `json:"site_id"`
	RetryCount   *int    `json:"retry_count"`
	Status       *string `json:"status"`
	CreatedAt    *string `json:"created_at"`
}

type StatusCounts struct {
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Ignored  int `json:"ignored"`
}
