package sync

import (
	"time"

	"worksync/backend/internal/repository/postgres/audit"
	"worksync/backend/internal/repository/postgres/syncerror"
	"worksync/backend/internal/repository/postgres/worker"
)

const (
	SourceSnapshot = "legacy-snapshot"
	SourceReplica  = "replica-batch"
)

// Run is the outcome of one page (replica path) or one full pass (snapshot
// path). A full replica sync is a chain of runs: feed NextOffset back in
// until HasMore is false.
type Run struct {
	Source      string   `json:"source"`
	Offset      int      `json:"offset"`
	Limit       int      `json:"limit"`
	Fetched     int      `json:"fetched"`
	Total       int      `json:"total"`
	HasMore     bool     `json:"has_more"`
	NextOffset  *int     `json:"next_offset"`
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Deactivated int      `json:"deactivated"`
	Errors      []string `json:"errors"`
}

type HealthReport struct {
	LastFullSync  *time.Time              `json:"last_full_sync"`
	ReplicaStatus string                  `json:"replica_status"`
	Workers       worker.Counts           `json:"workers"`
	Errors        syncerror.StatusCounts  `json:"errors"`
	RecentSyncs   []audit.RecentEntry     `json:"recent_syncs"`
}
