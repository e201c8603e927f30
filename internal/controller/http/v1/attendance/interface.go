package attendance

import (
	"context"

	"worksync/backend/internal/repository/postgres/attendance"
	"worksync/backend/internal/service/ingest"
)

type Ingester interface {
	IngestBatch(ctx context.Context, requests []attendance.CreateRequest) (ingest.BatchResult, error)
}

type Attendance interface {
	GetToday(ctx context.Context, filter attendance.Filter) ([]attendance.GetTodayResponse, int, error)
	GetUnmatched(ctx context.Context, filter attendance.Filter) ([]attendance.GetUnmatchedResponse, int, error)
}
