package worker

import (
	"context"

	"worksync/backend/internal/repository/postgres/worker"
)

type Worker interface {
	GetList(ctx context.Context, filter worker.Filter) ([]worker.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id int) (worker.GetDetailByIdResponse, error)
	GetCounts(ctx context.Context) (worker.Counts, error)
}
