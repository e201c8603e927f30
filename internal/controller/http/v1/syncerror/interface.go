package syncerror

import (
	"context"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/repository/postgres/syncerror"
)

type SyncError interface {
	GetList(ctx context.Context, filter syncerror.Filter) ([]syncerror.GetListResponse, int, error)
	UpdateStatus(ctx context.Context, request syncerror.UpdateStatusRequest) (entity.SyncError, error)
}
