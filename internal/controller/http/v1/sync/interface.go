package sync

import (
	"context"

	"worksync/backend/internal/repository/replica"
	"worksync/backend/internal/service/snapshot"
	"worksync/backend/internal/service/sync"
)

type Engine interface {
	SyncReplicaPage(ctx context.Context, offset, limit int) (sync.Run, error)
	SyncSnapshot(ctx context.Context, records []snapshot.WorkerDirectoryRecord) (sync.Run, error)
	SearchReplica(ctx context.Context, name, phone string) ([]replica.Employee, error)
	Health(ctx context.Context) (sync.HealthReport, error)
}

// Locker is the single-flight guard around mutating sync triggers.
type Locker interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}
