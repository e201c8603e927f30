package sync

import (
	"context"
	"time"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/repository/postgres/audit"
	"worksync/backend/internal/repository/postgres/syncerror"
	"worksync/backend/internal/repository/postgres/worker"
	"worksync/backend/internal/repository/replica"
)

type WorkerStore interface {
	GetByExternalID(ctx context.Context, externalWorkerID string) (entity.Worker, error)
	Create(ctx context.Context, request worker.Candidate) error
	Update(ctx context.Context, id int, request worker.Candidate) error
	DeactivateAbsent(ctx context.Context, seen []string) (int, error)
	GetCounts(ctx context.Context) (worker.Counts, error)
}

type ReplicaSource interface {
	Ping(ctx context.Context) error
	ListEmployeesPage(ctx context.Context, offset, limit int) (replica.Page, error)
	ListAllIDs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, name, phone string) ([]replica.Employee, error)
}

type ErrorLedger interface {
	Create(ctx context.Context, request syncerror.CreateRequest) (entity.SyncError, error)
	GetStatusCounts(ctx context.Context) (syncerror.StatusCounts, error)
}

type AuditSink interface {
	Log(ctx context.Context, entry audit.Entry) error
	Recent(ctx context.Context, targetType string, limit int) ([]audit.RecentEntry, error)
}

// Coordinator remembers when the last complete pass finished. The
// single-flight lock lives with the trigger, not here; the engine itself is
// callable from anything that already holds the lock.
type Coordinator interface {
	StampFullSync(ctx context.Context, at time.Time) error
	LastFullSync(ctx context.Context) (*time.Time, error)
}
