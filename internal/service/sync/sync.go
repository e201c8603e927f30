// Package sync reconciles the internal worker directory against its two
// upstream sources: the paged replica of the external access-control
// database and the single-file snapshot dropped by the on-site terminal.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/repository/postgres"
	"worksync/backend/internal/repository/postgres/audit"
	"worksync/backend/internal/repository/postgres/syncerror"
	"worksync/backend/internal/repository/postgres/worker"
	"worksync/backend/internal/repository/replica"
	"worksync/backend/internal/service/snapshot"
	"worksync/backend/internal/service/socialno"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrSyncInFlight is returned by the trigger path when another sync holds
// the single-flight lock.
var ErrSyncInFlight = errors.New("a sync is already in flight")

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type Service struct {
	workers WorkerStore
	replica ReplicaSource
	ledger  ErrorLedger
	audit   AuditSink
	coord   Coordinator
	log     *logrus.Logger
}

func NewService(
	workers WorkerStore,
	replicaSource ReplicaSource,
	ledger ErrorLedger,
	auditSink AuditSink,
	coord Coordinator,
	log *logrus.Logger,
) *Service {
	return &Service{
		workers: workers,
		replica: replicaSource,
		ledger:  ledger,
		audit:   auditSink,
		coord:   coord,
		log:     log,
	}
}

// SyncReplicaPage processes exactly one (offset, limit) page. Per-record
// failures are absorbed into the run; only transport and store failures
// propagate. Deactivation of workers absent upstream happens strictly on
// the final page of a pass, never on an intermediate one.
func (s *Service) SyncReplicaPage(ctx context.Context, offset, limit int) (Run, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	run := Run{Source: SourceReplica, Offset: offset, Limit: limit, Errors: []string{}}

	page, err := s.replica.ListEmployeesPage(ctx, offset, limit)
	if err != nil {
		return run, errors.Wrap(err, "fetching replica page")
	}

	run.Fetched = len(page.Employees)
	run.Total = page.Total

	for _, employee := range page.Employees {
		s.applyEmployee(ctx, &run, employee)
	}

	run.HasMore = offset+run.Fetched < page.Total
	if run.HasMore {
		next := offset + run.Fetched
		run.NextOffset = &next
	} else {
		// Final page: the pass is complete, so workers that vanished from
		// the replica lose access now. A transport failure here leaves
		// everyone active; the caller retries the page.
		seen, err := s.replica.ListAllIDs(ctx)
		if err != nil {
			return run, errors.Wrap(err, "listing replica ids for deactivation")
		}

		deactivated, err := s.workers.DeactivateAbsent(ctx, seen)
		if err != nil {
			return run, errors.Wrap(err, "deactivating absent workers")
		}
		run.Deactivated = deactivated

		if err := s.coord.StampFullSync(ctx, time.Now()); err != nil {
			s.log.WithError(err).Warn("stamping full sync time failed")
		}
	}

	s.logRun(ctx, "WORKER_SYNC_PAGE", run)
	return run, nil
}

// SyncSnapshot applies an already-parsed snapshot as one full pass over the
// directory. The snapshot is a directory hint, not the system of record: it
// never deactivates anyone and never clobbers fields it does not carry.
func (s *Service) SyncSnapshot(ctx context.Context, records []snapshot.WorkerDirectoryRecord) (Run, error) {
	run := Run{Source: SourceSnapshot, Fetched: len(records), Total: len(records), Errors: []string{}}

	for _, record := range records {
		s.applyDirectoryRecord(ctx, &run, record)
	}

	s.logRun(ctx, "SNAPSHOT_SYNC", run)
	return run, nil
}

func (s *Service) SearchReplica(ctx context.Context, name, phone string) ([]replica.Employee, error) {
	return s.replica.Search(ctx, name, phone)
}

func (s *Service) applyEmployee(ctx context.Context, run *Run, employee replica.Employee) {
	if employee.EmplCd == "" || employee.Name == "" {
		s.recordError(ctx, run, employee.EmplCd, "MISSING_REQUIRED_FIELD",
			"employee is missing id or name")
		return
	}

	birthDate := socialno.DecodeBirthDate(employee.SocialNo)
	if birthDate == nil {
		s.recordError(ctx, run, employee.EmplCd, "INVALID_BIRTH_DATE",
			fmt.Sprintf("social number prefix %q does not decode", employee.SocialNo))
		return
	}

	candidate := worker.Candidate{
		ExternalWorkerID: employee.EmplCd,
		Name:             employee.Name,
		BirthDate:        birthDate,
		IsActive:         employee.IsActive,
	}
	if employee.Phone != "" {
		candidate.Phone = &employee.Phone
	}
	if employee.CompanyName != "" {
		candidate.CompanyName = &employee.CompanyName
	}

	s.upsert(ctx, run, candidate, false)
}

func (s *Service) applyDirectoryRecord(ctx context.Context, run *Run, record snapshot.WorkerDirectoryRecord) {
	if record.ExternalWorkerID == "" || record.Name == "" {
		s.recordError(ctx, run, record.ExternalWorkerID, "MISSING_REQUIRED_FIELD",
			"directory record is missing id or name")
		return
	}

	candidate := worker.Candidate{
		ExternalWorkerID: record.ExternalWorkerID,
		Name:             record.Name,
		CompanyName:      record.CompanyName,
		Position:         record.Position,
		Trade:            record.Trade,
		IsActive:         true,
	}

	s.upsert(ctx, run, candidate, true)
}

// upsert is keyed by external worker id: create, update when a tracked
// field differs, otherwise skip. Order inside a page does not matter; a
// replayed page counts every record as skipped.
func (s *Service) upsert(ctx context.Context, run *Run, candidate worker.Candidate, partial bool) {
	existing, err := s.workers.GetByExternalID(ctx, candidate.ExternalWorkerID)
	if errors.Is(err, postgres.ErrNotFound) {
		if err := s.workers.Create(ctx, candidate); err != nil {
			s.recordError(ctx, run, candidate.ExternalWorkerID, "STORE_WRITE_FAILED", err.Error())
			return
		}
		run.Created++
		return
	}
	if err != nil {
		s.recordError(ctx, run, candidate.ExternalWorkerID, "STORE_READ_FAILED", err.Error())
		return
	}

	if partial {
		// Sources that do not carry a field must not erase it.
		if candidate.Phone == nil {
			candidate.Phone = existing.Phone
		}
		if candidate.BirthDate == nil {
			candidate.BirthDate = existing.BirthDate
		}
		if existing.IsActive != nil {
			candidate.IsActive = *existing.IsActive
		}
	} else {
		if candidate.Position == nil {
			candidate.Position = existing.Position
		}
		if candidate.Trade == nil {
			candidate.Trade = existing.Trade
		}
	}

	if !changed(existing, candidate) {
		run.Skipped++
		return
	}

	if err := s.workers.Update(ctx, existing.ID, candidate); err != nil {
		s.recordError(ctx, run, candidate.ExternalWorkerID, "STORE_WRITE_FAILED", err.Error())
		return
	}
	run.Updated++
}

func changed(existing entity.Worker, candidate worker.Candidate) bool {
	if strValue(existing.Name) != candidate.Name {
		return true
	}
	if strValue(existing.Phone) != strValue(candidate.Phone) {
		return true
	}
	if strValue(existing.BirthDate) != strValue(candidate.BirthDate) {
		return true
	}
	if strValue(existing.CompanyName) != strValue(candidate.CompanyName) {
		return true
	}
	if strValue(existing.Position) != strValue(candidate.Position) {
		return true
	}
	if strValue(existing.Trade) != strValue(candidate.Trade) {
		return true
	}
	if existing.IsActive == nil || *existing.IsActive != candidate.IsActive {
		return true
	}
	return false
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// recordError captures a per-record failure without stopping the batch: the
// run collects the message and the ledger gets an OPEN entry.
func (s *Service) recordError(ctx context.Context, run *Run, externalWorkerID, code, message string) {
	run.Errors = append(run.Errors, fmt.Sprintf("%s: %s", externalWorkerID, message))
	run.Skipped++

	if _, err := s.ledger.Create(ctx, syncerror.CreateRequest{
		SyncType:     entity.SyncTypeWorker,
		ErrorCode:    code,
		ErrorMessage: fmt.Sprintf("%s: %s", externalWorkerID, message),
	}); err != nil {
		s.log.WithError(err).WithField("external_worker_id", externalWorkerID).
			Warn("recording sync error failed")
	}
}

func (s *Service) logRun(ctx context.Context, action string, run Run) {
	details, err := json.Marshal(run)
	if err != nil {
		details = []byte("{}")
	}

	if err := s.audit.Log(ctx, audit.Entry{
		Action:     action,
		ActorID:    "system",
		TargetType: "WORKER_SYNC",
		TargetID:   fmt.Sprintf("%s:%d", run.Source, run.Offset),
		Details:    string(details),
	}); err != nil {
		s.log.WithError(err).Warn("writing sync audit log failed")
	}

	s.log.WithFields(logrus.Fields{
		"source":      run.Source,
		"offset":      run.Offset,
		"fetched":     run.Fetched,
		"created":     run.Created,
		"updated":     run.Updated,
		"skipped":     run.Skipped,
		"deactivated": run.Deactivated,
		"errors":      len(run.Errors),
		"has_more":    run.HasMore,
	}).Info("sync run finished")
}
