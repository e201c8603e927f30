// Package ingest takes attendance batches from edge devices and turns them
// into durable events. Resolution against the worker directory happens at
// ingest time; unresolved events are stored anyway and surface on the
// unmatched list.
package ingest

import (
	"context"
	"fmt"
	"time"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/repository/postgres"
	"worksync/backend/internal/repository/postgres/attendance"
	"worksync/backend/internal/repository/postgres/syncerror"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type EventStore interface {
	Insert(ctx context.Context, event entity.AttendanceEvent) (bool, error)
}

type WorkerResolver interface {
	GetByExternalID(ctx context.Context, externalWorkerID string) (entity.Worker, error)
}

type ErrorLedger interface {
	Create(ctx context.Context, request syncerror.CreateRequest) (entity.SyncError, error)
}

type Service struct {
	events  EventStore
	workers WorkerResolver
	ledger  ErrorLedger
	log     *logrus.Logger
}

func NewService(events EventStore, workers WorkerResolver, ledger ErrorLedger, log *logrus.Logger) *Service {
	return &Service{events: events, workers: workers, ledger: ledger, log: log}
}

// BatchResult summarizes one submission. Inserted+Duplicates+Unmatched do
// not sum to the batch size when some events were invalid; invalid events
// are counted separately and never stored.
type BatchResult struct {
	Received   int      `json:"received"`
	Inserted   int      `json:"inserted"`
	Duplicates int      `json:"duplicates"`
	Unmatched  int      `json:"unmatched"`
	Invalid    int      `json:"invalid"`
	Errors     []string `json:"errors"`
}

// IngestBatch validates, resolves and stores every event independently. A
// bad event costs only itself; the rest of the batch still lands.
func (s *Service) IngestBatch(ctx context.Context, requests []attendance.CreateRequest) (BatchResult, error) {
	result := BatchResult{Received: len(requests), Errors: []string{}}

	for i, request := range requests {
		event, reason := s.buildEvent(ctx, request)
		if reason != "" {
			result.Invalid++
			message := fmt.Sprintf("event %d: %s", i, reason)
			result.Errors = append(result.Errors, message)
			s.recordInvalid(ctx, request.SiteID, message)
			continue
		}

		if event.UserID == nil {
			result.Unmatched++
		}

		inserted, err := s.events.Insert(ctx, event)
		if err != nil {
			return result, errors.Wrapf(err, "storing event %d", i)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}

// buildEvent returns the storable event, or a non-empty rejection reason.
// Unknown external ids are not rejections: the event is kept with a nil
// user id so it can be linked later.
func (s *Service) buildEvent(ctx context.Context, request attendance.CreateRequest) (entity.AttendanceEvent, string) {
	if request.SiteID == nil || *request.SiteID == "" {
		return entity.AttendanceEvent{}, "site_id is required"
	}
	if request.ExternalWorkerID == nil || *request.ExternalWorkerID == "" {
		return entity.AttendanceEvent{}, "external_worker_id is required"
	}
	if request.CheckinAt == nil {
		return entity.AttendanceEvent{}, "checkin_at is required"
	}

	checkinAt, err := time.Parse(time.RFC3339, *request.CheckinAt)
	if err != nil {
		return entity.AttendanceEvent{}, fmt.Sprintf("checkin_at %q is not RFC3339", *request.CheckinAt)
	}

	eventResult := entity.AttendanceResultSuccess
	if request.Result != nil {
		switch *request.Result {
		case entity.AttendanceResultSuccess, entity.AttendanceResultFail:
			eventResult = *request.Result
		default:
			return entity.AttendanceEvent{}, fmt.Sprintf("result %q is not SUCCESS or FAIL", *request.Result)
		}
	}

	source := entity.AttendanceSourceDevice
	if request.Source != nil {
		switch *request.Source {
		case entity.AttendanceSourceDevice, entity.AttendanceSourceManual:
			source = *request.Source
		default:
			return entity.AttendanceEvent{}, fmt.Sprintf("source %q is not DEVICE or MANUAL", *request.Source)
		}
	}

	event := entity.AttendanceEvent{
		SiteID:           request.SiteID,
		ExternalWorkerID: request.ExternalWorkerID,
		CheckinAt:        &checkinAt,
		Result:           &eventResult,
		Source:           &source,
	}

	worker, err := s.workers.GetByExternalID(ctx, *request.ExternalWorkerID)
	if errors.Is(err, postgres.ErrNotFound) {
		return event, ""
	}
	if err != nil {
		s.log.WithError(err).WithField("external_worker_id", *request.ExternalWorkerID).
			Warn("resolving worker failed, storing event unmatched")
		return event, ""
	}

	event.UserID = &worker.ID
	return event, ""
}

func (s *Service) recordInvalid(ctx context.Context, siteID *string, message string) {
	if _, err := s.ledger.Create(ctx, syncerror.CreateRequest{
		SyncType:     entity.SyncTypeAttendance,
		ErrorCode:    "INVALID_EVENT",
		ErrorMessage: message,
		SiteID:       siteID,
	}); err != nil {
		s.log.WithError(err).Warn("recording invalid attendance event failed")
	}
}
