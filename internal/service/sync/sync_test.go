package sync

import (
	"context"
	"testing"
	"time"

	"worksync/backend/internal/entity"
	"worksync/backend/internal/repository/postgres"
	"worksync/backend/internal/repository/postgres/audit"
	"worksync/backend/internal/repository/postgres/syncerror"
	"worksync/backend/internal/repository/postgres/worker"
	"worksync/backend/internal/repository/replica"
	"worksync/backend/internal/service/snapshot"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkerStore struct {
	byExternalID map[string]entity.Worker
	nextID       int
	deactivated  []string
}

func newFakeWorkerStore() *fakeWorkerStore {
	return &fakeWorkerStore{byExternalID: map[string]entity.Worker{}}
}

func (f *fakeWorkerStore) GetByExternalID(_ context.Context, externalWorkerID string) (entity.Worker, error) {
	w, ok := f.byExternalID[externalWorkerID]
	if !ok {
		return entity.Worker{}, postgres.ErrNotFound
	}
	return w, nil
}

func (f *fakeWorkerStore) Create(_ context.Context, request worker.Candidate) error {
	f.nextID++
	externalID := request.ExternalWorkerID
	name := request.Name
	isActive := request.IsActive

	w := entity.Worker{
		ExternalWorkerID: &externalID,
		Name:             &name,
		Phone:            request.Phone,
		BirthDate:        request.BirthDate,
		CompanyName:      request.CompanyName,
		Position:         request.Position,
		Trade:            request.Trade,
		IsActive:         &isActive,
	}
	w.ID = f.nextID
	f.byExternalID[externalID] = w
	return nil
}

func (f *fakeWorkerStore) Update(_ context.Context, id int, request worker.Candidate) error {
	w, ok := f.byExternalID[request.ExternalWorkerID]
	if !ok || w.ID != id {
		return postgres.ErrNotFound
	}
	name := request.Name
	isActive := request.IsActive
	w.Name = &name
	w.Phone = request.Phone
	w.BirthDate = request.BirthDate
	w.CompanyName = request.CompanyName
	w.Position = request.Position
	w.Trade = request.Trade
	w.IsActive = &isActive
	f.byExternalID[request.ExternalWorkerID] = w
	return nil
}

func (f *fakeWorkerStore) DeactivateAbsent(_ context.Context, seen []string) (int, error) {
	present := map[string]bool{}
	for _, id := range seen {
		present[id] = true
	}

	count := 0
	for externalID, w := range f.byExternalID {
		if present[externalID] || w.IsActive == nil || !*w.IsActive {
			continue
		}
		inactive := false
		w.IsActive = &inactive
		f.byExternalID[externalID] = w
		f.deactivated = append(f.deactivated, externalID)
		count++
	}
	return count, nil
}

func (f *fakeWorkerStore) GetCounts(_ context.Context) (worker.Counts, error) {
	counts := worker.Counts{Total: len(f.byExternalID)}
	for _, w := range f.byExternalID {
		if w.IsActive != nil && !*w.IsActive {
			counts.Deactivated++
		}
	}
	return counts, nil
}

type fakeReplica struct {
	employees []replica.Employee
	pingErr   error
	pageErr   error
	idsErr    error
}

func (f *fakeReplica) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeReplica) ListEmployeesPage(_ context.Context, offset, limit int) (replica.Page, error) {
	if f.pageErr != nil {
		return replica.Page{}, f.pageErr
	}
	page := replica.Page{Total: len(f.employees)}
	if offset >= len(f.employees) {
		return page, nil
	}
	end := offset + limit
	if end > len(f.employees) {
		end = len(f.employees)
	}
	page.Employees = f.employees[offset:end]
	return page, nil
}

func (f *fakeReplica) ListAllIDs(_ context.Context) ([]string, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	ids := make([]string, 0, len(f.employees))
	for _, e := range f.employees {
		ids = append(ids, e.EmplCd)
	}
	return ids, nil
}

func (f *fakeReplica) Search(_ context.Context, name, _ string) ([]replica.Employee, error) {
	var out []replica.Employee
	for _, e := range f.employees {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLedger struct {
	created []syncerror.CreateRequest
}

func (f *fakeLedger) Create(_ context.Context, request syncerror.CreateRequest) (entity.SyncError, error) {
	f.created = append(f.created, request)
	return entity.SyncError{}, nil
}

func (f *fakeLedger) GetStatusCounts(_ context.Context) (syncerror.StatusCounts, error) {
	return syncerror.StatusCounts{Open: len(f.created)}, nil
}

type fakeAudit struct {
	entries []audit.Entry
}

func (f *fakeAudit) Log(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) Recent(_ context.Context, _ string, _ int) ([]audit.RecentEntry, error) {
	return nil, nil
}

type fakeCoordinator struct {
	stamped int
	last    *time.Time
}

func (f *fakeCoordinator) StampFullSync(_ context.Context, at time.Time) error {
	f.stamped++
	f.last = &at
	return nil
}

func (f *fakeCoordinator) LastFullSync(_ context.Context) (*time.Time, error) {
	return f.last, nil
}

func newTestService(workers *fakeWorkerStore, source *fakeReplica, ledger *fakeLedger, sink *fakeAudit, coord Coordinator) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(workers, source, ledger, sink, coord, log)
}

func employee(id, name, socialNo string) replica.Employee {
	return replica.Employee{
		EmplCd:      id,
		Name:        name,
		SocialNo:    socialNo,
		Phone:       "010-1234-5678",
		CompanyName: "한성토건",
		IsActive:    true,
	}
}

func TestSyncReplicaPageCreatesAndIsIdempotent(t *testing.T) {
	workers := newFakeWorkerStore()
	source := &fakeReplica{employees: []replica.Employee{
		employee("EMP001", "김우현", "7104101"),
		employee("EMP002", "박지훈", "0501153"),
	}}
	coord := &fakeCoordinator{}
	svc := newTestService(workers, source, &fakeLedger{}, &fakeAudit{}, coord)

	run, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Created)
	assert.Equal(t, 0, run.Updated)
	assert.Equal(t, 0, run.Skipped)
	assert.False(t, run.HasMore)
	assert.Nil(t, run.NextOffset)
	assert.Equal(t, 1, coord.stamped)

	stored, err := workers.GetByExternalID(context.Background(), "EMP001")
	require.NoError(t, err)
	require.NotNil(t, stored.BirthDate)
	assert.Equal(t, "19710410", *stored.BirthDate)

	// Replaying the same page changes nothing.
	run, err = svc.SyncReplicaPage(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Created)
	assert.Equal(t, 0, run.Updated)
	assert.Equal(t, 2, run.Skipped)
}

func TestSyncReplicaPagePartialFailureIsolation(t *testing.T) {
	employees := []replica.Employee{employee("EMP000", "홍길동", "BROKEN!")}
	for i := 1; i < 10; i++ {
		employees = append(employees, employee(
			"EMP00"+string(rune('0'+i)), "작업자", "8806150"))
	}

	workers := newFakeWorkerStore()
	ledger := &fakeLedger{}
	svc := newTestService(workers, &fakeReplica{employees: employees}, ledger, &fakeAudit{}, &fakeCoordinator{})

	run, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, 9, run.Created)
	assert.Equal(t, 1, run.Skipped)
	require.Len(t, run.Errors, 1)
	assert.Contains(t, run.Errors[0], "EMP000")

	require.Len(t, ledger.created, 1)
	assert.Equal(t, entity.SyncTypeWorker, ledger.created[0].SyncType)
	assert.Equal(t, "INVALID_BIRTH_DATE", ledger.created[0].ErrorCode)
}

func TestSyncReplicaPageNoDeactivationWhileMorePages(t *testing.T) {
	var employees []replica.Employee
	for i := 0; i < 5; i++ {
		employees = append(employees, employee(
			"EMP10"+string(rune('0'+i)), "작업자", "9901019"))
	}

	workers := newFakeWorkerStore()
	require.NoError(t, workers.Create(context.Background(), worker.Candidate{
		ExternalWorkerID: "GONE01", Name: "퇴사자", IsActive: true,
	}))

	coord := &fakeCoordinator{}
	svc := newTestService(workers, &fakeReplica{employees: employees}, &fakeLedger{}, &fakeAudit{}, coord)

	run, err := svc.SyncReplicaPage(context.Background(), 0, 2)
	require.NoError(t, err)

	assert.True(t, run.HasMore)
	require.NotNil(t, run.NextOffset)
	assert.Equal(t, 2, *run.NextOffset)
	assert.Equal(t, 0, run.Deactivated)
	assert.Empty(t, workers.deactivated)
	assert.Equal(t, 0, coord.stamped)

	// Walk the remaining pages; deactivation happens on the last one.
	run, err = svc.SyncReplicaPage(context.Background(), *run.NextOffset, 2)
	require.NoError(t, err)
	require.NotNil(t, run.NextOffset)

	run, err = svc.SyncReplicaPage(context.Background(), *run.NextOffset, 2)
	require.NoError(t, err)
	assert.False(t, run.HasMore)
	assert.Equal(t, 1, run.Deactivated)
	assert.Equal(t, []string{"GONE01"}, workers.deactivated)
	assert.Equal(t, 1, coord.stamped)
}

func TestSyncReplicaPageClampsPaging(t *testing.T) {
	source := &fakeReplica{employees: []replica.Employee{employee("EMP001", "김우현", "7104101")}}
	svc := newTestService(newFakeWorkerStore(), source, &fakeLedger{}, &fakeAudit{}, &fakeCoordinator{})

	run, err := svc.SyncReplicaPage(context.Background(), -5, 9999)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Offset)
	assert.Equal(t, MaxLimit, run.Limit)

	run, err = svc.SyncReplicaPage(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, run.Limit)
}

func TestSyncReplicaPageTransportErrorPropagates(t *testing.T) {
	workers := newFakeWorkerStore()
	require.NoError(t, workers.Create(context.Background(), worker.Candidate{
		ExternalWorkerID: "KEEP01", Name: "현장직", IsActive: true,
	}))

	source := &fakeReplica{pageErr: errors.New("dial tcp: connection refused")}
	svc := newTestService(workers, source, &fakeLedger{}, &fakeAudit{}, &fakeCoordinator{})

	_, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.Error(t, err)
	assert.Empty(t, workers.deactivated)
}

func TestSyncReplicaPageDeactivationErrorLeavesWorkersActive(t *testing.T) {
	source := &fakeReplica{
		employees: []replica.Employee{employee("EMP001", "김우현", "7104101")},
		idsErr:    errors.New("query timeout"),
	}
	workers := newFakeWorkerStore()
	svc := newTestService(workers, source, &fakeLedger{}, &fakeAudit{}, &fakeCoordinator{})

	_, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.Error(t, err)
	assert.Empty(t, workers.deactivated)
}

func TestSyncReplicaPageRetiredEmployeeUpdatesNotDeactivates(t *testing.T) {
	retired := employee("EMP001", "김우현", "7104101")
	retired.IsActive = false

	workers := newFakeWorkerStore()
	require.NoError(t, workers.Create(context.Background(), worker.Candidate{
		ExternalWorkerID: "EMP001", Name: "김우현", IsActive: true,
	}))

	svc := newTestService(workers, &fakeReplica{employees: []replica.Employee{retired}}, &fakeLedger{}, &fakeAudit{}, &fakeCoordinator{})

	run, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Updated)
	assert.Equal(t, 0, run.Deactivated)

	stored, err := workers.GetByExternalID(context.Background(), "EMP001")
	require.NoError(t, err)
	require.NotNil(t, stored.IsActive)
	assert.False(t, *stored.IsActive)
}

func TestSyncSnapshotPreservesFieldsItDoesNotCarry(t *testing.T) {
	workers := newFakeWorkerStore()
	phone := "010-9999-0000"
	birth := "19710410"
	require.NoError(t, workers.Create(context.Background(), worker.Candidate{
		ExternalWorkerID: "EMP001",
		Name:             "김우현",
		Phone:            &phone,
		BirthDate:        &birth,
		IsActive:         true,
	}))

	company := "미래도시건설"
	trade := "형틀"
	records := []snapshot.WorkerDirectoryRecord{
		{ExternalWorkerID: "EMP001", Name: "김우현", CompanyName: &company, Trade: &trade},
		{ExternalWorkerID: "EMP777", Name: "신규자", CompanyName: &company},
	}

	coord := &fakeCoordinator{}
	svc := newTestService(workers, &fakeReplica{}, &fakeLedger{}, &fakeAudit{}, coord)

	run, err := svc.SyncSnapshot(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, SourceSnapshot, run.Source)
	assert.Equal(t, 1, run.Created)
	assert.Equal(t, 1, run.Updated)
	assert.Equal(t, 0, run.Deactivated)
	assert.Equal(t, 0, coord.stamped)

	stored, err := workers.GetByExternalID(context.Background(), "EMP001")
	require.NoError(t, err)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, phone, *stored.Phone)
	require.NotNil(t, stored.BirthDate)
	assert.Equal(t, birth, *stored.BirthDate)
	require.NotNil(t, stored.Trade)
	assert.Equal(t, trade, *stored.Trade)
}

func TestSyncSnapshotSkipsIncompleteRecords(t *testing.T) {
	workers := newFakeWorkerStore()
	ledger := &fakeLedger{}
	svc := newTestService(workers, &fakeReplica{}, ledger, &fakeAudit{}, &fakeCoordinator{})

	run, err := svc.SyncSnapshot(context.Background(), []snapshot.WorkerDirectoryRecord{
		{ExternalWorkerID: "", Name: "무명"},
		{ExternalWorkerID: "EMP001", Name: "김우현"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, run.Created)
	assert.Equal(t, 1, run.Skipped)
	assert.Len(t, ledger.created, 1)
}

func TestHealthReportsReplicaStatus(t *testing.T) {
	workers := newFakeWorkerStore()
	require.NoError(t, workers.Create(context.Background(), worker.Candidate{
		ExternalWorkerID: "EMP001", Name: "김우현", IsActive: true,
	}))

	coord := &fakeCoordinator{}
	stamp := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	coord.last = &stamp

	svc := newTestService(workers, &fakeReplica{}, &fakeLedger{}, &fakeAudit{}, coord)

	report, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up", report.ReplicaStatus)
	require.NotNil(t, report.LastFullSync)
	assert.Equal(t, stamp, *report.LastFullSync)
	assert.Equal(t, 1, report.Workers.Total)

	svc = newTestService(workers, &fakeReplica{pingErr: errors.New("down")}, &fakeLedger{}, &fakeAudit{}, coord)
	report, err = svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "down", report.ReplicaStatus)
}

func TestSyncRunWritesAuditEntry(t *testing.T) {
	sink := &fakeAudit{}
	svc := newTestService(newFakeWorkerStore(), &fakeReplica{
		employees: []replica.Employee{employee("EMP001", "김우현", "7104101")},
	}, &fakeLedger{}, sink, &fakeCoordinator{})

	_, err := svc.SyncReplicaPage(context.Background(), 0, 100)
	require.NoError(t, err)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "WORKER_SYNC_PAGE", sink.entries[0].Action)
	assert.Equal(t, "WORKER_SYNC", sink.entries[0].TargetType)
	assert.Contains(t, sink.entries[0].Details, `"created":1`)
}
