package sync

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/service/snapshot"
	syncservice "worksync/backend/internal/service/sync"

	"github.com/pkg/errors"
)

// releaseTimeout bounds the detached lock release so a slow redis cannot
// hold the goroutine.
const releaseTimeout = 5 * time.Second

type Controller struct {
	engine       Engine
	lock         Locker
	snapshotPath string
}

func NewController(engine Engine, lock Locker, snapshotPath string) *Controller {
	return &Controller{engine: engine, lock: lock, snapshotPath: snapshotPath}
}

type replicaSyncRequest struct {
	Offset *int `json:"offset" form:"offset"`
	Limit  *int `json:"limit" form:"limit"`
}

// SyncReplica runs one replica page under the single-flight lock. A
// concurrent trigger gets a 409 instead of a second run.
func (sc Controller) SyncReplica(c *web.Context) error {
	var request replicaSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindFunc(&request); err != nil {
			return c.RespondError(err)
		}
	}

	offset := 0
	limit := syncservice.DefaultLimit
	if request.Offset != nil {
		offset = *request.Offset
	}
	if request.Limit != nil {
		limit = *request.Limit
	}
	if offset < 0 {
		return c.RespondError(web.NewRequestError(errors.New("offset must not be negative"), http.StatusBadRequest))
	}

	if err := sc.lock.Acquire(c.Ctx); err != nil {
		if errors.Is(err, syncservice.ErrSyncInFlight) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		return c.RespondError(err)
	}
	defer sc.releaseLock()

	run, err := sc.engine.SyncReplicaPage(c.Ctx, offset, limit)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   run,
		"status": true,
	}, http.StatusOK)
}

// SyncSnapshot parses the configured legacy snapshot file and applies it as
// one full pass.
func (sc Controller) SyncSnapshot(c *web.Context) error {
	if sc.snapshotPath == "" {
		return c.RespondError(web.NewRequestError(errors.New("no snapshot file is configured"), http.StatusBadRequest))
	}

	if err := sc.lock.Acquire(c.Ctx); err != nil {
		if errors.Is(err, syncservice.ErrSyncInFlight) {
			return c.RespondError(web.NewRequestError(err, http.StatusConflict))
		}
		return c.RespondError(err)
	}
	defer sc.releaseLock()

	records, err := snapshot.Parse(c.Ctx, sc.snapshotPath)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "reading snapshot"), http.StatusUnprocessableEntity))
	}

	run, err := sc.engine.SyncSnapshot(c.Ctx, records)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   run,
		"status": true,
	}, http.StatusOK)
}

// SnapshotStats reports what the configured snapshot file contains without
// applying it, so an operator can sanity-check a drop before syncing.
func (sc Controller) SnapshotStats(c *web.Context) error {
	if sc.snapshotPath == "" {
		return c.RespondError(web.NewRequestError(errors.New("no snapshot file is configured"), http.StatusBadRequest))
	}

	stats, err := snapshot.GetStats(c.Ctx, sc.snapshotPath)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "reading snapshot"), http.StatusUnprocessableEntity))
	}

	return c.Respond(map[string]interface{}{
		"data":   stats,
		"status": true,
	}, http.StatusOK)
}

func (sc Controller) Health(c *web.Context) error {
	report, err := sc.engine.Health(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   report,
		"status": true,
	}, http.StatusOK)
}

// Search looks employees up directly in the replica, for operators linking
// unmatched attendance by hand.
func (sc Controller) Search(c *web.Context) error {
	var name, phone string

	if value, ok := c.GetQueryFunc(reflect.String, "name").(*string); ok && value != nil {
		name = *value
	}
	if value, ok := c.GetQueryFunc(reflect.String, "phone").(*string); ok && value != nil {
		phone = *value
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if name == "" && phone == "" {
		return c.RespondError(web.NewRequestError(errors.New("name or phone is required"), http.StatusBadRequest))
	}

	employees, err := sc.engine.SearchReplica(c.Ctx, name, phone)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": employees,
			"count":   len(employees),
		},
		"status": true,
	}, http.StatusOK)
}

// releaseLock frees the single-flight lock on a detached context, so a
// client disconnect mid-sync cannot leave the lock to its TTL.
func (sc Controller) releaseLock() {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = sc.lock.Release(ctx)
}
