package syncerror

import (
	"net/http"
	"reflect"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/repository/postgres/syncerror"
)

type Controller struct {
	syncError SyncError
}

func NewController(syncError SyncError) *Controller {
	return &Controller{syncError}
}

func (sc Controller) GetList(c *web.Context) error {
	var filter syncerror.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if status, ok := c.GetQueryFunc(reflect.String, "status").(*string); ok {
		filter.Status = status
	}
	if syncType, ok := c.GetQueryFunc(reflect.String, "sync_type").(*string); ok {
		filter.SyncType = syncType
	}
	if siteID, ok := c.GetQueryFunc(reflect.String, "site_id").(*string); ok {
		filter.SiteID = siteID
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := sc.syncError.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

// UpdateStatus moves one OPEN entry to RESOLVED or IGNORED. Anything else
// is rejected by the repository with a conflict.
func (sc Controller) UpdateStatus(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)
	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request syncerror.UpdateStatusRequest
	if err := c.BindFunc(&request, "Status"); err != nil {
		return c.RespondError(err)
	}
	request.ID = id

	updated, err := sc.syncError.UpdateStatus(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   updated,
		"status": true,
	}, http.StatusOK)
}
