package attendance

import (
	"net/http"
	"reflect"

	"worksync/backend/foundation/web"
	"worksync/backend/internal/repository/postgres/attendance"
)

type Controller struct {
	ingester   Ingester
	attendance Attendance
}

func NewController(ingester Ingester, attendance Attendance) *Controller {
	return &Controller{ingester: ingester, attendance: attendance}
}

type batchRequest struct {
	Events []attendance.CreateRequest `json:"events"`
}

// Batch accepts a device submission. The whole batch is rejected only when
// the envelope itself is malformed; per-event failures show up in the
// response counters.
func (ac Controller) Batch(c *web.Context) error {
	var request batchRequest
	if err := c.BindFunc(&request, "Events"); err != nil {
		return c.RespondError(err)
	}

	result, err := ac.ingester.IngestBatch(c.Ctx, request.Events)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   result,
		"status": true,
	}, http.StatusOK)
}

func (ac Controller) GetToday(c *web.Context) error {
	var filter attendance.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if siteID, ok := c.GetQueryFunc(reflect.String, "site_id").(*string); ok {
		filter.SiteID = siteID
	}
	if result, ok := c.GetQueryFunc(reflect.String, "result").(*string); ok {
		filter.Result = result
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := ac.attendance.GetToday(c.Ctx, filter)
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

func (ac Controller) GetUnmatched(c *web.Context) error {
	var filter attendance.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if siteID, ok := c.GetQueryFunc(reflect.String, "site_id").(*string); ok {
		filter.SiteID = siteID
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := ac.attendance.GetUnmatched(c.Ctx, filter)
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
