package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Context is the request context handed to controllers. Query and param
// readers collect parse failures instead of failing fast; ValidQuery and
// ValidParam report everything at once.
type Context struct {
	*gin.Context
	Ctx context.Context

	queryErrors []error
	paramErrors []error
}

func NewContext(c *gin.Context) *Context {
	return &Context{
		Context: c,
		Ctx:     c.Request.Context(),
	}
}

// GetQueryFunc reads an optional query value of the given kind. A missing
// value yields a typed nil pointer, a malformed one is recorded for
// ValidQuery.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	value, ok := c.GetQuery(name)

	switch kind {
	case reflect.Int:
		if !ok {
			return (*int)(nil)
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, errors.Errorf("query %q must be an integer", name))
			return (*int)(nil)
		}
		return &parsed
	case reflect.String:
		if !ok {
			return (*string)(nil)
		}
		return &value
	case reflect.Bool:
		if !ok {
			return (*bool)(nil)
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, errors.Errorf("query %q must be a boolean", name))
			return (*bool)(nil)
		}
		return &parsed
	}

	c.queryErrors = append(c.queryErrors, errors.Errorf("unsupported query kind for %q", name))
	return nil
}

// GetParam reads a required path parameter of the given kind. Failures are
// recorded for ValidParam and a zero value is returned.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	value := c.Param(name)

	switch kind {
	case reflect.Int:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			c.paramErrors = append(c.paramErrors, errors.Errorf("param %q must be an integer", name))
			return 0
		}
		return parsed
	case reflect.String:
		if value == "" {
			c.paramErrors = append(c.paramErrors, errors.Errorf("param %q is required", name))
		}
		return value
	}

	c.paramErrors = append(c.paramErrors, errors.Errorf("unsupported param kind for %q", name))
	return nil
}

func (c *Context) ValidQuery() error {
	if len(c.queryErrors) == 0 {
		return nil
	}
	return NewRequestError(joinErrors(c.queryErrors), http.StatusBadRequest)
}

func (c *Context) ValidParam() error {
	if len(c.paramErrors) == 0 {
		return nil
	}
	return NewRequestError(joinErrors(c.paramErrors), http.StatusBadRequest)
}

// BindFunc decodes the JSON body into v and checks that the named struct
// fields are present (non-nil pointers / non-zero values).
func (c *Context) BindFunc(v interface{}, requiredFields ...string) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return NewRequestError(errors.Wrap(err, "decoding request body"), http.StatusBadRequest)
	}

	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	var missing []error
	for _, name := range requiredFields {
		field := value.FieldByName(name)
		if !field.IsValid() || field.IsZero() {
			missing = append(missing, errors.Errorf("field %q is required", name))
		}
	}
	if len(missing) > 0 {
		return NewRequestError(joinErrors(missing), http.StatusBadRequest)
	}

	return nil
}

func (c *Context) Respond(data interface{}, status int) error {
	c.JSON(status, data)
	return nil
}

// RespondError writes the error envelope. Unrecognized errors become 500s
// with the message suppressed.
func (c *Context) RespondError(err error) error {
	if webErr, ok := IsRequestError(err); ok {
		status := webErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, map[string]interface{}{
			"error":  webErr.Err.Error(),
			"status": false,
		})
		return nil
	}

	c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error":  "internal server error",
		"status": false,
	})
	return err
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := ""
	for i, err := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return fmt.Errorf("%s", msg)
}
