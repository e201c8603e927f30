package web

import "github.com/pkg/errors"

// Error carries an HTTP status alongside the underlying cause. Repositories
// and services return it so controllers can respond with the right code
// without inspecting error strings.
type Error struct {
	Err    error
	Status int
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewRequestError wraps err with the status that should reach the client.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

// IsRequestError extracts an *Error from anywhere in err's chain.
func IsRequestError(err error) (*Error, bool) {
	var webErr *Error
	if errors.As(err, &webErr) {
		return webErr, true
	}
	return nil, false
}
