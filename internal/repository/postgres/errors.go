package postgres

import "github.com/pkg/errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("sync error is not open")
)
