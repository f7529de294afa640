package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid reputation request")
	ErrInternal       = errors.New("internal store failure")
)
