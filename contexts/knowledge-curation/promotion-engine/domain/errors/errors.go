package errors

import "errors"

var (
	ErrValidation             = errors.New("invalid input value")
	ErrAuthenticationRequired = errors.New("acting user is required")
	ErrGraphNotFound          = errors.New("claim graph not found")
	ErrStepNotFound           = errors.New("methodology step not found")
	ErrImmutableEntity        = errors.New("entity is permanently immutable")
	ErrTerminalLevel          = errors.New("graph is already at the maximum level")
	ErrDuplicateCompletion    = errors.New("methodology step is already completed")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrTransientConflict      = errors.New("transient store conflict")
	ErrInternal               = errors.New("internal store failure")
)
