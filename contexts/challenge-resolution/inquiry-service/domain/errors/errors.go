package errors

import "errors"

var (
	ErrValidation             = errors.New("invalid inquiry input")
	ErrAuthenticationRequired = errors.New("acting user is required")
	ErrInquiryNotFound        = errors.New("formal inquiry not found")
	ErrInquiryResolved        = errors.New("inquiry is already resolved")
	ErrInquiryNotEvaluated    = errors.New("inquiry has not been evaluated yet")
	ErrTransientConflict      = errors.New("transient store conflict")
	ErrInternal               = errors.New("internal store failure")
)
