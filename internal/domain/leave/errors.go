package leave

import "errors"

var (
	ErrRequestNotFound     = errors.New("leave request not found")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrOverlappingRequest  = errors.New("overlapping leave request exists")
	ErrInvalidRange        = errors.New("end date before start date")
	ErrInvalidReason       = errors.New("reason is required and limited to 500 characters")
	ErrNotImplemented      = errors.New("leave request deletion is not implemented")
)
