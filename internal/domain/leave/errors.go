package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrLeaveTypeNotFound    = errors.New("leave type or employee not found")
)
