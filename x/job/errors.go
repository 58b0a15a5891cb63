package job

import "github.com/iov-one/jobchain/errors"

// ErrInvalidTransition is returned when a job cannot move from its current
// status to the requested one.
var ErrInvalidTransition = errors.Register(1000, "invalid job status transition")
