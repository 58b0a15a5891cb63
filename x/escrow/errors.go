package escrow

import "github.com/iov-one/jobchain/errors"

var (
	// ErrAlreadyFunded is returned when funds are locked twice in the
	// same custody.
	ErrAlreadyFunded = errors.Register(1010, "custody already funded")

	// ErrNotFunded is returned when a custody holding nothing is released
	// or refunded.
	ErrNotFunded = errors.Register(1011, "custody not funded")
)
