package appointments

import "errors"

var (
	// ErrNotFound is returned when the referenced appointment does not exist.
	ErrNotFound = errors.New("appointments: not found")

	// ErrInvalidStatus is returned for statuses outside the closed set or
	// transitions outside the state machine. No mutation happens.
	ErrInvalidStatus = errors.New("appointments: invalid status")

	// ErrInvalidPriority is returned for priorities outside the closed set.
	ErrInvalidPriority = errors.New("appointments: invalid priority")

	// ErrStorageUnavailable is returned when the underlying store cannot be
	// reached. Booking aborts atomically and is safe to retry.
	ErrStorageUnavailable = errors.New("appointments: storage unavailable")
)
