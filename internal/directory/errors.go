package directory

import "errors"

var (
	// ErrNotFound is returned when a user or hospital does not exist.
	ErrNotFound = errors.New("directory: not found")

	// ErrInvalidAvailability is returned for availability values outside
	// Available / On Break / Off Duty.
	ErrInvalidAvailability = errors.New("directory: invalid availability status")

	// ErrNotADoctor is returned when a doctor-only operation targets a
	// user with a different role.
	ErrNotADoctor = errors.New("directory: user is not a doctor")
)
