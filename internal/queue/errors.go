package queue

import "errors"

// ErrNoDoctorAvailable is returned when no doctor matches the booking
// filters. The booking is rejected; there is nothing to retry.
var ErrNoDoctorAvailable = errors.New("queue: no doctor available")
