package notify

import "errors"

// ErrNotFound is returned when a notification does not exist or belongs
// to a different user.
var ErrNotFound = errors.New("notify: notification not found")
