package notify

import "time"

// ChannelInApp is the channel every notification is recorded under;
// email and SMS are best-effort mirrors of the same event.
const ChannelInApp = "in_app"

// Notification is one delivery record. Only the read flag ever changes
// after creation, and only by the recipient.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Channels selects the best-effort delivery mirrors for an event.
type Channels struct {
	Email bool
	SMS   bool
}
