package notify

import (
	"context"

	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/observability/metrics"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// Dispatcher records notifications and mirrors them over email/SMS.
// Delivery is fire-and-forget: every failure is logged and counted but
// never propagated, so a dead mail gateway cannot fail a booking that
// has already committed.
type Dispatcher struct {
	store   Store
	email   EmailSender
	sms     SMSSender
	metrics *metrics.QueueMetrics
	logger  *logging.Logger
}

// NewDispatcher creates a dispatcher. email and sms may be nil; the
// in_app record is still written.
func NewDispatcher(store Store, email EmailSender, sms SMSSender, m *metrics.QueueMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{store: store, email: email, sms: sms, metrics: m, logger: logger}
}

// Emit records the event for the user and mirrors it on the requested
// channels.
func (d *Dispatcher) Emit(ctx context.Context, user *directory.User, title, message string, ch Channels) {
	if user == nil {
		return
	}

	n := &Notification{
		UserID:  user.ID,
		Title:   title,
		Message: message,
		Channel: ChannelInApp,
	}
	if err := d.store.Insert(ctx, n); err != nil {
		d.logger.Error("notify: record failed", "error", err, "user_id", user.ID, "title", title)
		d.metrics.ObserveNotification(ChannelInApp, "error")
	} else {
		d.metrics.ObserveNotification(ChannelInApp, "ok")
	}

	if ch.Email && d.email != nil && user.Email != "" {
		msg := EmailMessage{
			To:      user.Email,
			ToName:  user.DisplayName(),
			Subject: title,
			Body:    message,
		}
		if err := d.email.Send(ctx, msg); err != nil {
			d.logger.Error("notify: email failed", "error", err, "to", user.Email, "title", title)
			d.metrics.ObserveNotification("email", "error")
		} else {
			d.metrics.ObserveNotification("email", "ok")
		}
	}

	if ch.SMS && d.sms != nil && user.Phone != "" {
		if err := d.sms.SendSMS(ctx, user.Phone, message); err != nil {
			d.logger.Error("notify: sms failed", "error", err, "to", user.Phone, "title", title)
			d.metrics.ObserveNotification("sms", "error")
		} else {
			d.metrics.ObserveNotification("sms", "ok")
		}
	}
}
