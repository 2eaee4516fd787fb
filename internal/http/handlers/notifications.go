package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karthikvn/clinicq/internal/notify"
	"github.com/karthikvn/clinicq/pkg/logging"
)

const defaultNotificationLimit = 50

// NotificationsHandler serves the in-app notification feed.
type NotificationsHandler struct {
	store  notify.Store
	logger *logging.Logger
}

// NewNotificationsHandler creates a notifications handler.
func NewNotificationsHandler(store notify.Store, logger *logging.Logger) *NotificationsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationsHandler{store: store, logger: logger}
}

// Routes returns the notification routes.
func (h *NotificationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{userID}", h.ListForUser)
	r.Post("/{userID}/{notificationID}/read", h.MarkRead)
	return r
}

// ListForUser returns the user's notifications, newest first.
// GET /api/notifications/{userID}?limit=20&unread=true
func (h *NotificationsHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.store.ListForUser(r.Context(), userID, limit, unreadOnly)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*notify.Notification{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"notifications": items,
		"count":         len(items),
	})
}

// MarkRead flips a notification's read flag for its recipient.
// POST /api/notifications/{userID}/{notificationID}/read
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	notificationID := chi.URLParam(r, "notificationID")

	if err := h.store.MarkRead(r.Context(), notificationID, userID); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
