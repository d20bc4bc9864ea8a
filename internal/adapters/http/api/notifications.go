package api

import (
	"net/http"
)

// NotificationHandler handles inbox and reminder requests.
type NotificationHandler struct {
	deps NotificationDependencies
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(deps NotificationDependencies) *NotificationHandler {
	return &NotificationHandler{deps: deps}
}

type countResponse struct {
	Count int `json:"count"`
}

// HandleList handles GET /notifications?limit=N.
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_notifications"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(op, r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.deps.Notifications(r.Context(), pid, limit)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleMarkRead handles PUT /notifications/{id}/read.
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	const op = "api.mark_read"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := h.deps.MarkNotificationRead(r.Context(), pid, r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// HandleMarkAllRead handles PUT /notifications/read-all.
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	const op = "api.mark_all_read"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	changed, err := h.deps.MarkAllNotificationsRead(r.Context(), pid)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: changed})
}

// HandleDelete handles DELETE /notifications/{id}.
func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_notification"
	pid, err := actor(op, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.DeleteNotification(r.Context(), pid, r.PathValue("id")); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeadlineReminders handles POST /reminders/deadlines.
func (h *NotificationHandler) HandleDeadlineReminders(w http.ResponseWriter, r *http.Request) {
	sent, err := h.deps.SendDeadlineReminders(r.Context())
	if err != nil {
		writeError(w, Wrap("api.deadline_reminders", err))
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: sent})
}
