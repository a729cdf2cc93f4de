package handler

import (
	"net/http"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
)

// notify stores an in-app notification and, when the recipient has linked the
// bot, pushes text to Telegram in the background.
func (h *Handler) notify(r *http.Request, userID int64, ntype string, payload models.Payload, text string) {
	if err := h.repo.CreateNotification(r.Context(), userID, ntype, payload); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("create notification")
	}
	if h.tgClient == nil || text == "" {
		return
	}
	recipient, err := h.repo.GetUser(r.Context(), userID)
	if err != nil || recipient.TgChatID == 0 {
		return
	}
	go h.tgClient.SendMessage(recipient.TgChatID, text)
}

func (h *Handler) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	notifs, err := h.repo.ListNotifications(r.Context(), user.ID, 20)
	if err != nil {
		h.fail(w, r, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, notifs)
}

func (h *Handler) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if err := h.repo.MarkNotificationsRead(r.Context(), user.ID); err != nil {
		h.fail(w, r, "mark notifications read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
