package handler

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"unicode/utf8"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	convs, err := h.repo.ListConversations(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "list conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

type createConversationRequest struct {
	ParticipantID int64  `json:"participantId" validate:"required,gt=0"`
	ProjectID     *int64 `json:"projectId" validate:"omitempty,gt=0"`
}

func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())
	if req.ParticipantID == user.ID {
		writeError(w, http.StatusBadRequest, "You cannot message yourself")
		return
	}

	other, err := h.repo.GetUser(r.Context(), req.ParticipantID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && other.IsBanned) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get participant", err)
		return
	}

	id, created, err := h.repo.GetOrCreateConversation(r.Context(), user.ID, other.ID, req.ProjectID)
	if err != nil {
		h.fail(w, r, "get or create conversation", err)
		return
	}
	conv, err := h.repo.GetConversation(r.Context(), id, user.ID)
	if err != nil {
		h.fail(w, r, "load conversation", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, conv)
}

// participantConversation resolves conversationId and checks membership.
// Non-members get 404 so conversation ids do not leak.
func (h *Handler) participantConversation(w http.ResponseWriter, r *http.Request, id int64, ok bool) (int64, bool) {
	if !ok {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return 0, false
	}
	user := middleware.UserFromContext(r.Context())
	member, err := h.repo.IsParticipant(r.Context(), id, user.ID)
	if err != nil {
		h.fail(w, r, "check participant", err)
		return 0, false
	}
	if !member {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r, "conversationId")
	convID, ok := h.participantConversation(w, r, id, ok)
	if !ok {
		return
	}
	msgs, err := h.repo.ListMessages(r.Context(), convID)
	if err != nil {
		h.fail(w, r, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	ConversationID int64  `json:"conversationId" validate:"required,gt=0"`
	Content        string `json:"content" validate:"required"`
}

const maxMessageLength = 4000

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "content is too long")
		return
	}

	convID, ok := h.participantConversation(w, r, req.ConversationID, true)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())

	msg, err := h.repo.CreateMessage(r.Context(), convID, user.ID, content)
	if err != nil {
		h.fail(w, r, "send message", err)
		return
	}

	if ids, err := h.repo.ConversationParticipants(r.Context(), convID); err == nil {
		for _, uid := range ids {
			if uid == user.ID {
				continue
			}
			h.notify(r, uid, repo.NotifyNewMessage, models.Payload{
				"conversation_id": convID,
				"user_name":       user.Name,
				"user_id":         user.ID,
			}, fmt.Sprintf("New message from <b>%s</b>\n%s", html.EscapeString(user.Name), h.link("/messages")))
		}
	}

	writeJSON(w, http.StatusCreated, msg)
}

type markReadRequest struct {
	ConversationID int64 `json:"conversationId" validate:"required,gt=0"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	convID, ok := h.participantConversation(w, r, req.ConversationID, true)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())
	n, err := h.repo.MarkConversationRead(r.Context(), convID, user.ID)
	if err != nil {
		h.fail(w, r, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	n, err := h.repo.UnreadMessageCount(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}
