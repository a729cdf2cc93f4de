package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.AdminStats(r.Context())
	if err != nil {
		h.fail(w, r, "admin stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, err := h.repo.AdminListUsers(r.Context(), q.Get("search"), limit, offset)
	if err != nil {
		h.fail(w, r, "admin list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// adminTarget loads the user named by {id}, writing 404 if missing.
func (h *Handler) adminTarget(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	user, err := h.repo.GetUser(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	if err != nil {
		h.fail(w, r, "get user", err)
		return nil, false
	}
	return user, true
}

func (h *Handler) handleAdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	target, ok := h.adminTarget(w, r)
	if !ok {
		return
	}
	if target.ID == middleware.UserFromContext(r.Context()).ID {
		writeError(w, http.StatusBadRequest, "You cannot change your own admin flag")
		return
	}
	if err := h.repo.SetUserAdmin(r.Context(), target.ID, !target.IsAdmin); err != nil {
		h.fail(w, r, "toggle admin", err)
		return
	}
	h.writeAdminUser(w, r, target.ID)
}

func (h *Handler) handleAdminToggleBan(w http.ResponseWriter, r *http.Request) {
	target, ok := h.adminTarget(w, r)
	if !ok {
		return
	}
	if target.ID == middleware.UserFromContext(r.Context()).ID {
		writeError(w, http.StatusBadRequest, "You cannot ban yourself")
		return
	}
	if err := h.repo.SetUserBanned(r.Context(), target.ID, !target.IsBanned); err != nil {
		h.fail(w, r, "toggle ban", err)
		return
	}
	h.log.WithField("user_id", target.ID).WithField("banned", !target.IsBanned).Info("user ban toggled")
	h.writeAdminUser(w, r, target.ID)
}

func (h *Handler) writeAdminUser(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, "reload user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setTierRequest struct {
	Tier string `json:"tier" validate:"omitempty,oneof=bronze silver gold"`
}

func (h *Handler) handleAdminSetTier(w http.ResponseWriter, r *http.Request) {
	target, ok := h.adminTarget(w, r)
	if !ok {
		return
	}
	var req setTierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.repo.SetTier(r.Context(), target.Role, target.ID, models.Tier(req.Tier))
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User has no profile yet")
		return
	}
	if errors.Is(err, repo.ErrNoTier) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Role %q has no tier", target.Role))
		return
	}
	if err != nil {
		h.fail(w, r, "set tier", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tier": req.Tier})
}

func (h *Handler) handleAdminVerifications(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.VerificationPending
	}
	if status == "all" {
		status = ""
	}
	out, err := h.repo.ListVerifications(r.Context(), status)
	if err != nil {
		h.fail(w, r, "list verifications", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type reviewVerificationRequest struct {
	Status     string `json:"status" validate:"required,oneof=verified rejected"`
	ReviewNote string `json:"reviewNote" validate:"max=1000"`
}

func (h *Handler) handleAdminReviewVerification(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusNotFound, "Verification not found")
		return
	}
	var req reviewVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.repo.ReviewVerification(r.Context(), userID, req.Status, req.ReviewNote)
	if errors.Is(err, repo.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, "No pending verification for this user")
		return
	}
	if err != nil {
		h.fail(w, r, "review verification", err)
		return
	}

	h.notify(r, userID, repo.NotifyVerificationReviewed, models.Payload{
		"status": v.Status,
	}, fmt.Sprintf("Your verification was reviewed: <b>%s</b>\n%s", v.Status, h.link("/dashboard")))

	writeJSON(w, http.StatusOK, v)
}
