package handler

import (
	"errors"
	"net/http"
	"strings"

	"hireloop/internal/middleware"
	"hireloop/internal/repo"
)

func (h *Handler) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	v, err := h.repo.GetVerification(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "get verification", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type verificationSubmitRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=passport id_card business_license certificate"`
	DocumentURL  string `json:"documentUrl" validate:"required,url,max=500"`
	Note         string `json:"note" validate:"max=1000"`
}

func (h *Handler) handleVerificationSubmit(w http.ResponseWriter, r *http.Request) {
	var req verificationSubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	v, err := h.repo.SubmitVerification(r.Context(), user.ID, req.DocumentType, req.DocumentURL, strings.TrimSpace(req.Note))
	if errors.Is(err, repo.ErrConflict) {
		writeError(w, http.StatusConflict, "Verification is already pending or verified")
		return
	}
	if err != nil {
		h.fail(w, r, "submit verification", err)
		return
	}
	h.log.WithField("user_id", user.ID).Info("verification submitted")
	writeJSON(w, http.StatusOK, v)
}
