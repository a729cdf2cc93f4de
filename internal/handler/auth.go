package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

func (h *Handler) handleTelegramAuth(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if !h.validateTelegramAuth(query, time.Now()) {
		http.Error(w, "Authorization failed", http.StatusForbidden)
		return
	}

	tgID, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	username := query.Get("username")
	name := query.Get("first_name")
	if ln := query.Get("last_name"); ln != "" {
		name += " " + ln
	}

	user, isNew, err := h.repo.UpsertUser(r.Context(), tgID, username, name)
	if err != nil {
		h.log.WithError(err).Error("upsert user")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if user.IsBanned {
		http.Error(w, "Account suspended", http.StatusForbidden)
		return
	}

	token := repo.GenerateToken()
	if err := h.repo.CreateSession(r.Context(), token, user.ID); err != nil {
		h.log.WithError(err).Error("create session")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
	http.SetCookie(w, h.sessionCookie(token, int(repo.SessionTTL.Seconds()), secure))

	if isNew || !user.Onboarded {
		http.Redirect(w, r, "/onboarding", http.StatusFound)
	} else {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromContext(r.Context()); token != "" {
		_ = h.repo.DeleteSession(r.Context(), token)
	}
	http.SetCookie(w, h.sessionCookie("", -1, false))
	http.Redirect(w, r, "/auth", http.StatusFound)
}

func (h *Handler) validateTelegramAuth(query url.Values, now time.Time) bool {
	hash := query.Get("hash")
	if hash == "" {
		return false
	}

	params := make([]string, 0, len(query))
	for key, values := range query {
		if key == "hash" {
			continue
		}
		params = append(params, key+"="+values[0])
	}
	sort.Strings(params)
	dataCheckString := strings.Join(params, "\n")

	secretKey := sha256.Sum256([]byte(h.botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(hash), []byte(expected)) {
		return false
	}

	// Reject auth data older than 1 day
	if authDate, err := strconv.ParseInt(query.Get("auth_date"), 10, 64); err == nil {
		age := math.Abs(float64(now.Unix() - authDate))
		if age > 86400 {
			return false
		}
	}

	return true
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrfToken,omitempty"`
	Dashboard string       `json:"dashboard"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	resp := sessionResponse{User: user, Dashboard: middleware.DashboardPath(user.Role)}
	if !middleware.IsBearer(r.Context()) {
		resp.CSRFToken = h.generateCSRF(r)
	}
	writeJSON(w, http.StatusOK, resp)
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleCreateToken mints a separate session for API clients.
func (h *Handler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	token := repo.GenerateToken()
	if err := h.repo.CreateSession(r.Context(), token, user.ID); err != nil {
		h.fail(w, r, "create api token", err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, ExpiresAt: time.Now().Add(repo.SessionTTL).UTC()})
}

type onboardingRequest struct {
	Name string `json:"name" validate:"max=100"`
	Role string `json:"role" validate:"required,oneof=client talent agency trainer"`
}

func (h *Handler) handleOnboardingAPI(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.completeOnboarding(r, req)
	if errors.Is(err, repo.ErrConflict) {
		writeError(w, http.StatusConflict, "Role is already set")
		return
	}
	if err != nil {
		h.fail(w, r, "complete onboarding", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Dashboard: middleware.DashboardPath(user.Role)})
}

func (h *Handler) completeOnboarding(r *http.Request, req onboardingRequest) (*models.User, error) {
	user := middleware.UserFromContext(r.Context())
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.Name
	}
	if err := h.repo.CompleteOnboarding(r.Context(), user.ID, name, models.Role(req.Role)); err != nil {
		return nil, err
	}
	return h.repo.GetUser(r.Context(), user.ID)
}
