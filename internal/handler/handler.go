package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
	"hireloop/internal/telegram"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	BotToken     string
	BotUsername  string
	CSRFSecret   string
	CookieDomain string
	PublicURL    string
	Telegram     *telegram.Client
	Log          logrus.FieldLogger
}

type Handler struct {
	repo         *repo.Repo
	botToken     string
	botUsername  string
	csrfSecret   string
	cookieDomain string
	publicURL    string
	tgClient     *telegram.Client
	log          logrus.FieldLogger
	pages        map[string]*template.Template
}

func New(r *repo.Repo, opts Options) (*Handler, error) {
	h := &Handler{
		repo:         r,
		botToken:     opts.BotToken,
		botUsername:  opts.BotUsername,
		csrfSecret:   opts.CSRFSecret,
		cookieDomain: opts.CookieDomain,
		publicURL:    strings.TrimRight(opts.PublicURL, "/"),
		tgClient:     opts.Telegram,
		log:          opts.Log,
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	h.pages = pages
	return h, nil
}

// apiGuard answers denied API calls with JSON instead of redirects.
var apiGuard = middleware.Guard{
	Unauthenticated: func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	},
	Forbidden: func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "Forbidden")
	},
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(h.log))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Auth(h.repo))

	pages := middleware.PageGuard

	// Auth
	r.Get("/auth", h.handleAuthPage)
	r.Get("/auth/telegram", h.handleTelegramAuth)
	r.With(h.csrfMiddleware).Post("/auth/logout", h.handleLogout)

	// Pages
	r.Get("/", h.handleIndex)
	r.With(pages.Require()).Get("/dashboard", h.handleDashboard)
	r.With(pages.Require()).Get("/onboarding", h.handleOnboardingPage)
	r.With(pages.Require(), h.csrfMiddleware).Post("/onboarding", h.handleOnboardingForm)
	r.With(pages.Require(models.RoleClient)).Get("/client/dashboard", h.handleClientDashboard)
	r.With(pages.Require(models.RoleTalent)).Get("/talent/dashboard", h.handleApplicantDashboard)
	r.With(pages.Require(models.RoleAgency)).Get("/agency/dashboard", h.handleApplicantDashboard)
	r.With(pages.Require(models.RoleTrainer)).Get("/trainer/dashboard", h.handleTrainerDashboard)
	r.With(pages.Require(models.RoleTalent, models.RoleAgency)).Get("/projects", h.handleBrowseProjects)
	r.With(pages.Require(models.RoleClient)).Get("/talents", h.handleBrowseTalents)
	r.With(pages.Require()).Get("/messages", h.handleMessagesPage)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiGuard.Require())
		r.Use(h.csrfMiddleware)

		client := apiGuard.Require(models.RoleClient)

		r.Get("/session", h.handleSession)
		r.Post("/tokens", h.handleCreateToken)
		r.Post("/user/onboarding", h.handleOnboardingAPI)

		r.Get("/projects", h.handleListProjects)
		r.With(client).Post("/projects", h.handleCreateProject)
		r.Get("/projects/{id}", h.handleGetProject)
		r.With(client).Patch("/projects/{id}/status", h.handleProjectStatus)

		r.Get("/applications", h.handleListApplications)
		r.With(apiGuard.Require(models.RoleTalent, models.RoleAgency)).Post("/applications", h.handleCreateApplication)
		r.With(client).Patch("/applications/{id}", h.handleUpdateApplication)

		r.Get("/talents", h.handleListTalents)
		r.Get("/talents/{id}", h.handleGetTalent)
		r.With(apiGuard.Require(models.RoleTalent)).Put("/talent/profile", h.handleSaveTalentProfile)
		r.Get("/agencies", h.handleListAgencies)
		r.Get("/agencies/{id}", h.handleGetAgency)
		r.With(apiGuard.Require(models.RoleAgency)).Put("/agency/profile", h.handleSaveAgencyProfile)
		r.Get("/trainers", h.handleListTrainers)
		r.Group(func(r chi.Router) {
			r.Use(apiGuard.Require(models.RoleTrainer))
			r.Get("/trainer/profile", h.handleGetTrainerProfile)
			r.Put("/trainer/profile", h.handleSaveTrainerProfile)
		})

		r.Get("/conversations", h.handleListConversations)
		r.Post("/conversations", h.handleCreateConversation)
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSendMessage)
		r.Patch("/messages/mark-read", h.handleMarkRead)
		r.Get("/messages/unread-count", h.handleUnreadCount)

		r.Get("/verification/status", h.handleVerificationStatus)
		r.Post("/verification/submit", h.handleVerificationSubmit)

		r.Get("/notifications", h.handleGetNotifications)
		r.Post("/notifications/read", h.handleMarkNotificationsRead)

		r.Route("/admin", func(r chi.Router) {
			r.Use(apiGuard.RequireAdmin)

			r.Get("/stats", h.handleAdminStats)
			r.Get("/users", h.handleAdminUsers)
			r.Post("/users/{id}/toggle-admin", h.handleAdminToggleAdmin)
			r.Post("/users/{id}/toggle-ban", h.handleAdminToggleBan)
			r.Post("/users/{id}/tier", h.handleAdminSetTier)
			r.Get("/verifications", h.handleAdminVerifications)
			r.Post("/verifications/{userId}", h.handleAdminReviewVerification)
		})
	})

	return r
}

// csrfMiddleware checks cookie-authenticated mutations. Bearer requests carry
// no ambient credentials and skip the check.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || middleware.IsBearer(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		if !h.validateCSRF(r) {
			writeError(w, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) generateCSRF(r *http.Request) string {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(h.csrfSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

func (h *Handler) validateCSRF(r *http.Request) bool {
	expected := h.generateCSRF(r)
	if expected == "" {
		return false
	}
	token := r.Header.Get("X-CSRF-Token")
	if token == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		_ = r.ParseForm()
		token = r.FormValue("csrf_token")
	}
	return hmac.Equal([]byte(token), []byte(expected))
}

func (h *Handler) sessionCookie(token string, maxAge int, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookieDomain != "" {
		c.Domain = h.cookieDomain
	}
	return c
}

func (h *Handler) link(path string) string {
	return h.publicURL + path
}

func formatDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}
