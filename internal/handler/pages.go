package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"hireloop/internal/filter"
	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

var funcMap = template.FuncMap{
	"formatDate": formatDate,
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "..."
	},
	"join": func(list models.StringList, sep string) string { return strings.Join(list, sep) },
	"statusText": func(s string) string {
		m := map[string]string{
			"pending":     "Under review",
			"accepted":    "Accepted",
			"rejected":    "Declined",
			"open":        "Open",
			"in_progress": "In progress",
			"completed":   "Completed",
			"closed":      "Closed",
			"unverified":  "Not verified",
			"verified":    "Verified",
		}
		if v, ok := m[s]; ok {
			return v
		}
		return s
	},
	"money": func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	"tier": func(t models.Tier) string {
		if t == models.TierNone {
			return "Unranked"
		}
		return strings.ToUpper(string(t[:1])) + string(t[1:])
	},
	"otherName": func(c models.Conversation, viewerID int64) string {
		for _, p := range c.Participants {
			if p.ID != viewerID {
				return p.Name
			}
		}
		return "Conversation"
	},
}

// parsePages pairs every page template with the shared base layout.
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page := path.Base(name)
		if page == "base.html" {
			continue
		}
		tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/base.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return pages, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	tmpl, ok := h.pages[page]
	if !ok {
		h.log.WithField("page", page).Error("unknown template")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]any)
	}
	user := middleware.UserFromContext(r.Context())
	data["User"] = user
	data["BotUsername"] = h.botUsername
	data["PublicURL"] = h.publicURL
	if user != nil {
		data["CSRFToken"] = h.generateCSRF(r)
		data["Dashboard"] = middleware.DashboardPath(user.Role)
		count, _ := h.repo.UnreadNotificationCount(r.Context(), user.ID)
		data["NotifCount"] = count
		unread, _ := h.repo.UnreadMessageCount(r.Context(), user.ID)
		data["UnreadMessages"] = unread
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.log.WithError(err).WithField("page", page).Error("template execute")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/auth", http.StatusFound)
}

func (h *Handler) handleAuthPage(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "auth.html", map[string]any{
		"AuthURL": h.link("/auth/telegram"),
	})
}

// handleDashboard sends each user to the dashboard of their role.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if !user.Onboarded {
		http.Redirect(w, r, "/onboarding", http.StatusFound)
		return
	}
	http.Redirect(w, r, middleware.DashboardPath(user.Role), http.StatusFound)
}

func (h *Handler) handleOnboardingPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user.Onboarded {
		http.Redirect(w, r, middleware.DashboardPath(user.Role), http.StatusFound)
		return
	}
	h.render(w, r, "onboarding.html", map[string]any{
		"Roles": []models.Role{models.RoleClient, models.RoleTalent, models.RoleAgency, models.RoleTrainer},
	})
}

func (h *Handler) handleOnboardingForm(w http.ResponseWriter, r *http.Request) {
	req := onboardingRequest{
		Name: r.FormValue("name"),
		Role: r.FormValue("role"),
	}
	if err := validate.Struct(req); err != nil {
		h.render(w, r, "onboarding.html", map[string]any{
			"Roles": []models.Role{models.RoleClient, models.RoleTalent, models.RoleAgency, models.RoleTrainer},
			"Error": validationMessage(err),
		})
		return
	}

	user, err := h.completeOnboarding(r, req)
	if err != nil && !errors.Is(err, repo.ErrConflict) {
		h.log.WithError(err).Error("complete onboarding")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		user = middleware.UserFromContext(r.Context())
	}
	http.Redirect(w, r, middleware.DashboardPath(user.Role), http.StatusFound)
}

func (h *Handler) handleClientDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	projects, err := h.repo.ListProjects(r.Context(), repo.ProjectFilter{ClientID: user.ID})
	if err != nil {
		h.log.WithError(err).Error("client dashboard projects")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	picked := map[int64][]models.Application{}
	for _, p := range projects {
		if p.ApplicationCount == 0 {
			continue
		}
		apps, err := h.repo.ListProjectApplications(r.Context(), p.ID)
		if err != nil {
			continue
		}
		for _, a := range apps {
			if a.IsPicked {
				picked[p.ID] = append(picked[p.ID], a)
			}
		}
	}

	notifs, _ := h.repo.ListNotifications(r.Context(), user.ID, 10)
	h.render(w, r, "client_dashboard.html", map[string]any{
		"Projects":      projects,
		"Picked":        picked,
		"Notifications": notifs,
	})
}

// handleApplicantDashboard serves both talent and agency dashboards.
func (h *Handler) handleApplicantDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	ctx := r.Context()

	apps, err := h.repo.ListUserApplications(ctx, user.ID)
	if err != nil {
		h.log.WithError(err).Error("applicant dashboard applications")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Applications": apps}
	switch user.Role {
	case models.RoleTalent:
		if p, err := h.repo.GetTalentProfile(ctx, user.ID); err == nil {
			data["Talent"] = p
		}
	case models.RoleAgency:
		if p, err := h.repo.GetAgencyProfile(ctx, user.ID); err == nil {
			data["Agency"] = p
		}
	}

	tier, _ := h.repo.ApplicantTier(ctx, user.ID, user.Role)
	data["Tier"] = tier

	open, _ := h.repo.ListProjects(ctx, repo.ProjectFilter{Status: models.ProjectOpen, Limit: 5})
	data["Recommended"] = open

	if v, err := h.repo.GetVerification(ctx, user.ID); err == nil {
		data["Verification"] = v
	}
	data["Notifications"], _ = h.repo.ListNotifications(ctx, user.ID, 10)

	h.render(w, r, "applicant_dashboard.html", data)
}

func (h *Handler) handleTrainerDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	data := map[string]any{}
	if p, err := h.repo.GetTrainerProfile(r.Context(), user.ID); err == nil {
		data["Profile"] = p
	}
	if v, err := h.repo.GetVerification(r.Context(), user.ID); err == nil {
		data["Verification"] = v
	}
	data["Notifications"], _ = h.repo.ListNotifications(r.Context(), user.ID, 10)
	h.render(w, r, "trainer_dashboard.html", data)
}

func (h *Handler) handleBrowseProjects(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projects, err := h.repo.ListProjects(r.Context(), repo.ProjectFilter{Status: models.ProjectOpen})
	if err != nil {
		h.log.WithError(err).Error("browse projects")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	q := filter.FromValues(r.URL.Query())
	applied := map[int64]bool{}
	if apps, err := h.repo.ListUserApplications(r.Context(), user.ID); err == nil {
		for _, a := range apps {
			applied[a.ProjectID] = true
		}
	}

	h.render(w, r, "projects.html", map[string]any{
		"Projects":   filter.Apply(filter.Open(projects), q),
		"Categories": categoriesOf(projects),
		"Filter":     q,
		"SkillsText": strings.Join(q.Skills, ", "),
		"Applied":    applied,
	})
}

func (h *Handler) handleBrowseTalents(w http.ResponseWriter, r *http.Request) {
	talents, err := h.repo.ListTalentProfiles(r.Context())
	if err != nil {
		h.log.WithError(err).Error("browse talents")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	q := filter.FromValues(r.URL.Query())
	h.render(w, r, "talents.html", map[string]any{
		"Talents":    filter.Apply(talents, q),
		"Categories": categoriesOf(talents),
		"Filter":     q,
		"SkillsText": strings.Join(q.Skills, ", "),
	})
}

// handleMessagesPage renders the conversation list and, when ?c= names one of
// the user's conversations, its messages. Opening a conversation marks it read.
func (h *Handler) handleMessagesPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	ctx := r.Context()

	data := map[string]any{}
	if id, ok := queryID(r, "c"); ok {
		if member, err := h.repo.IsParticipant(ctx, id, user.ID); err == nil && member {
			if _, err := h.repo.MarkConversationRead(ctx, id, user.ID); err != nil {
				h.log.WithError(err).Warn("mark conversation read")
			}
			msgs, err := h.repo.ListMessages(ctx, id)
			if err == nil {
				data["Messages"] = msgs
			}
			data["Selected"] = id
		}
	}

	convs, err := h.repo.ListConversations(ctx, user.ID)
	if err != nil {
		h.log.WithError(err).Error("list conversations")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	data["Conversations"] = convs
	h.render(w, r, "messages.html", data)
}

func categoriesOf[T filter.Item](items []T) []string {
	seen := map[string]struct{}{}
	for _, it := range items {
		if c := it.CategoryName(); c != "" {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
