package handler

import (
	"errors"
	"net/http"
	"strings"

	"hireloop/internal/filter"
	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

type createProjectRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	Budget      float64  `json:"budget" validate:"gt=0"`
	Deadline    string   `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Category    string   `json:"category" validate:"required,max=50"`
	Skills      []string `json:"skills" validate:"max=20,dive,required,max=50"`
	ProjectType string   `json:"projectType" validate:"required,oneof=fixed hourly"`
	MinimumTier string   `json:"minimumTier" validate:"omitempty,oneof=bronze silver gold"`
}

// handleListProjects serves open projects by default. mine=1 lists the
// caller's own projects in every status; status=all lifts the status filter.
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	q := r.URL.Query()

	f := repo.ProjectFilter{Status: q.Get("status")}
	if q.Get("mine") == "1" {
		f.ClientID = user.ID
	} else if f.Status == "" {
		f.Status = models.ProjectOpen
	}
	if f.Status == "all" {
		f.Status = ""
	}

	projects, err := h.repo.ListProjects(r.Context(), f)
	if err != nil {
		h.fail(w, r, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, filter.Apply(projects, filter.FromValues(q)))
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	p := &models.Project{
		ClientID:    user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Category:    strings.TrimSpace(req.Category),
		Skills:      normalizeSkills(req.Skills),
		ProjectType: req.ProjectType,
		MinimumTier: models.Tier(req.MinimumTier),
	}

	id, err := h.repo.CreateProject(r.Context(), p)
	if err != nil {
		h.fail(w, r, "create project", err)
		return
	}

	created, err := h.repo.GetProject(r.Context(), id)
	if err != nil {
		h.fail(w, r, "load created project", err)
		return
	}
	h.log.WithField("project_id", id).WithField("client_id", user.ID).Info("project created")
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	project, err := h.repo.GetProject(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type projectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed closed"`
}

func (h *Handler) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	var req projectStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, ok := h.ownedProject(w, r, id)
	if !ok {
		return
	}

	err := h.repo.SetProjectStatus(r.Context(), project.ID, req.Status)
	if errors.Is(err, repo.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, "Cannot move project from "+project.Status+" to "+req.Status)
		return
	}
	if err != nil {
		h.fail(w, r, "set project status", err)
		return
	}

	updated, err := h.repo.GetProject(r.Context(), id)
	if err != nil {
		h.fail(w, r, "reload project", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ownedProject loads a project the session user owns, writing 404/403 otherwise.
func (h *Handler) ownedProject(w http.ResponseWriter, r *http.Request, id int64) (*models.Project, bool) {
	project, err := h.repo.GetProject(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil, false
	}
	if err != nil {
		h.fail(w, r, "get project", err)
		return nil, false
	}
	user := middleware.UserFromContext(r.Context())
	if project.ClientID != user.ID && !user.IsAdmin {
		writeError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return project, true
}

func normalizeSkills(in []string) models.StringList {
	out := models.StringList{}
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
