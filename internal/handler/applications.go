package handler

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"hireloop/internal/middleware"
	"hireloop/internal/models"
	"hireloop/internal/repo"
)

// handleListApplications returns a project's applications to its owner when
// projectId is given, otherwise the caller's own applications.
func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if r.URL.Query().Has("projectId") {
		projectID, ok := queryID(r, "projectId")
		if !ok {
			writeError(w, http.StatusBadRequest, "projectId is invalid")
			return
		}
		if _, ok := h.ownedProject(w, r, projectID); !ok {
			return
		}
		apps, err := h.repo.ListProjectApplications(r.Context(), projectID)
		if err != nil {
			h.fail(w, r, "list project applications", err)
			return
		}
		writeJSON(w, http.StatusOK, apps)
		return
	}

	apps, err := h.repo.ListUserApplications(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "list user applications", err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

type createApplicationRequest struct {
	ProjectID    int64   `json:"projectId" validate:"required,gt=0"`
	CoverLetter  string  `json:"coverLetter" validate:"required,max=5000"`
	ProposedRate float64 `json:"proposedRate" validate:"gte=0"`
}

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	project, err := h.repo.GetProject(r.Context(), req.ProjectID)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get project", err)
		return
	}
	if project.ClientID == user.ID {
		writeError(w, http.StatusBadRequest, "You cannot apply to your own project")
		return
	}
	if project.Status != models.ProjectOpen {
		writeError(w, http.StatusConflict, "Project is not accepting applications")
		return
	}

	tier, err := h.repo.ApplicantTier(r.Context(), user.ID, user.Role)
	if err != nil {
		h.fail(w, r, "applicant tier", err)
		return
	}
	if !tier.Meets(project.MinimumTier) {
		writeError(w, http.StatusForbidden, fmt.Sprintf("This project requires %s tier or above", project.MinimumTier))
		return
	}

	id, err := h.repo.CreateApplication(r.Context(), &models.Application{
		ProjectID:    project.ID,
		ApplicantID:  user.ID,
		CoverLetter:  strings.TrimSpace(req.CoverLetter),
		ProposedRate: req.ProposedRate,
	})
	if errors.Is(err, repo.ErrConflict) {
		writeError(w, http.StatusConflict, "You have already applied to this project")
		return
	}
	if err != nil {
		h.fail(w, r, "create application", err)
		return
	}

	h.notify(r, project.ClientID, repo.NotifyNewApplication, models.Payload{
		"project_id":    project.ID,
		"project_title": project.Title,
		"user_name":     user.Name,
		"user_id":       user.ID,
	}, fmt.Sprintf("New application from <b>%s</b> on \"%s\"\n%s",
		html.EscapeString(user.Name), html.EscapeString(project.Title), h.link("/client/dashboard")))

	app, err := h.repo.GetApplication(r.Context(), id)
	if err != nil {
		h.fail(w, r, "load application", err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

type updateApplicationRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=pending accepted rejected"`
	IsPicked *bool  `json:"isPicked"`
}

func (h *Handler) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}
	var req updateApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" && req.IsPicked == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	app, err := h.repo.GetApplication(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get application", err)
		return
	}
	project, ok := h.ownedProject(w, r, app.ProjectID)
	if !ok {
		return
	}

	if err := h.repo.UpdateApplication(r.Context(), id, req.Status, req.IsPicked); err != nil {
		h.fail(w, r, "update application", err)
		return
	}

	if req.Status != "" && req.Status != app.Status {
		var ntype, verb string
		switch req.Status {
		case models.ApplicationAccepted:
			ntype, verb = repo.NotifyApplicationAccepted, "accepted"
		case models.ApplicationRejected:
			ntype, verb = repo.NotifyApplicationRejected, "declined"
		}
		if ntype != "" {
			h.notify(r, app.ApplicantID, ntype, models.Payload{
				"project_id":    project.ID,
				"project_title": project.Title,
			}, fmt.Sprintf("Your application to \"%s\" was %s\n%s",
				html.EscapeString(project.Title), verb, h.link("/dashboard")))
		}
	}

	updated, err := h.repo.GetApplication(r.Context(), id)
	if err != nil {
		h.fail(w, r, "reload application", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
