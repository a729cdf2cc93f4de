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

func (h *Handler) handleListTalents(w http.ResponseWriter, r *http.Request) {
	talents, err := h.repo.ListTalentProfiles(r.Context())
	if err != nil {
		h.fail(w, r, "list talents", err)
		return
	}
	writeJSON(w, http.StatusOK, filter.Apply(talents, filter.FromValues(r.URL.Query())))
}

func (h *Handler) handleGetTalent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Talent not found")
		return
	}
	p, err := h.repo.GetTalentProfile(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Talent not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get talent", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type talentProfileRequest struct {
	Title           string   `json:"title" validate:"required,max=120"`
	Bio             string   `json:"bio" validate:"max=5000"`
	Category        string   `json:"category" validate:"required,max=50"`
	Skills          []string `json:"skills" validate:"max=30,dive,required,max=50"`
	HourlyRate      float64  `json:"hourlyRate" validate:"gte=0"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=60"`
	Availability    string   `json:"availability" validate:"omitempty,oneof=full_time part_time unavailable"`
}

func (h *Handler) handleSaveTalentProfile(w http.ResponseWriter, r *http.Request) {
	var req talentProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	err := h.repo.UpsertTalentProfile(r.Context(), &models.TalentProfile{
		UserID:          user.ID,
		Title:           strings.TrimSpace(req.Title),
		Bio:             strings.TrimSpace(req.Bio),
		Category:        strings.TrimSpace(req.Category),
		Skills:          normalizeSkills(req.Skills),
		HourlyRate:      req.HourlyRate,
		ExperienceYears: req.ExperienceYears,
		Availability:    req.Availability,
	})
	if err != nil {
		h.fail(w, r, "save talent profile", err)
		return
	}
	p, err := h.repo.GetTalentProfile(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "reload talent profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListAgencies(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.repo.ListAgencyProfiles(r.Context())
	if err != nil {
		h.fail(w, r, "list agencies", err)
		return
	}
	writeJSON(w, http.StatusOK, filter.Apply(agencies, filter.FromValues(r.URL.Query())))
}

func (h *Handler) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Agency not found")
		return
	}
	p, err := h.repo.GetAgencyProfile(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Agency not found")
		return
	}
	if err != nil {
		h.fail(w, r, "get agency", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type agencyProfileRequest struct {
	AgencyName  string   `json:"agencyName" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	Category    string   `json:"category" validate:"required,max=50"`
	TeamSize    int      `json:"teamSize" validate:"gte=1,lte=10000"`
	Skills      []string `json:"skills" validate:"max=30,dive,required,max=50"`
	HourlyRate  float64  `json:"hourlyRate" validate:"gte=0"`
}

func (h *Handler) handleSaveAgencyProfile(w http.ResponseWriter, r *http.Request) {
	var req agencyProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	err := h.repo.UpsertAgencyProfile(r.Context(), &models.AgencyProfile{
		UserID:      user.ID,
		AgencyName:  strings.TrimSpace(req.AgencyName),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		TeamSize:    req.TeamSize,
		Skills:      normalizeSkills(req.Skills),
		HourlyRate:  req.HourlyRate,
	})
	if err != nil {
		h.fail(w, r, "save agency profile", err)
		return
	}
	p, err := h.repo.GetAgencyProfile(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "reload agency profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := h.repo.ListTrainerProfiles(r.Context())
	if err != nil {
		h.fail(w, r, "list trainers", err)
		return
	}
	q := filter.FromValues(r.URL.Query())
	// Trainers have no category.
	q.Category = ""
	writeJSON(w, http.StatusOK, filter.Apply(trainers, q))
}

// handleGetTrainerProfile returns an empty profile until the trainer saves one.
func (h *Handler) handleGetTrainerProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	p, err := h.repo.GetTrainerProfile(r.Context(), user.ID)
	if errors.Is(err, repo.ErrNotFound) {
		writeJSON(w, http.StatusOK, &models.TrainerProfile{
			UserID:         user.ID,
			Name:           user.Name,
			Expertise:      models.StringList{},
			SessionFormats: models.StringList{},
		})
		return
	}
	if err != nil {
		h.fail(w, r, "get trainer profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type trainerProfileRequest struct {
	Headline       string   `json:"headline" validate:"required,max=120"`
	Bio            string   `json:"bio" validate:"max=5000"`
	Expertise      []string `json:"expertise" validate:"max=30,dive,required,max=50"`
	SessionFormats []string `json:"sessionFormats" validate:"max=5,dive,oneof=one_on_one group workshop"`
	HourlyRate     float64  `json:"hourlyRate" validate:"gte=0"`
}

func (h *Handler) handleSaveTrainerProfile(w http.ResponseWriter, r *http.Request) {
	var req trainerProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	err := h.repo.UpsertTrainerProfile(r.Context(), &models.TrainerProfile{
		UserID:         user.ID,
		Headline:       strings.TrimSpace(req.Headline),
		Bio:            strings.TrimSpace(req.Bio),
		Expertise:      normalizeSkills(req.Expertise),
		SessionFormats: normalizeSkills(req.SessionFormats),
		HourlyRate:     req.HourlyRate,
	})
	if err != nil {
		h.fail(w, r, "save trainer profile", err)
		return
	}
	p, err := h.repo.GetTrainerProfile(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, "reload trainer profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
