package repo

import (
	"context"
	"fmt"
	"strings"

	"hireloop/internal/models"
)

const applicationColumns = `id, project_id, applicant_id, cover_letter, proposed_rate, status, is_picked, created_at`

func (r *Repo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (project_id, applicant_id, cover_letter, proposed_rate) VALUES (?, ?, ?, ?)`,
		a.ProjectID, a.ApplicantID, a.CoverLetter, a.ProposedRate,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("create application: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repo) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	a := &models.Application{}
	err := r.db.GetContext(ctx, a, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", notFound(err))
	}
	return a, nil
}

// UpdateApplication sets status and the picked flag. Empty status leaves it unchanged.
func (r *Repo) UpdateApplication(ctx context.Context, id int64, status string, isPicked *bool) error {
	var sets []string
	var args []any
	if status != "" {
		sets = append(sets, `status = ?`)
		args = append(args, status)
	}
	if isPicked != nil {
		sets = append(sets, `is_picked = ?`)
		args = append(args, *isPicked)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	_, err := r.db.ExecContext(ctx, `UPDATE applications SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return nil
}

func (r *Repo) ListProjectApplications(ctx context.Context, projectID int64) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM applications WHERE project_id = ? ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list project applications: %w", err)
	}

	for i := range apps {
		applicant, err := r.GetUserSummary(ctx, apps[i].ApplicantID)
		if err != nil {
			return nil, err
		}
		apps[i].Applicant = applicant
	}
	return apps, nil
}

func (r *Repo) ListUserApplications(ctx context.Context, userID int64) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM applications WHERE applicant_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}

	for i := range apps {
		ref := &models.ProjectRef{}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, title, status FROM projects WHERE id = ?`, apps[i].ProjectID,
		).Scan(&ref.ID, &ref.Title, &ref.Status)
		if err != nil {
			return nil, fmt.Errorf("application project: %w", err)
		}
		apps[i].Project = ref
	}
	return apps, nil
}
