package repo

import (
	"context"
	"fmt"
	"strings"

	"hireloop/internal/models"
)

const projectColumns = `p.id, p.client_id, p.title, p.description, p.budget, p.deadline, p.category, p.skills,
	p.project_type, p.status, p.minimum_tier, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM applications a WHERE a.project_id = p.id) AS application_count`

type ProjectFilter struct {
	Status   string
	ClientID int64
	Limit    int
}

// projectTransitions lists the statuses each status may move to.
var projectTransitions = map[string][]string{
	models.ProjectOpen:       {models.ProjectInProgress, models.ProjectClosed},
	models.ProjectInProgress: {models.ProjectCompleted, models.ProjectClosed},
}

func CanTransition(from, to string) bool {
	for _, s := range projectTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (r *Repo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p.Skills == nil {
		p.Skills = models.StringList{}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (client_id, title, description, budget, deadline, category, skills, project_type, status, minimum_tier)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'open', ?)`,
		p.ClientID, p.Title, p.Description, p.Budget, p.Deadline, p.Category, p.Skills, p.ProjectType, p.MinimumTier,
	)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	err := r.db.GetContext(ctx, p, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", notFound(err))
	}

	client, err := r.GetUserSummary(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	p.Client = client

	return p, nil
}

func (r *Repo) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p`
	var args []any
	var conditions []string

	if f.Status != "" {
		conditions = append(conditions, `p.status = ?`)
		args = append(args, f.Status)
	}
	if f.ClientID != 0 {
		conditions = append(conditions, `p.client_id = ?`)
		args = append(args, f.ClientID)
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}

	query += ` ORDER BY p.created_at DESC, p.id DESC`

	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	clients := make(map[int64]*models.UserSummary)
	for i := range projects {
		cid := projects[i].ClientID
		if _, ok := clients[cid]; !ok {
			client, err := r.GetUserSummary(ctx, cid)
			if err != nil {
				return nil, err
			}
			clients[cid] = client
		}
		projects[i].Client = clients[cid]
	}

	return projects, nil
}

// SetProjectStatus moves a project along its lifecycle.
func (r *Repo) SetProjectStatus(ctx context.Context, id int64, status string) error {
	var current string
	if err := r.db.GetContext(ctx, &current, `SELECT status FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("get project status: %w", notFound(err))
	}
	if !CanTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		status, id, current,
	)
	if err != nil {
		return fmt.Errorf("set project status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}
	return nil
}
