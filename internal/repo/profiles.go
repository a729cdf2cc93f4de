package repo

import (
	"context"
	"fmt"

	"hireloop/internal/models"
)

func (r *Repo) UpsertTalentProfile(ctx context.Context, p *models.TalentProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO talent_profiles (user_id, title, bio, category, skills, hourly_rate, experience_years, tier, availability)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			title = excluded.title, bio = excluded.bio, category = excluded.category, skills = excluded.skills,
			hourly_rate = excluded.hourly_rate, experience_years = excluded.experience_years,
			availability = excluded.availability, updated_at = CURRENT_TIMESTAMP`,
		p.UserID, p.Title, p.Bio, p.Category, p.Skills, p.HourlyRate, p.ExperienceYears, p.Tier, p.Availability,
	)
	if err != nil {
		return fmt.Errorf("upsert talent profile: %w", err)
	}
	return nil
}

const talentSelect = `SELECT t.user_id, u.name, t.title, t.bio, t.category, t.skills, t.hourly_rate,
	t.experience_years, t.tier, t.availability, t.updated_at
	FROM talent_profiles t JOIN users u ON u.id = t.user_id`

func (r *Repo) GetTalentProfile(ctx context.Context, userID int64) (*models.TalentProfile, error) {
	p := &models.TalentProfile{}
	if err := r.db.GetContext(ctx, p, talentSelect+` WHERE t.user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("get talent profile: %w", notFound(err))
	}
	return p, nil
}

func (r *Repo) ListTalentProfiles(ctx context.Context) ([]models.TalentProfile, error) {
	out := []models.TalentProfile{}
	if err := r.db.SelectContext(ctx, &out, talentSelect+` WHERE u.is_banned = 0 ORDER BY t.updated_at DESC, t.user_id`); err != nil {
		return nil, fmt.Errorf("list talent profiles: %w", err)
	}
	return out, nil
}

func (r *Repo) UpsertAgencyProfile(ctx context.Context, p *models.AgencyProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agency_profiles (user_id, agency_name, description, category, team_size, skills, hourly_rate, tier)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			agency_name = excluded.agency_name, description = excluded.description, category = excluded.category,
			team_size = excluded.team_size, skills = excluded.skills, hourly_rate = excluded.hourly_rate,
			updated_at = CURRENT_TIMESTAMP`,
		p.UserID, p.AgencyName, p.Description, p.Category, p.TeamSize, p.Skills, p.HourlyRate, p.Tier,
	)
	if err != nil {
		return fmt.Errorf("upsert agency profile: %w", err)
	}
	return nil
}

const agencySelect = `SELECT a.user_id, u.name, a.agency_name, a.description, a.category, a.team_size, a.skills,
	a.hourly_rate, a.tier, a.updated_at
	FROM agency_profiles a JOIN users u ON u.id = a.user_id`

func (r *Repo) GetAgencyProfile(ctx context.Context, userID int64) (*models.AgencyProfile, error) {
	p := &models.AgencyProfile{}
	if err := r.db.GetContext(ctx, p, agencySelect+` WHERE a.user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("get agency profile: %w", notFound(err))
	}
	return p, nil
}

func (r *Repo) ListAgencyProfiles(ctx context.Context) ([]models.AgencyProfile, error) {
	out := []models.AgencyProfile{}
	if err := r.db.SelectContext(ctx, &out, agencySelect+` WHERE u.is_banned = 0 ORDER BY a.updated_at DESC, a.user_id`); err != nil {
		return nil, fmt.Errorf("list agency profiles: %w", err)
	}
	return out, nil
}

func (r *Repo) UpsertTrainerProfile(ctx context.Context, p *models.TrainerProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trainer_profiles (user_id, headline, bio, expertise, session_formats, hourly_rate, tier)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			headline = excluded.headline, bio = excluded.bio, expertise = excluded.expertise,
			session_formats = excluded.session_formats, hourly_rate = excluded.hourly_rate,
			updated_at = CURRENT_TIMESTAMP`,
		p.UserID, p.Headline, p.Bio, p.Expertise, p.SessionFormats, p.HourlyRate, p.Tier,
	)
	if err != nil {
		return fmt.Errorf("upsert trainer profile: %w", err)
	}
	return nil
}

const trainerSelect = `SELECT t.user_id, u.name, t.headline, t.bio, t.expertise, t.session_formats, t.hourly_rate,
	t.tier, t.updated_at
	FROM trainer_profiles t JOIN users u ON u.id = t.user_id`

func (r *Repo) GetTrainerProfile(ctx context.Context, userID int64) (*models.TrainerProfile, error) {
	p := &models.TrainerProfile{}
	if err := r.db.GetContext(ctx, p, trainerSelect+` WHERE t.user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("get trainer profile: %w", notFound(err))
	}
	return p, nil
}

func (r *Repo) ListTrainerProfiles(ctx context.Context) ([]models.TrainerProfile, error) {
	out := []models.TrainerProfile{}
	if err := r.db.SelectContext(ctx, &out, trainerSelect+` WHERE u.is_banned = 0 ORDER BY t.updated_at DESC, t.user_id`); err != nil {
		return nil, fmt.Errorf("list trainer profiles: %w", err)
	}
	return out, nil
}

// SetTier is admin-only; profile upserts never change the tier.
func (r *Repo) SetTier(ctx context.Context, role models.Role, userID int64, tier models.Tier) error {
	var table string
	switch role {
	case models.RoleTalent:
		table = "talent_profiles"
	case models.RoleAgency:
		table = "agency_profiles"
	case models.RoleTrainer:
		table = "trainer_profiles"
	default:
		return fmt.Errorf("set tier: role %q: %w", role, ErrNoTier)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET tier = ? WHERE user_id = ?`, tier, userID)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplicantTier returns the tier of a talent or agency profile; unranked when none exists.
func (r *Repo) ApplicantTier(ctx context.Context, userID int64, role models.Role) (models.Tier, error) {
	var table string
	switch role {
	case models.RoleTalent:
		table = "talent_profiles"
	case models.RoleAgency:
		table = "agency_profiles"
	default:
		return models.TierNone, nil
	}
	var tiers []models.Tier
	if err := r.db.SelectContext(ctx, &tiers, `SELECT tier FROM `+table+` WHERE user_id = ?`, userID); err != nil {
		return models.TierNone, fmt.Errorf("applicant tier: %w", err)
	}
	if len(tiers) == 0 {
		return models.TierNone, nil
	}
	return tiers[0], nil
}
