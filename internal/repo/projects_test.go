package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireloop/internal/models"
)

func createProject(t *testing.T, r *Repo, clientID int64, title string) int64 {
	t.Helper()
	id, err := r.CreateProject(context.Background(), &models.Project{
		ClientID:    clientID,
		Title:       title,
		Description: "Build " + title,
		Budget:      1500,
		Deadline:    "2026-12-01",
		Category:    "web",
		Skills:      models.StringList{"go", "sql"},
		ProjectType: models.ProjectFixed,
	})
	require.NoError(t, err)
	return id
}

func TestCreateAndGetProject(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	client := newUser(t, r, 1, "Carol", models.RoleClient)

	id := createProject(t, r, client.ID, "API server")

	p, err := r.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "API server", p.Title)
	assert.Equal(t, models.ProjectOpen, p.Status)
	assert.Equal(t, models.StringList{"go", "sql"}, p.Skills)
	assert.Equal(t, 1500.0, p.Budget)
	require.NotNil(t, p.Client)
	assert.Equal(t, "Carol", p.Client.Name)
	assert.Zero(t, p.ApplicationCount)
}

func TestListProjects_StatusAndClient(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	c1 := newUser(t, r, 1, "Carol", models.RoleClient)
	c2 := newUser(t, r, 2, "Chris", models.RoleClient)

	a := createProject(t, r, c1.ID, "A")
	createProject(t, r, c1.ID, "B")
	createProject(t, r, c2.ID, "C")
	require.NoError(t, r.SetProjectStatus(ctx, a, models.ProjectInProgress))

	open, err := r.ListProjects(ctx, ProjectFilter{Status: models.ProjectOpen})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	mine, err := r.ListProjects(ctx, ProjectFilter{ClientID: c1.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, "Carol", p.Client.Name)
	}
}

func TestListProjects_NoImplicitLimit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	client := newUser(t, r, 1, "Carol", models.RoleClient)

	oldest := createProject(t, r, client.ID, "needle")
	for i := 0; i < 204; i++ {
		createProject(t, r, client.ID, "filler")
	}

	all, err := r.ListProjects(ctx, ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 205)
	assert.Equal(t, oldest, all[len(all)-1].ID)

	recent, err := r.ListProjects(ctx, ProjectFilter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestSetProjectStatus_Lifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	client := newUser(t, r, 1, "Carol", models.RoleClient)
	id := createProject(t, r, client.ID, "A")

	assert.ErrorIs(t, r.SetProjectStatus(ctx, id, models.ProjectCompleted), ErrInvalidTransition)
	require.NoError(t, r.SetProjectStatus(ctx, id, models.ProjectInProgress))
	require.NoError(t, r.SetProjectStatus(ctx, id, models.ProjectCompleted))
	assert.ErrorIs(t, r.SetProjectStatus(ctx, id, models.ProjectOpen), ErrInvalidTransition)
	assert.ErrorIs(t, r.SetProjectStatus(ctx, 999, models.ProjectClosed), ErrNotFound)
}

func TestApplications(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	client := newUser(t, r, 1, "Carol", models.RoleClient)
	talent := newUser(t, r, 2, "Tom", models.RoleTalent)
	pid := createProject(t, r, client.ID, "A")

	appID, err := r.CreateApplication(ctx, &models.Application{ProjectID: pid, ApplicantID: talent.ID, CoverLetter: "hi", ProposedRate: 40})
	require.NoError(t, err)

	_, err = r.CreateApplication(ctx, &models.Application{ProjectID: pid, ApplicantID: talent.ID})
	assert.ErrorIs(t, err, ErrConflict)

	picked := true
	require.NoError(t, r.UpdateApplication(ctx, appID, models.ApplicationAccepted, &picked))

	apps, err := r.ListProjectApplications(ctx, pid)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, models.ApplicationAccepted, apps[0].Status)
	assert.True(t, apps[0].IsPicked)
	assert.Equal(t, "Tom", apps[0].Applicant.Name)

	mine, err := r.ListUserApplications(ctx, talent.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Project.Title)

	p, err := r.GetProject(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ApplicationCount)
}

func TestProfilesAndTier(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	talent := newUser(t, r, 2, "Tom", models.RoleTalent)

	tier, err := r.ApplicantTier(ctx, talent.ID, models.RoleTalent)
	require.NoError(t, err)
	assert.Equal(t, models.TierNone, tier)

	require.NoError(t, r.UpsertTalentProfile(ctx, &models.TalentProfile{
		UserID: talent.ID, Title: "Backend dev", Skills: models.StringList{"go"}, HourlyRate: 50, Tier: models.TierGold,
	}))
	require.NoError(t, r.SetTier(ctx, models.RoleTalent, talent.ID, models.TierSilver))
	assert.ErrorIs(t, r.SetTier(ctx, models.RoleClient, talent.ID, models.TierGold), ErrNoTier)

	// upsert must not overwrite the tier
	require.NoError(t, r.UpsertTalentProfile(ctx, &models.TalentProfile{
		UserID: talent.ID, Title: "Senior backend dev", Skills: models.StringList{"go", "k8s"}, Tier: models.TierGold,
	}))

	p, err := r.GetTalentProfile(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior backend dev", p.Title)
	assert.Equal(t, "Tom", p.Name)
	assert.Equal(t, models.TierSilver, p.Tier)

	list, err := r.ListTalentProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
