package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireloop/internal/models"
	"hireloop/internal/repo"
	"hireloop/internal/telegram"
)

const testBotToken = "123:ABC"

type testEnv struct {
	t    *testing.T
	repo *repo.Repo
	h    *Handler
	srv  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r, err := repo.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	log, _ := test.NewNullLogger()
	h, err := New(r, Options{
		BotToken:   testBotToken,
		CSRFSecret: "secret",
		PublicURL:  "http://localhost:3000",
		Log:        log,
	})
	require.NoError(t, err)
	return &testEnv{t: t, repo: r, h: h, srv: h.Router()}
}

type testUser struct {
	*models.User
	Token string
}

func (e *testEnv) user(tgID int64, name string, role models.Role) testUser {
	e.t.Helper()
	ctx := context.Background()
	u, _, err := e.repo.UpsertUser(ctx, tgID, "", name)
	require.NoError(e.t, err)
	if role != "" {
		require.NoError(e.t, e.repo.CompleteOnboarding(ctx, u.ID, name, role))
	}
	u, err = e.repo.GetUser(ctx, u.ID)
	require.NoError(e.t, err)

	token := repo.GenerateToken()
	require.NoError(e.t, e.repo.CreateSession(ctx, token, u.ID))
	return testUser{User: u, Token: token}
}

func (e *testEnv) do(method, target, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Error
}

func (e *testEnv) project(client testUser, title string, p map[string]any) models.Project {
	e.t.Helper()
	body := map[string]any{
		"title":       title,
		"description": "Build " + title,
		"budget":      1000,
		"category":    "web",
		"skills":      []string{"go", "react"},
		"projectType": "fixed",
	}
	for k, v := range p {
		body[k] = v
	}
	rec := e.do(http.MethodPost, "/api/projects", client.Token, body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Project](e.t, rec)
}

func TestAPIGuard(t *testing.T) {
	e := newTestEnv(t)
	talent := e.user(2, "Tom", models.RoleTalent)

	rec := e.do(http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorBody(t, rec))

	rec = e.do(http.MethodPost, "/api/projects", talent.Token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", errorBody(t, rec))

	rec = e.do(http.MethodGet, "/api/admin/stats", talent.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPageGuard(t *testing.T) {
	e := newTestEnv(t)
	talent := e.user(2, "Tom", models.RoleTalent)
	fresh := e.user(3, "Nova", "")

	tests := []struct {
		name     string
		path     string
		token    string
		location string
	}{
		{"anonymous", "/client/dashboard", "", "/auth"},
		{"wrong role", "/client/dashboard", talent.Token, "/dashboard"},
		{"dashboard redirect", "/dashboard", talent.Token, "/talent/dashboard"},
		{"not onboarded", "/dashboard", fresh.Token, "/onboarding"},
		{"root", "/", "", "/auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestListProjects_OnlyOpenByDefault(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)

	e.project(client, "Landing page", nil)
	e.project(client, "Mobile app", map[string]any{"category": "mobile", "skills": []string{"swift"}})
	done := e.project(client, "Old site", nil)
	rec := e.do(http.MethodPatch, "/api/projects/"+strconv.FormatInt(done.ID, 10)+"/status", client.Token,
		map[string]string{"status": "closed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/projects", talent.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Project](t, rec), 2)

	rec = e.do(http.MethodGet, "/api/projects?search=MOBILE", talent.Token, nil)
	got := decode[[]models.Project](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Mobile app", got[0].Title)

	rec = e.do(http.MethodGet, "/api/projects?category=all&skills=Go,React", talent.Token, nil)
	got = decode[[]models.Project](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Landing page", got[0].Title)

	rec = e.do(http.MethodGet, "/api/projects?search=nothing-matches", talent.Token, nil)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = e.do(http.MethodGet, "/api/projects?mine=1", client.Token, nil)
	assert.Len(t, decode[[]models.Project](t, rec), 3)
}

func TestListProjects_SearchReachesOldest(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)

	ctx := context.Background()
	for i := 0; i < 205; i++ {
		title := "filler"
		if i == 0 {
			title = "needle"
		}
		_, err := e.repo.CreateProject(ctx, &models.Project{
			ClientID: client.ID, Title: title, Budget: 100, Category: "web",
			Skills: models.StringList{}, ProjectType: models.ProjectFixed,
		})
		require.NoError(t, err)
	}

	rec := e.do(http.MethodGet, "/api/projects?status=all", talent.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Project](t, rec), 205)

	rec = e.do(http.MethodGet, "/api/projects?search=needle", talent.Token, nil)
	got := decode[[]models.Project](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "needle", got[0].Title)
}

func TestCreateProject_Validation(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)

	rec := e.do(http.MethodPost, "/api/projects", client.Token, map[string]any{
		"title": "No budget", "description": "d", "category": "web", "projectType": "fixed",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "budget must be greater than 0", errorBody(t, rec))

	rec = e.do(http.MethodPost, "/api/projects", client.Token, map[string]any{
		"title": "Bad type", "description": "d", "category": "web", "budget": 10, "projectType": "barter",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "projectType must be one of")
}

func TestProjectStatus_InvalidTransition(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	other := e.user(2, "Cid", models.RoleClient)
	p := e.project(client, "Shop", nil)
	path := "/api/projects/" + strconv.FormatInt(p.ID, 10) + "/status"

	rec := e.do(http.MethodPatch, path, other.Token, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPatch, path, client.Token, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPatch, path, client.Token, map[string]string{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProjectInProgress, decode[models.Project](t, rec).Status)
}

func TestCreateApplication(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)
	p := e.project(client, "API", nil)

	body := map[string]any{"projectId": p.ID, "coverLetter": "I can do it", "proposedRate": 50}
	rec := e.do(http.MethodPost, "/api/applications", talent.Token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[models.Application](t, rec)
	assert.Equal(t, models.ApplicationPending, app.Status)

	rec = e.do(http.MethodPost, "/api/applications", talent.Token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "You have already applied to this project", errorBody(t, rec))

	notifs, err := e.repo.ListNotifications(context.Background(), client.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, repo.NotifyNewApplication, notifs[0].Type)

	rec = e.do(http.MethodGet, "/api/applications?projectId="+strconv.FormatInt(p.ID, 10), client.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	apps := decode[[]models.Application](t, rec)
	require.Len(t, apps, 1)
	assert.Equal(t, "Tom", apps[0].Applicant.Name)

	picked := true
	rec = e.do(http.MethodPatch, "/api/applications/"+strconv.FormatInt(app.ID, 10), client.Token,
		map[string]any{"status": "accepted", "isPicked": picked})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Application](t, rec)
	assert.Equal(t, models.ApplicationAccepted, updated.Status)
	assert.True(t, updated.IsPicked)
}

func TestCreateApplication_Rules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)

	gold := e.project(client, "Premium", map[string]any{"minimumTier": "silver"})
	rec := e.do(http.MethodPost, "/api/applications", talent.Token,
		map[string]any{"projectId": gold.ID, "coverLetter": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorBody(t, rec), "silver")

	require.NoError(t, e.repo.UpsertTalentProfile(ctx, &models.TalentProfile{UserID: talent.ID, Title: "Dev", Category: "web"}))
	require.NoError(t, e.repo.SetTier(ctx, models.RoleTalent, talent.ID, models.TierGold))
	rec = e.do(http.MethodPost, "/api/applications", talent.Token,
		map[string]any{"projectId": gold.ID, "coverLetter": "hi"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	closed := e.project(client, "Closed", nil)
	require.NoError(t, e.repo.SetProjectStatus(ctx, closed.ID, models.ProjectClosed))
	rec = e.do(http.MethodPost, "/api/applications", talent.Token,
		map[string]any{"projectId": closed.ID, "coverLetter": "hi"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/api/applications", talent.Token,
		map[string]any{"projectId": 9999, "coverLetter": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", errorBody(t, rec))
}

func TestChat_MarkReadClearsUnread(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)
	stranger := e.user(3, "Eve", models.RoleAgency)

	rec := e.do(http.MethodPost, "/api/conversations", client.Token, map[string]any{"participantId": talent.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv := decode[models.Conversation](t, rec)

	rec = e.do(http.MethodPost, "/api/conversations", talent.Token, map[string]any{"participantId": client.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, conv.ID, decode[models.Conversation](t, rec).ID)

	for _, text := range []string{"hello", "are you free?"} {
		rec = e.do(http.MethodPost, "/api/messages", client.Token,
			map[string]any{"conversationId": conv.ID, "content": text})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = e.do(http.MethodGet, "/api/messages/unread-count", talent.Token, nil)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/conversations", talent.Token, nil)
	convs := decode[[]models.Conversation](t, rec)
	require.Len(t, convs, 1)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.Equal(t, "are you free?", convs[0].LastMessage.Content)

	rec = e.do(http.MethodPatch, "/api/messages/mark-read", talent.Token, map[string]any{"conversationId": conv.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/messages/unread-count", talent.Token, nil)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/messages?conversationId="+strconv.FormatInt(conv.ID, 10), talent.Token, nil)
	msgs := decode[[]models.Message](t, rec)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)

	rec = e.do(http.MethodGet, "/api/messages?conversationId="+strconv.FormatInt(conv.ID, 10), stranger.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPost, "/api/messages", client.Token, map[string]any{"conversationId": conv.ID, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerification(t *testing.T) {
	e := newTestEnv(t)
	talent := e.user(2, "Tom", models.RoleTalent)

	rec := e.do(http.MethodGet, "/api/verification/status", talent.Token, nil)
	assert.Equal(t, models.VerificationUnverified, decode[models.Verification](t, rec).Status)

	body := map[string]any{"documentType": "passport", "documentUrl": "https://files.example.com/p.pdf"}
	rec = e.do(http.MethodPost, "/api/verification/submit", talent.Token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.VerificationPending, decode[models.Verification](t, rec).Status)

	rec = e.do(http.MethodPost, "/api/verification/submit", talent.Token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTrainerProfile_DefaultsThenSaves(t *testing.T) {
	e := newTestEnv(t)
	trainer := e.user(4, "Tina", models.RoleTrainer)

	rec := e.do(http.MethodGet, "/api/trainer/profile", trainer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[models.TrainerProfile](t, rec)
	assert.Equal(t, "Tina", empty.Name)
	assert.Empty(t, empty.Expertise)

	rec = e.do(http.MethodPut, "/api/trainer/profile", trainer.Token, map[string]any{
		"headline": "Go mentor", "expertise": []string{"go", "Go", "testing"}, "sessionFormats": []string{"one_on_one"}, "hourlyRate": 80,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[models.TrainerProfile](t, rec)
	assert.Equal(t, models.StringList{"go", "testing"}, saved.Expertise)

	rec = e.do(http.MethodGet, "/api/trainers?skills=testing", trainer.Token, nil)
	assert.Len(t, decode[[]models.TrainerProfile](t, rec), 1)

	rec = e.do(http.MethodGet, "/api/trainers?category=web&search=mentor", trainer.Token, nil)
	assert.Len(t, decode[[]models.TrainerProfile](t, rec), 1)
}

func TestCSRF_CookieSessions(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)

	body := `{"title":"t","description":"d","budget":5,"category":"web","projectType":"hourly"}`
	send := func(csrf string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body))
		req.AddCookie(&http.Cookie{Name: "session", Value: client.Token})
		if csrf != "" {
			req.Header.Set("X-CSRF-Token", csrf)
		}
		rec := httptest.NewRecorder()
		e.srv.ServeHTTP(rec, req)
		return rec
	}

	rec := send("")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid CSRF token", errorBody(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: client.Token})
	sess := httptest.NewRecorder()
	e.srv.ServeHTTP(sess, req)
	token := decode[sessionResponse](t, sess).CSRFToken
	require.NotEmpty(t, token)

	rec = send(token)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestOnboardingAPI(t *testing.T) {
	e := newTestEnv(t)
	fresh := e.user(5, "Nova", "")

	rec := e.do(http.MethodPost, "/api/user/onboarding", fresh.Token, map[string]string{"role": "pirate"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/user/onboarding", fresh.Token, map[string]string{"name": "Nova K", "role": "agency"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[sessionResponse](t, rec)
	assert.Equal(t, "/agency/dashboard", resp.Dashboard)
	assert.Equal(t, "Nova K", resp.User.Name)

	rec = e.do(http.MethodPost, "/api/user/onboarding", fresh.Token, map[string]string{"role": "client"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdmin_ReviewVerificationNotifies(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.user(9, "Ada", models.RoleClient)
	require.NoError(t, e.repo.SetUserAdmin(ctx, admin.ID, true))
	talent := e.user(2, "Tom", models.RoleTalent)

	_, err := e.repo.SubmitVerification(ctx, talent.ID, "passport", "https://x.example/p", "")
	require.NoError(t, err)

	rec := e.do(http.MethodGet, "/api/admin/verifications", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Verification](t, rec), 1)

	rec = e.do(http.MethodPost, "/api/admin/verifications/"+strconv.FormatInt(talent.ID, 10), admin.Token,
		map[string]string{"status": "verified"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/api/admin/verifications/"+strconv.FormatInt(talent.ID, 10), admin.Token,
		map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	n, err := e.repo.UnreadNotificationCount(ctx, talent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPages_RenderEmptyStates(t *testing.T) {
	e := newTestEnv(t)
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)

	rec := e.do(http.MethodGet, "/projects?search=zzz", talent.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects match your filters.")

	rec = e.do(http.MethodGet, "/client/dashboard", client.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have not posted any projects yet.")

	rec = e.do(http.MethodGet, "/messages", talent.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No conversations yet.")

	rec = e.do(http.MethodGet, "/auth", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "telegram-widget.js")
}

func signTelegram(values url.Values, botToken string) string {
	params := make([]string, 0, len(values))
	for k, v := range values {
		params = append(params, k+"="+v[0])
	}
	sort.Strings(params)
	key := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, key[:])
	mac.Write([]byte(strings.Join(params, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestTelegramAuth(t *testing.T) {
	e := newTestEnv(t)
	now := time.Now()

	values := url.Values{
		"id":         {"777"},
		"first_name": {"Lena"},
		"username":   {"lena"},
		"auth_date":  {strconv.FormatInt(now.Unix(), 10)},
	}
	values.Set("hash", signTelegram(values, testBotToken))

	rec := e.do(http.MethodGet, "/auth/telegram?"+values.Encode(), "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "session", rec.Result().Cookies()[0].Name)

	stale := url.Values{
		"id":        {"777"},
		"auth_date": {strconv.FormatInt(now.Add(-48*time.Hour).Unix(), 10)},
	}
	stale.Set("hash", signTelegram(stale, testBotToken))
	assert.False(t, e.h.validateTelegramAuth(stale, now))

	values.Set("first_name", "Mallory")
	assert.False(t, e.h.validateTelegramAuth(values, now))
}

func TestAdmin_SetTier(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.user(9, "Ada", models.RoleClient)
	require.NoError(t, e.repo.SetUserAdmin(ctx, admin.ID, true))
	client := e.user(1, "Carol", models.RoleClient)
	talent := e.user(2, "Tom", models.RoleTalent)

	tierPath := func(id int64) string { return "/api/admin/users/" + strconv.FormatInt(id, 10) + "/tier" }

	rec := e.do(http.MethodPost, tierPath(client.ID), admin.Token, map[string]string{"tier": "gold"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Role "client" has no tier`, errorBody(t, rec))

	rec = e.do(http.MethodPost, tierPath(talent.ID), admin.Token, map[string]string{"tier": "gold"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPut, "/api/talent/profile", talent.Token, map[string]any{
		"title": "Backend dev", "category": "web", "skills": []string{"go"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, tierPath(talent.ID), admin.Token, map[string]string{"tier": "gold"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tier, err := e.repo.ApplicantTier(ctx, talent.ID, models.RoleTalent)
	require.NoError(t, err)
	assert.Equal(t, models.TierGold, tier)
}

func TestNotify_EscapesTelegramHTML(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	sent := make(chan url.Values, 1)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		sent <- r.PostForm
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer api.Close()

	log, _ := test.NewNullLogger()
	h, err := New(e.repo, Options{
		BotToken:   testBotToken,
		CSRFSecret: "secret",
		PublicURL:  "http://localhost:3000",
		Telegram:   telegram.NewClient(testBotToken, log).WithAPIURL(api.URL),
		Log:        log,
	})
	require.NoError(t, err)
	e.h, e.srv = h, h.Router()

	client := e.user(1, "Carol", models.RoleClient)
	require.NoError(t, e.repo.SetTgChatID(ctx, client.ID, 555))
	talent := e.user(2, "Tom <Dev> & Co", models.RoleTalent)
	p := e.project(client, "Fish & <Chips>", nil)

	rec := e.do(http.MethodPost, "/api/applications", talent.Token,
		map[string]any{"projectId": p.ID, "coverLetter": "hi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	select {
	case form := <-sent:
		assert.Equal(t, "555", form.Get("chat_id"))
		text := form.Get("text")
		assert.Contains(t, text, "<b>Tom &lt;Dev&gt; &amp; Co</b>")
		assert.Contains(t, text, "Fish &amp; &lt;Chips&gt;")
	case <-time.After(5 * time.Second):
		t.Fatal("telegram message not sent")
	}
}
