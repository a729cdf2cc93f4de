// Package client talks to the marketplace REST API with a bearer token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"hireloop/internal/filter"
	"hireloop/internal/models"
)

// FallbackMessage is shown when a failure carries no server message.
const FallbackMessage = "An unexpected error occurred"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status=%d", e.Status)
	}
	return e.Message
}

// Message is the text to show a user for err: the server's error string when
// there is one, otherwise FallbackMessage.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return FallbackMessage
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Session(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/session", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateToken mints a fresh API token for the current session.
func (c *Client) CreateToken(ctx context.Context) (*Token, error) {
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/api/tokens", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Projects lists projects. status "" means open; "all" lifts the filter.
func (c *Client) Projects(ctx context.Context, status string, mine bool, q filter.Query) ([]models.Project, error) {
	v := q.Values()
	if status != "" {
		v.Set("status", status)
	}
	if mine {
		v.Set("mine", "1")
	}
	out := []models.Project{}
	err := c.doJSON(ctx, http.MethodGet, "/api/projects", v, nil, &out)
	return out, err
}

func (c *Client) Project(ctx context.Context, id int64) (*models.Project, error) {
	var out models.Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type NewProject struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	Deadline    string   `json:"deadline,omitempty"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	ProjectType string   `json:"projectType"`
	MinimumTier string   `json:"minimumTier,omitempty"`
}

func (c *Client) CreateProject(ctx context.Context, in NewProject) (*models.Project, error) {
	var out models.Project
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetProjectStatus(ctx context.Context, id int64, status string) (*models.Project, error) {
	var out models.Project
	p := "/api/projects/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.doJSON(ctx, http.MethodPatch, p, nil, map[string]string{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Applications lists a project's applications when projectID > 0, otherwise
// the caller's own.
func (c *Client) Applications(ctx context.Context, projectID int64) ([]models.Application, error) {
	var v url.Values
	if projectID > 0 {
		v = url.Values{"projectId": {strconv.FormatInt(projectID, 10)}}
	}
	out := []models.Application{}
	err := c.doJSON(ctx, http.MethodGet, "/api/applications", v, nil, &out)
	return out, err
}

func (c *Client) Apply(ctx context.Context, projectID int64, coverLetter string, rate float64) (*models.Application, error) {
	in := map[string]any{"projectId": projectID, "coverLetter": coverLetter, "proposedRate": rate}
	var out models.Application
	if err := c.doJSON(ctx, http.MethodPost, "/api/applications", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id int64, status string, picked *bool) (*models.Application, error) {
	in := map[string]any{}
	if status != "" {
		in["status"] = status
	}
	if picked != nil {
		in["isPicked"] = *picked
	}
	var out models.Application
	if err := c.doJSON(ctx, http.MethodPatch, "/api/applications/"+strconv.FormatInt(id, 10), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Talents(ctx context.Context, q filter.Query) ([]models.TalentProfile, error) {
	out := []models.TalentProfile{}
	err := c.doJSON(ctx, http.MethodGet, "/api/talents", q.Values(), nil, &out)
	return out, err
}

func (c *Client) Agencies(ctx context.Context, q filter.Query) ([]models.AgencyProfile, error) {
	out := []models.AgencyProfile{}
	err := c.doJSON(ctx, http.MethodGet, "/api/agencies", q.Values(), nil, &out)
	return out, err
}

func (c *Client) Trainers(ctx context.Context, q filter.Query) ([]models.TrainerProfile, error) {
	out := []models.TrainerProfile{}
	err := c.doJSON(ctx, http.MethodGet, "/api/trainers", q.Values(), nil, &out)
	return out, err
}

func (c *Client) TrainerProfile(ctx context.Context) (*models.TrainerProfile, error) {
	var out models.TrainerProfile
	if err := c.doJSON(ctx, http.MethodGet, "/api/trainer/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type TrainerProfileInput struct {
	Headline       string   `json:"headline"`
	Bio            string   `json:"bio"`
	Expertise      []string `json:"expertise"`
	SessionFormats []string `json:"sessionFormats"`
	HourlyRate     float64  `json:"hourlyRate"`
}

func (c *Client) SaveTrainerProfile(ctx context.Context, in TrainerProfileInput) (*models.TrainerProfile, error) {
	var out models.TrainerProfile
	if err := c.doJSON(ctx, http.MethodPut, "/api/trainer/profile", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	out := []models.Conversation{}
	err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, nil, &out)
	return out, err
}

func (c *Client) StartConversation(ctx context.Context, participantID int64) (*models.Conversation, error) {
	var out models.Conversation
	in := map[string]int64{"participantId": participantID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/conversations", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Messages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	v := url.Values{"conversationId": {strconv.FormatInt(conversationID, 10)}}
	out := []models.Message{}
	err := c.doJSON(ctx, http.MethodGet, "/api/messages", v, nil, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, conversationID int64, content string) (*models.Message, error) {
	in := map[string]any{"conversationId": conversationID, "content": content}
	var out models.Message
	if err := c.doJSON(ctx, http.MethodPost, "/api/messages", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkRead(ctx context.Context, conversationID int64) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	in := map[string]int64{"conversationId": conversationID}
	err := c.doJSON(ctx, http.MethodPatch, "/api/messages/mark-read", nil, in, &out)
	return out.Updated, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/messages/unread-count", nil, nil, &out)
	return out.Count, err
}

func (c *Client) VerificationStatus(ctx context.Context) (*models.Verification, error) {
	var out models.Verification
	if err := c.doJSON(ctx, http.MethodGet, "/api/verification/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitVerification(ctx context.Context, docType, docURL, note string) (*models.Verification, error) {
	in := map[string]string{"documentType": docType, "documentUrl": docURL, "note": note}
	var out models.Verification
	if err := c.doJSON(ctx, http.MethodPost, "/api/verification/submit", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON sends a JSON request and decodes a JSON response (if out is non-nil).
func (c *Client) doJSON(ctx context.Context, method, p string, query url.Values, in any, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path.Join(u.Path, p)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(b, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
