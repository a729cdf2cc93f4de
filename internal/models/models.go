package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleClient  Role = "client"
	RoleTalent  Role = "talent"
	RoleAgency  Role = "agency"
	RoleTrainer Role = "trainer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleTalent, RoleAgency, RoleTrainer:
		return true
	}
	return false
}

type Tier string

const (
	TierNone   Tier = ""
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

func (t Tier) Rank() int {
	switch t {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	}
	return 0
}

// Meets reports whether t is at least min. Anything meets an empty minimum.
func (t Tier) Meets(min Tier) bool {
	return t.Rank() >= min.Rank()
}

const (
	ProjectOpen       = "open"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectClosed     = "closed"

	ProjectFixed  = "fixed"
	ProjectHourly = "hourly"
)

const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
	VerificationRejected   = "rejected"
)

// StringList is a string slice stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

type User struct {
	ID         int64     `db:"id" json:"id"`
	TgID       int64     `db:"tg_id" json:"tgId"`
	TgUsername string    `db:"tg_username" json:"tgUsername"`
	Name       string    `db:"name" json:"name"`
	Role       Role      `db:"role" json:"role"`
	TgChatID   int64     `db:"tg_chat_id" json:"-"`
	Onboarded  bool      `db:"onboarded" json:"onboarded"`
	IsAdmin    bool      `db:"is_admin" json:"isAdmin"`
	IsBanned   bool      `db:"is_banned" json:"isBanned"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Role: u.Role, TgUsername: u.TgUsername}
}

type UserSummary struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Role       Role   `db:"role" json:"role"`
	TgUsername string `db:"tg_username" json:"tgUsername"`
}

type Project struct {
	ID               int64        `db:"id" json:"id"`
	ClientID         int64        `db:"client_id" json:"clientId"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description"`
	Budget           float64      `db:"budget" json:"budget"`
	Deadline         string       `db:"deadline" json:"deadline"`
	Category         string       `db:"category" json:"category"`
	Skills           StringList   `db:"skills" json:"skills"`
	ProjectType      string       `db:"project_type" json:"projectType"`
	Status           string       `db:"status" json:"status"`
	MinimumTier      Tier         `db:"minimum_tier" json:"minimumTier"`
	ApplicationCount int          `db:"application_count" json:"applicationCount"`
	Client           *UserSummary `db:"-" json:"client,omitempty"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`
}

type ProjectRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type Application struct {
	ID           int64        `db:"id" json:"id"`
	ProjectID    int64        `db:"project_id" json:"projectId"`
	ApplicantID  int64        `db:"applicant_id" json:"applicantId"`
	CoverLetter  string       `db:"cover_letter" json:"coverLetter"`
	ProposedRate float64      `db:"proposed_rate" json:"proposedRate"`
	Status       string       `db:"status" json:"status"`
	IsPicked     bool         `db:"is_picked" json:"isPicked"`
	Applicant    *UserSummary `db:"-" json:"applicant,omitempty"`
	Project      *ProjectRef  `db:"-" json:"project,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

type TalentProfile struct {
	UserID          int64      `db:"user_id" json:"userId"`
	Name            string     `db:"name" json:"name"`
	Title           string     `db:"title" json:"title"`
	Bio             string     `db:"bio" json:"bio"`
	Category        string     `db:"category" json:"category"`
	Skills          StringList `db:"skills" json:"skills"`
	HourlyRate      float64    `db:"hourly_rate" json:"hourlyRate"`
	ExperienceYears int        `db:"experience_years" json:"experienceYears"`
	Tier            Tier       `db:"tier" json:"tier"`
	Availability    string     `db:"availability" json:"availability"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

type AgencyProfile struct {
	UserID      int64      `db:"user_id" json:"userId"`
	Name        string     `db:"name" json:"name"`
	AgencyName  string     `db:"agency_name" json:"agencyName"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	TeamSize    int        `db:"team_size" json:"teamSize"`
	Skills      StringList `db:"skills" json:"skills"`
	HourlyRate  float64    `db:"hourly_rate" json:"hourlyRate"`
	Tier        Tier       `db:"tier" json:"tier"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type TrainerProfile struct {
	UserID         int64      `db:"user_id" json:"userId"`
	Name           string     `db:"name" json:"name"`
	Headline       string     `db:"headline" json:"headline"`
	Bio            string     `db:"bio" json:"bio"`
	Expertise      StringList `db:"expertise" json:"expertise"`
	SessionFormats StringList `db:"session_formats" json:"sessionFormats"`
	HourlyRate     float64    `db:"hourly_rate" json:"hourlyRate"`
	Tier           Tier       `db:"tier" json:"tier"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

type Conversation struct {
	ID             int64          `db:"id" json:"id"`
	ProjectID      *int64         `db:"project_id" json:"projectId,omitempty"`
	ParticipantIDs []int64        `db:"-" json:"participantIds"`
	Participants   []*UserSummary `db:"-" json:"participants"`
	LastMessage    *Message       `db:"-" json:"lastMessage,omitempty"`
	UnreadCount    int            `db:"unread_count" json:"unreadCount"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversationId"`
	SenderID       int64     `db:"sender_id" json:"senderId"`
	Content        string    `db:"content" json:"content"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

type Verification struct {
	UserID       int64      `db:"user_id" json:"userId"`
	Status       string     `db:"status" json:"status"`
	DocumentType string     `db:"document_type" json:"documentType"`
	DocumentURL  string     `db:"document_url" json:"documentUrl"`
	Note         string     `db:"note" json:"note"`
	ReviewNote   string     `db:"review_note" json:"reviewNote"`
	SubmittedAt  *time.Time `db:"submitted_at" json:"submittedAt,omitempty"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewedAt,omitempty"`
}

type AdminStats struct {
	UserCount           int `json:"userCount"`
	ProjectTotal        int `json:"projectTotal"`
	ProjectOpen         int `json:"projectOpen"`
	ProjectInProgress   int `json:"projectInProgress"`
	ApplicationCount    int `json:"applicationCount"`
	MessageCount        int `json:"messageCount"`
	PendingVerification int `json:"pendingVerification"`
}

// Payload is a notification's JSON object column. Numbers decode as float64.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Payload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("payload: unsupported type %T", src)
	}
	out := Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}
	*p = out
	return nil
}

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Type      string    `db:"type" json:"type"`
	Payload   Payload   `db:"payload" json:"payload"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
