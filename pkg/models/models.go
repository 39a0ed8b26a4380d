package models

import (
	"slices"
	"time"
)

/* =============================== Enums ================================== */

// Role defines the type of user in the system.
type Role string

const (
	RoleClient    Role = "Client"
	RoleLawyer    Role = "Lawyer"
	RoleAdmin     Role = "Admin"
	RoleSecretary Role = "Secretary"
)

// IsStaff reports whether the role sees every case in the firm.
func (r Role) IsStaff() bool {
	return r == RoleLawyer || r == RoleAdmin || r == RoleSecretary
}

// UserStatus defines account lifecycle states.
type UserStatus string

const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
	UserInvited  UserStatus = "Invited"
)

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CaseActive  CaseStatus = "Active"
	CaseClosed  CaseStatus = "Closed"
	CasePending CaseStatus = "Pending"
)

// DocumentType classifies an uploaded document.
type DocumentType string

const (
	DocPDF            DocumentType = "PDF"
	DocWord           DocumentType = "Word"
	DocImage          DocumentType = "Image"
	DocOther          DocumentType = "Other"
	DocCorrespondence DocumentType = "Correspondence"
)

// DocumentStatus defines review states for a document version.
type DocumentStatus string

const (
	DocDraft    DocumentStatus = "Draft"
	DocFinal    DocumentStatus = "Final"
	DocArchived DocumentStatus = "Archived"
)

// LogCategory groups audit and system log entries.
type LogCategory string

const (
	LogUserAction LogCategory = "User Action"
	LogSecurity   LogCategory = "Security"
	LogSystem     LogCategory = "System"
)

// Theme is the UI colour scheme stored in settings.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

/* =============================== Entities =============================== */

// User is a firm member or client account.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	PasswordHash string     `json:"-"`
	AvatarURL    string     `json:"avatar_url"`
}

// Case is a legal matter with its documents, dates, notes and audit trail.
type Case struct {
	ID             string         `json:"id"`
	CaseNumber     string         `json:"case_number"`
	Title          string         `json:"title"`
	Client         User           `json:"client"`
	AssignedLawyer User           `json:"assigned_lawyer"`
	Status         CaseStatus     `json:"status"`
	LegalHold      bool           `json:"legal_hold"`
	CaseType       string         `json:"case_type"`
	Documents      []DocumentFile `json:"documents"`
	AuditLogs      []AuditLog     `json:"audit_logs"`
	KeyDates       []KeyDate      `json:"key_dates"`
	InternalNotes  []InternalNote `json:"internal_notes"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Clone returns a deep copy so callers never alias manager-owned slices.
func (c Case) Clone() Case {
	out := c
	out.Documents = make([]DocumentFile, len(c.Documents))
	for i, d := range c.Documents {
		d.Tags = slices.Clone(d.Tags)
		out.Documents[i] = d
	}
	out.AuditLogs = slices.Clone(c.AuditLogs)
	out.KeyDates = slices.Clone(c.KeyDates)
	out.InternalNotes = slices.Clone(c.InternalNotes)
	if out.AuditLogs == nil {
		out.AuditLogs = []AuditLog{}
	}
	if out.KeyDates == nil {
		out.KeyDates = []KeyDate{}
	}
	if out.InternalNotes == nil {
		out.InternalNotes = []InternalNote{}
	}
	return out
}

// DocumentFile is one uploaded version of a named document within a case.
type DocumentFile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       DocumentType   `json:"type"`
	Size       string         `json:"size"`
	UploadedBy string         `json:"uploaded_by"`
	UploadDate string         `json:"upload_date"` // YYYY-MM-DD
	Version    int            `json:"version"`
	Content    string         `json:"content"`
	Status     DocumentStatus `json:"status"`
	Tags       []string       `json:"tags,omitempty"`
	StorageKey string         `json:"-"`
}

// KeyDate is a deadline or hearing attached to a case.
type KeyDate struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// InternalNote is a confidential staff note. Never edited after creation.
type InternalNote struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditLog is one entry of a case audit trail or the firm-wide system log.
type AuditLog struct {
	ID        string      `json:"id"`
	User      string      `json:"user"`
	Action    string      `json:"action"`
	Details   string      `json:"details"`
	Timestamp time.Time   `json:"timestamp"`
	Category  LogCategory `json:"category"`
}

// Notification tells firm users about activity on a case.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	CaseID    string    `json:"case_id"`
}

// Settings is the single firm-wide configuration record.
type Settings struct {
	Theme           Theme  `json:"theme"`
	FirmName        string `json:"firmName"`
	FirmAddress     string `json:"firmAddress"`
	RetentionPeriod string `json:"retentionPeriod"`
	Versioning      bool   `json:"versioning"`
	IPWhitelist     string `json:"ipWhitelist"`
}

// DefaultSettings returns the settings a fresh firm starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:           ThemeLight,
		FirmName:        "Ace Legal Partners",
		FirmAddress:     "123 Justice Way, Freetown, Sierra Leone",
		RetentionPeriod: "7",
		Versioning:      true,
		IPWhitelist:     "192.168.1.1\n10.0.0.5",
	}
}

/* ================================ Patches =============================== */

// UserPatch carries the user fields an administrator may change.
type UserPatch struct {
	Role   *Role       `json:"role,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool { return p.Role == nil && p.Status == nil }

// SettingsPatch carries a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	Theme           *Theme  `json:"theme,omitempty"`
	FirmName        *string `json:"firmName,omitempty"`
	FirmAddress     *string `json:"firmAddress,omitempty"`
	RetentionPeriod *string `json:"retentionPeriod,omitempty"`
	Versioning      *bool   `json:"versioning,omitempty"`
	IPWhitelist     *string `json:"ipWhitelist,omitempty"`
}

/* ============================ Persisted rows ============================ */

// AuditScope tells whether a persisted record belongs to a case or the system log.
type AuditScope string

const (
	ScopeCase   AuditScope = "case"
	ScopeSystem AuditScope = "system"
)

// AuditRecord mirrors an AuditLog entry into the database.
type AuditRecord struct {
	ID        string      `gorm:"type:varchar(64);primaryKey"`
	Scope     AuditScope  `gorm:"type:varchar(10);not null;index"`
	CaseID    string      `gorm:"type:varchar(64);index"`
	Actor     string      `gorm:"not null"`
	Action    string      `gorm:"type:varchar(50);not null"`
	Details   string      `gorm:"type:text"`
	Category  LogCategory `gorm:"type:varchar(20)"`
	CreatedAt time.Time   `gorm:"not null;index"`
}
