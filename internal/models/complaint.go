package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a complaint. Status changes only through
// lifecycle transitions, never through direct field writes.
type Status string

const (
	StatusSubmitted           Status = "submitted"
	StatusAssigned            Status = "assigned"
	StatusAccepted            Status = "accepted"
	StatusInProgress          Status = "in_progress"
	StatusPendingVerification Status = "pending_verification"
	StatusResolved            Status = "resolved"
	StatusRejected            Status = "rejected"
	StatusEscalated           Status = "escalated"
	StatusReopened            Status = "reopened"
)

// Terminal reports whether the status is an end state. Terminal complaints
// are retained for audit and public statistics, never deleted.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Action identifies a timeline entry kind.
type Action string

const (
	ActionSubmitted  Action = "submitted"
	ActionAssigned   Action = "assigned"
	ActionAccepted   Action = "accepted"
	ActionForwarded  Action = "forwarded"
	ActionInProgress Action = "in_progress"
	ActionResolved   Action = "resolved"
	ActionRejected   Action = "rejected"
	ActionEscalated  Action = "escalated"
	ActionReopened   Action = "reopened"
	ActionVerified   Action = "verified"
	ActionClosed     Action = "closed"
)

// Priority of a complaint. Set at creation and never auto-changed afterwards.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PhotoType tags an evidence photo by its purpose.
type PhotoType string

const (
	PhotoComplaint  PhotoType = "complaint"
	PhotoResolution PhotoType = "resolution"
)

// Location is where the reported problem is. Division routes the complaint
// to the responsible office.
type Location struct {
	Address   string  `json:"address"`
	Division  string  `json:"division"`
	Zone      string  `json:"zone"`
	Ward      string  `json:"ward"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SLAInfo carries the service-level deadline for a complaint. Deadline is
// computed once at creation and is immutable; Overdue flips false->true at
// most once, on the escalation path.
type SLAInfo struct {
	ExpectedDays int        `json:"expectedDays"`
	Deadline     time.Time  `json:"deadline"`
	Overdue      bool       `json:"overdue"`
	BreachedAt   *time.Time `json:"breachedAt,omitempty"`
}

// Verification records the citizen's confirmation or rejection of a claimed
// resolution. Written exactly once.
type Verification struct {
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	Rating     int        `json:"rating,omitempty"`
	Feedback   string     `json:"feedback,omitempty"`
}

// Complaint is the aggregate root of the lifecycle engine.
//
// The Version column is the optimistic concurrency guard: every committed
// transition increments it, and the storage layer refuses an update whose
// guard no longer matches the row. That single conditional update is what
// keeps the responsibility lock exclusive under concurrent requests.
type Complaint struct {
	// ID is the opaque storage key (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// ComplaintID is the human-facing identifier, e.g. "REX20260001".
	ComplaintID string `gorm:"uniqueIndex;not null" json:"complaintId"`

	Title       string   `gorm:"type:text;not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Category    string   `gorm:"index;not null" json:"category"`
	Location    Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	// CitizenID references the owner who filed the complaint. Immutable.
	CitizenID string `gorm:"index;not null" json:"citizenId"`
	// CurrentAuthorityID references the authority currently responsible.
	// Mutated only by committed transitions.
	CurrentAuthorityID *string `gorm:"index" json:"currentAuthorityId,omitempty"`
	// Locked is true iff a handler is actively accountable.
	// Invariant: Locked implies CurrentAuthorityID != nil.
	Locked bool `json:"locked"`

	Status   Status   `gorm:"index;not null" json:"status"`
	Priority Priority `gorm:"not null" json:"priority"`

	SLA          SLAInfo      `gorm:"embedded;embeddedPrefix:sla_" json:"sla"`
	Verification Verification `gorm:"embedded;embeddedPrefix:verification_" json:"verification"`

	Timeline       []TimelineEvent `gorm:"foreignKey:ComplaintID;references:ID" json:"timeline"`
	EvidencePhotos []EvidencePhoto `gorm:"foreignKey:ComplaintID;references:ID" json:"evidencePhotos"`

	Version   uint      `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate generates the storage key if the caller did not set one.
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CurrentHandlerIs reports whether userID is the complaint's current handler.
func (c *Complaint) CurrentHandlerIs(userID string) bool {
	return c.CurrentAuthorityID != nil && *c.CurrentAuthorityID == userID
}

// TimelineEvent is one immutable entry of a complaint's audit trail.
// Actor fields hold user references resolved at read time; system-originated
// events such as escalation carry no actor at all.
type TimelineEvent struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	ComplaintID string `gorm:"index;not null" json:"-"`

	Action Action `gorm:"not null" json:"action"`
	// PerformedBy is nil for system-originated events.
	PerformedBy *string `json:"performedBy,omitempty"`
	// FromAuthority / ToAuthority are populated for transfer-type events.
	FromAuthority *string `json:"fromAuthority,omitempty"`
	ToAuthority   *string `json:"toAuthority,omitempty"`

	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	Details        string    `gorm:"type:text" json:"details"`
	CitizenVisible bool      `json:"citizenVisible"`
}

// EvidencePhoto is an opaque reference to an uploaded photo. Media storage
// itself lives outside this service; only the URL and owner travel here.
type EvidencePhoto struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	ComplaintID string `gorm:"index;not null" json:"-"`

	URL        string    `gorm:"type:text;not null" json:"url"`
	PublicID   string    `json:"publicId"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
	PhotoType  PhotoType `gorm:"not null" json:"photoType"`
}
