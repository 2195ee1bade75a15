package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Role of a portal account.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
)

// ApprovalStatus is the admin gate for authority accounts. Citizens and
// admins are approved automatically.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// AuthorityInfo describes an authority account's jurisdiction. Categories
// holds the complaint categories the officer may accept.
type AuthorityInfo struct {
	Designation string         `json:"designation"`
	Department  string         `json:"department"`
	Division    string         `json:"division"`
	Zone        string         `json:"zone"`
	Ward        string         `json:"ward"`
	Level       string         `json:"level"`
	Categories  pq.StringArray `gorm:"type:text[]" json:"categories"`
}

// HandlerStats are the authority performance counters maintained by the
// verify transition. They are written in the same transaction as the
// complaint's own status change.
type HandlerStats struct {
	TotalHandled        int `json:"totalHandled"`
	ResolvedOnTime      int `json:"resolvedOnTime"`
	FalseClosuresCaught int `json:"falseClosuresCaught"`
	TotalRating         int `json:"totalRating"`
	RatingCount         int `json:"ratingCount"`
}

// User is a portal account: citizen, authority officer, or admin.
type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Phone    string `json:"phone"`

	Role           Role           `gorm:"index;not null" json:"role"`
	ApprovalStatus ApprovalStatus `gorm:"not null;default:approved" json:"approvalStatus"`

	Authority AuthorityInfo `gorm:"embedded;embeddedPrefix:authority_" json:"authorityInfo"`
	Stats     HandlerStats  `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`

	// TelegramChatID links the account to a Telegram chat for notification
	// delivery. Empty when the user never linked one.
	TelegramChatID string `gorm:"index" json:"-"`

	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate generates a UUID for the account if the ID is not set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// ActiveAuthority reports whether the account may act as a handler.
func (u *User) ActiveAuthority() bool {
	return u.Role == RoleAuthority && u.ApprovalStatus == ApprovalApproved && u.IsActive
}

// CoversCategory reports whether the complaint category is within the
// officer's jurisdiction.
func (u *User) CoversCategory(category string) bool {
	for _, c := range u.Authority.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// AverageRating is the officer's mean citizen rating, 0 when unrated.
func (u *User) AverageRating() float64 {
	if u.Stats.RatingCount == 0 {
		return 0
	}
	return float64(u.Stats.TotalRating) / float64(u.Stats.RatingCount)
}
