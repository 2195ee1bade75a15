package models

// Category is the read-only SLA lookup row for a complaint category.
// Complaint creation fails when the submitted category has no row here.
type Category struct {
	Name              string `gorm:"primaryKey" json:"name"`
	SLAInDays         int    `gorm:"not null" json:"slaInDays"`
	DefaultDepartment string `gorm:"not null" json:"defaultDepartment"`
	// Essential marks utility categories (water, electricity) whose
	// complaints default to high priority at creation.
	Essential bool `json:"essential"`
	IsActive  bool `gorm:"not null;default:true" json:"isActive"`
}
