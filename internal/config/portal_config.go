package config

import (
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
)

const (
	// Transition input minimums
	MinForwardReasonLength = 20
	MinResolutionPhotos    = 1
	MinReopenReasonLength  = 1

	// Rating bounds for citizen verification
	MinRating = 1
	MaxRating = 5

	// Escalation
	EscalationInterval = 1 * time.Hour

	// Complaint input limits
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

// SeedCategories is the default category/SLA table loaded into an empty
// database. Essential utility categories default new complaints to high
// priority.
var SeedCategories = []models.Category{
	{Name: "Road Maintenance", SLAInDays: 7, DefaultDepartment: "Public Works", IsActive: true},
	{Name: "Street Lights", SLAInDays: 3, DefaultDepartment: "Electrical", IsActive: true},
	{Name: "Water Supply", SLAInDays: 2, DefaultDepartment: "Water Board", Essential: true, IsActive: true},
	{Name: "Garbage Collection", SLAInDays: 2, DefaultDepartment: "Sanitation", IsActive: true},
	{Name: "Drainage", SLAInDays: 5, DefaultDepartment: "Public Works", IsActive: true},
	{Name: "Electricity", SLAInDays: 2, DefaultDepartment: "Electrical", Essential: true, IsActive: true},
	{Name: "Other", SLAInDays: 10, DefaultDepartment: "General Administration", IsActive: true},
}
