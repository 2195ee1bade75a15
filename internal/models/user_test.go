package models_test

import (
	"testing"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestActiveAuthority verifies the three conditions an account must meet to
// act as a handler.
func TestActiveAuthority(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want bool
	}{
		{
			name: "approved active authority",
			user: models.User{Role: models.RoleAuthority, ApprovalStatus: models.ApprovalApproved, IsActive: true},
			want: true,
		},
		{
			name: "pending approval",
			user: models.User{Role: models.RoleAuthority, ApprovalStatus: models.ApprovalPending, IsActive: true},
			want: false,
		},
		{
			name: "deactivated account",
			user: models.User{Role: models.RoleAuthority, ApprovalStatus: models.ApprovalApproved, IsActive: false},
			want: false,
		},
		{
			name: "citizen",
			user: models.User{Role: models.RoleCitizen, ApprovalStatus: models.ApprovalApproved, IsActive: true},
			want: false,
		},
		{
			name: "admin",
			user: models.User{Role: models.RoleAdmin, ApprovalStatus: models.ApprovalApproved, IsActive: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.ActiveAuthority())
		})
	}
}

// TestCoversCategory verifies jurisdiction matching over the category array.
func TestCoversCategory(t *testing.T) {
	officer := models.User{
		Authority: models.AuthorityInfo{
			Categories: pq.StringArray{"Street Lights", "Electricity"},
		},
	}

	assert.True(t, officer.CoversCategory("Street Lights"))
	assert.False(t, officer.CoversCategory("Water Supply"))

	var none models.User
	assert.False(t, none.CoversCategory("Street Lights"), "nil category array covers nothing")
}

// TestAverageRating verifies the mean rating and the unrated zero case.
func TestAverageRating(t *testing.T) {
	unrated := models.User{}
	assert.Zero(t, unrated.AverageRating())

	rated := models.User{Stats: models.HandlerStats{TotalRating: 14, RatingCount: 4}}
	assert.InDelta(t, 3.5, rated.AverageRating(), 0.0001)
}
