package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

	"github.com/gin-gonic/gin"
)

type createComplaintInput struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description" binding:"required"`
	Category    string                  `json:"category" binding:"required"`
	Location    models.Location         `json:"location"`
	Priority    string                  `json:"priority"`
	Photos      []lifecycle.PhotoInput  `json:"photos"`
}

// CreateComplaint files a new complaint for the authenticated citizen.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var in createComplaintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	complaint, err := h.Lifecycle.Create(lifecycle.CreateInput{
		CitizenID:   currentUser(c).ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		Priority:    models.Priority(in.Priority),
		Photos:      in.Photos,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "complaint": complaint})
}

// GetComplaint returns one complaint with its timeline and SLA summary.
func (h *Handler) GetComplaint(c *gin.Context) {
	complaint, err := h.Storage.GetComplaintByID(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	remaining := time.Until(complaint.SLA.Deadline)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
		"slaInfo": gin.H{
			"deadline":      complaint.SLA.Deadline,
			"daysRemaining": int(math.Floor(remaining.Hours() / 24)),
			"isOverdue":     complaint.SLA.Overdue,
		},
	})
}

// GetMyComplaints lists the authenticated citizen's complaints.
func (h *Handler) GetMyComplaints(c *gin.Context) {
	complaints, err := h.Storage.GetComplaintsForCitizen(currentUser(c).ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": complaints})
}

type verifyInput struct {
	Accepted bool   `json:"accepted"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
	Reason   string `json:"reason"`
}

// VerifyResolution records the owner's verdict on a claimed resolution.
func (h *Handler) VerifyResolution(c *gin.Context) {
	var in verifyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	complaint, err := h.Lifecycle.Verify(lifecycle.VerifyInput{
		ComplaintID: c.Param("id"),
		OwnerID:     currentUser(c).ID,
		Accepted:    in.Accepted,
		Rating:      in.Rating,
		Feedback:    in.Feedback,
		Reason:      in.Reason,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}
