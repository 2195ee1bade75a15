package handler

import (
	"net/http"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAssignedComplaints lists the officer's work queue.
func (h *Handler) GetAssignedComplaints(c *gin.Context) {
	complaints, err := h.Storage.GetAssignedComplaints(currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaints": complaints})
}

type acceptInput struct {
	Note string `json:"note"`
}

// AcceptComplaint takes responsibility for an unlocked complaint.
func (h *Handler) AcceptComplaint(c *gin.Context) {
	var in acceptInput
	c.ShouldBindJSON(&in) // note is optional, an empty body is fine

	complaint, err := h.Lifecycle.Accept(lifecycle.AcceptInput{
		ComplaintID: c.Param("id"),
		ActorID:     currentUser(c).ID,
		Note:        in.Note,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}

// MarkInProgress records that work has started.
func (h *Handler) MarkInProgress(c *gin.Context) {
	complaint, err := h.Lifecycle.MarkInProgress(lifecycle.MarkInProgressInput{
		ComplaintID: c.Param("id"),
		ActorID:     currentUser(c).ID,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}

type forwardInput struct {
	ToAuthorityID string `json:"toAuthorityId" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
}

// ForwardComplaint transfers responsibility to another authority.
func (h *Handler) ForwardComplaint(c *gin.Context) {
	var in forwardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	complaint, err := h.Lifecycle.Forward(lifecycle.ForwardInput{
		ComplaintID:       c.Param("id"),
		ActorID:           currentUser(c).ID,
		TargetAuthorityID: in.ToAuthorityID,
		Reason:            in.Reason,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}

type resolveInput struct {
	Note   string                 `json:"note"`
	Photos []lifecycle.PhotoInput `json:"photos"`
}

// ResolveComplaint claims the problem is fixed, with photo evidence.
func (h *Handler) ResolveComplaint(c *gin.Context) {
	var in resolveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	complaint, err := h.Lifecycle.Resolve(lifecycle.ResolveInput{
		ComplaintID: c.Param("id"),
		ActorID:     currentUser(c).ID,
		Note:        in.Note,
		Photos:      in.Photos,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}

// GetOfficerScorecard exposes an officer's performance counters.
func (h *Handler) GetOfficerScorecard(c *gin.Context) {
	officer, err := h.Storage.GetUserByID(c.Param("id"))
	if err != nil || officer.Role != models.RoleAuthority {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Officer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "scorecard": gin.H{
		"name":          officer.Name,
		"designation":   officer.Authority.Designation,
		"department":    officer.Authority.Department,
		"division":      officer.Authority.Division,
		"zone":          officer.Authority.Zone,
		"ward":          officer.Authority.Ward,
		"stats":         officer.Stats,
		"averageRating": officer.AverageRating(),
	}})
}
