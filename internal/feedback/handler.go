package feedback

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/activitylog"
	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

type Handler struct {
	db     *gorm.DB
	logger *activitylog.Logger
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		db:     db,
		logger: activitylog.NewLogger(db),
	}
}

type CreateFeedbackRequest struct {
	CustomerName string `json:"customer_name"`
	FeedbackType string `json:"feedback_type" binding:"required,oneof=requirement complaint recommendation"`
	Description  string `json:"description" binding:"required,min=1,max=500"`
}

type UpdateFeedbackRequest struct {
	CustomerName *string `json:"customer_name"`
	FeedbackType *string `json:"feedback_type" binding:"omitempty,oneof=requirement complaint recommendation"`
	Description  *string `json:"description" binding:"omitempty,min=1,max=500"`
	Status       *string `json:"status" binding:"omitempty,oneof=open in_progress resolved"`
}

// Create records a new customer feedback entry
func (h *Handler) Create(c *gin.Context) {
	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))

	entry := database.CustomerFeedback{
		CustomerName: strings.TrimSpace(req.CustomerName),
		FeedbackType: req.FeedbackType,
		Description:  strings.TrimSpace(req.Description),
		Status:       "open",
		RecordedBy:   userID,
	}

	if err := h.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback"})
		return
	}

	h.logger.LogCreate(c, "feedback", entry.ID, entry)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Feedback recorded successfully",
		"feedback_id": entry.ID.String(),
	})
}

// List returns feedback entries with optional type and status filters
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&database.CustomerFeedback{})

	if feedbackType := c.Query("feedback_type"); feedbackType != "" {
		if feedbackType != "requirement" && feedbackType != "complaint" && feedbackType != "recommendation" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback type"})
			return
		}
		query = query.Where("feedback_type = ?", feedbackType)
	}
	if status := c.Query("status"); status != "" {
		if status != "open" && status != "in_progress" && status != "resolved" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var entries []database.CustomerFeedback
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Get returns a single feedback entry
func (h *Handler) Get(c *gin.Context) {
	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback ID"})
		return
	}

	var entry database.CustomerFeedback
	if err := h.db.Where("id = ?", feedbackID).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

// Update modifies a feedback entry (manager only)
func (h *Handler) Update(c *gin.Context) {
	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback ID"})
		return
	}

	var req UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var entry database.CustomerFeedback
	if err := h.db.Where("id = ?", feedbackID).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.CustomerName != nil {
		updates["customer_name"] = strings.TrimSpace(*req.CustomerName)
	}
	if req.FeedbackType != nil {
		updates["feedback_type"] = *req.FeedbackType
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No changes provided"})
		return
	}

	if err := h.db.Model(&entry).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update feedback"})
		return
	}

	h.logger.LogUpdate(c, "feedback", entry.ID, updates)

	c.JSON(http.StatusOK, gin.H{"message": "Feedback updated successfully"})
}

// Delete removes a feedback entry (manager only)
func (h *Handler) Delete(c *gin.Context) {
	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback ID"})
		return
	}

	var entry database.CustomerFeedback
	if err := h.db.Where("id = ?", feedbackID).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}

	if err := h.db.Delete(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feedback"})
		return
	}

	h.logger.LogDelete(c, "feedback", entry.ID, entry)

	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
