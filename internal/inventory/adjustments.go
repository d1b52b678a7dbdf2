package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

type StockAdjustmentRequest struct {
	Type     string `json:"type" binding:"required,oneof=increase decrease"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason"`
}

// AdjustStock applies a manual stock correction and records the audit entry.
// Increases add unconditionally; decreases floor the result at zero. The item
// update and the audit insert share one transaction.
func (h *Handler) AdjustStock(c *gin.Context) {
	customID := c.Param("custom_id")

	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Manual adjustment"
	}

	var item database.Item
	if err := h.db.Where("custom_id = ?", customID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	previousStock := item.CurrentStock
	newStock := previousStock
	if req.Type == "increase" {
		newStock = previousStock + req.Quantity
	} else {
		newStock = previousStock - req.Quantity
		if newStock < 0 {
			newStock = 0
		}
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))
	adjustment := database.StockAdjustment{
		ItemID:         item.ID,
		ItemCustomID:   item.CustomID,
		ItemName:       item.Name,
		AdjustmentType: req.Type,
		Quantity:       req.Quantity,
		PreviousStock:  previousStock,
		NewStock:       newStock,
		Reason:         reason,
		AdjustedBy:     userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&item).Update("current_stock", newStock).Error; err != nil {
			return err
		}
		return tx.Create(&adjustment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock"})
		return
	}

	h.logger.Log(c, "adjust_stock", "item", &item.ID, adjustment)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Stock adjusted successfully",
		"previous_stock": previousStock,
		"new_stock":      newStock,
	})
}

// ListAdjustments returns the stock adjustment audit trail, newest first,
// optionally filtered to one item
func (h *Handler) ListAdjustments(c *gin.Context) {
	query := h.db.Model(&database.StockAdjustment{})

	if customID := c.Query("custom_id"); customID != "" {
		query = query.Where("item_custom_id = ?", customID)
	}

	var adjustments []database.StockAdjustment
	if err := query.Order("created_at DESC").Find(&adjustments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stock adjustments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": adjustments})
}
