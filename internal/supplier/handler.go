package supplier

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/validators"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type CreateSupplierRequest struct {
	CustomID      string `json:"custom_id" binding:"required"`
	Name          string `json:"name" binding:"required,min=1,max=100"`
	ContactPerson string `json:"contact_person" binding:"required,min=1,max=100"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=100"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,min=1,max=100"`
	PhoneNumber   *string `json:"phone_number"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
}

// Create registers a new supplier (manager only)
func (h *Handler) Create(c *gin.Context) {
	var req CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validators.ValidCustomID(req.CustomID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid custom ID format"})
		return
	}
	if !validators.ValidPhoneNumber(req.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number format"})
		return
	}
	if req.Email != "" && !validators.ValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	var existing database.Supplier
	if err := h.db.Where("custom_id = ? OR phone_number = ?", req.CustomID, req.PhoneNumber).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Supplier with this custom ID or phone number already exists"})
		return
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))

	supplier := database.Supplier{
		CustomID:      req.CustomID,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		PhoneNumber:   req.PhoneNumber,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
		CreatedBy:     userID,
	}

	if err := h.db.Create(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create supplier"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Supplier created successfully",
		"custom_id": supplier.CustomID,
	})
}

// List returns suppliers, active ones only unless active_only=false
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&database.Supplier{})
	if c.DefaultQuery("active_only", "true") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var suppliers []database.Supplier
	if err := query.Order("name ASC").Find(&suppliers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suppliers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

// Get returns a single supplier by custom id
func (h *Handler) Get(c *gin.Context) {
	var supplier database.Supplier
	if err := h.db.Where("custom_id = ?", c.Param("custom_id")).First(&supplier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": supplier})
}

// Update applies a partial update to a supplier (manager only)
func (h *Handler) Update(c *gin.Context) {
	customID := c.Param("custom_id")

	var req UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var supplier database.Supplier
	if err := h.db.Where("custom_id = ?", customID).First(&supplier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactPerson != nil {
		updates["contact_person"] = *req.ContactPerson
	}
	if req.PhoneNumber != nil {
		if !validators.ValidPhoneNumber(*req.PhoneNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number format"})
			return
		}
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Email != nil {
		if *req.Email != "" && !validators.ValidEmail(*req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
			return
		}
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No changes made"})
		return
	}

	// Another supplier may not take this name or phone number
	if req.Name != nil || req.PhoneNumber != nil {
		name := supplier.Name
		phone := supplier.PhoneNumber
		if req.Name != nil {
			name = *req.Name
		}
		if req.PhoneNumber != nil {
			phone = *req.PhoneNumber
		}

		var duplicate database.Supplier
		if err := h.db.Where("custom_id <> ?", customID).
			Where("LOWER(name) = LOWER(?) OR phone_number = ?", name, phone).
			First(&duplicate).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Supplier with this name or phone number already exists"})
			return
		}
	}

	if err := h.db.Model(&supplier).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier updated successfully"})
}

// Deactivate soft-deletes a supplier; records are never removed
func (h *Handler) Deactivate(c *gin.Context) {
	var supplier database.Supplier
	if err := h.db.Where("custom_id = ?", c.Param("custom_id")).First(&supplier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	if err := h.db.Model(&supplier).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier deactivated successfully"})
}
