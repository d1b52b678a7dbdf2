package inventory

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/activitylog"
	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/validators"
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

type SupplierPriceRequest struct {
	SupplierID  string  `json:"supplier_id" binding:"required"`
	BuyingPrice float64 `json:"buying_price" binding:"required,gt=0"`
}

type CreateItemRequest struct {
	CustomID       string                 `json:"custom_id" binding:"required"`
	Name           string                 `json:"name" binding:"required,min=1,max=100"`
	Category       string                 `json:"category" binding:"required,min=1,max=50"`
	Description    string                 `json:"description"`
	CurrentStock   *int                   `json:"current_stock" binding:"omitempty,gte=0"`
	AlertThreshold int                    `json:"alert_threshold" binding:"gte=0"`
	SellingPrice   float64                `json:"selling_price" binding:"required,gt=0"`
	BuyingPrice    float64                `json:"buying_price" binding:"omitempty,gt=0"`
	SupplierPrices []SupplierPriceRequest `json:"supplier_prices" binding:"omitempty,dive"`
}

type UpdateItemRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Category       *string  `json:"category" binding:"omitempty,min=1,max=50"`
	Description    *string  `json:"description"`
	CurrentStock   *int     `json:"current_stock" binding:"omitempty,gte=0"`
	AlertThreshold *int     `json:"alert_threshold" binding:"omitempty,gte=0"`
	SellingPrice   *float64 `json:"selling_price" binding:"omitempty,gt=0"`
	BuyingPrice    *float64 `json:"buying_price" binding:"omitempty,gt=0"`
}

// ItemView is an Item plus the stock flags computed at query time
type ItemView struct {
	database.Item
	IsLowStock   bool `json:"is_low_stock"`
	IsOutOfStock bool `json:"is_out_of_stock"`
}

func viewOf(item database.Item) ItemView {
	return ItemView{
		Item:         item,
		IsLowStock:   item.IsLowStock(),
		IsOutOfStock: item.IsOutOfStock(),
	}
}

// CreateItem registers a new inventory item under a caller-assigned custom id
func (h *Handler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validators.ValidCustomID(req.CustomID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid custom ID format"})
		return
	}

	var existing database.Item
	if err := h.db.Where("custom_id = ?", req.CustomID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Item with this custom ID already exists"})
		return
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))

	stock := 0
	if req.CurrentStock != nil {
		stock = *req.CurrentStock
	}

	item := database.Item{
		CustomID:       req.CustomID,
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		CurrentStock:   stock,
		AlertThreshold: req.AlertThreshold,
		SellingPrice:   req.SellingPrice,
		BuyingPrice:    req.BuyingPrice,
		CreatedBy:      userID,
	}

	// Creation-time supplier prices need the supplier name snapshot
	for _, sp := range req.SupplierPrices {
		var supplier database.Supplier
		if err := h.db.Where("custom_id = ?", sp.SupplierID).First(&supplier).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found: " + sp.SupplierID})
			return
		}
		item.SupplierPrices = append(item.SupplierPrices, database.ItemSupplierPrice{
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			BuyingPrice:  sp.BuyingPrice,
		})
	}

	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Item created successfully",
		"custom_id": item.CustomID,
	})
}

// UpdateItem applies a partial update to an existing item
func (h *Handler) UpdateItem(c *gin.Context) {
	customID := c.Param("custom_id")

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item database.Item
	if err := h.db.Where("custom_id = ?", customID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CurrentStock != nil {
		updates["current_stock"] = *req.CurrentStock
	}
	if req.AlertThreshold != nil {
		updates["alert_threshold"] = *req.AlertThreshold
	}
	if req.SellingPrice != nil {
		updates["selling_price"] = *req.SellingPrice
	}
	if req.BuyingPrice != nil {
		updates["buying_price"] = *req.BuyingPrice
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No changes made"})
		return
	}

	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully"})
}

// ListItems returns inventory items with optional category and low-stock
// filters. The category filter is a case-insensitive substring match; low
// stock is computed against the threshold at query time.
func (h *Handler) ListItems(c *gin.Context) {
	query := h.db.Model(&database.Item{}).Preload("SupplierPrices")

	if category := c.Query("category"); category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}
	if c.Query("low_stock_only") == "true" {
		query = query.Where("current_stock <= alert_threshold")
	}

	var items []database.Item
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetItem returns a single item by custom id
func (h *Handler) GetItem(c *gin.Context) {
	customID := c.Param("custom_id")

	var item database.Item
	if err := h.db.Preload("SupplierPrices").Where("custom_id = ?", customID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": viewOf(item)})
}

// AddSupplierPrice appends a supplier price record to an item. Existing
// records are never replaced; the supplier name is snapshotted at write time.
func (h *Handler) AddSupplierPrice(c *gin.Context) {
	customID := c.Param("custom_id")

	var req SupplierPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item database.Item
	if err := h.db.Where("custom_id = ?", customID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	var supplier database.Supplier
	if err := h.db.Where("custom_id = ?", req.SupplierID).First(&supplier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	price := database.ItemSupplierPrice{
		ItemID:       item.ID,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		BuyingPrice:  req.BuyingPrice,
	}

	if err := h.db.Create(&price).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add supplier price"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier price added successfully"})
}

// ListCategories returns per-category item counts
func (h *Handler) ListCategories(c *gin.Context) {
	type categoryCount struct {
		Name      string `json:"name"`
		ItemCount int    `json:"item_count"`
	}

	var categories []categoryCount
	if err := h.db.Model(&database.Item{}).
		Select("category as name, COUNT(*) as item_count").
		Group("category").
		Order("category ASC").
		Scan(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}
