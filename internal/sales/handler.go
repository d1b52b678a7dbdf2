package sales

import (
	"fmt"
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

type SaleItemRequest struct {
	ItemID    string  `json:"item_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

type CreateSaleRequest struct {
	Items              []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod      string            `json:"payment_method" binding:"required,oneof=cash mpesa"`
	MpesaReference     string            `json:"mpesa_reference"`
	CustomerName       string            `json:"customer_name"`
	DiscountPercentage float64           `json:"discount_percentage" binding:"gte=0,lte=100"`
	AmountPaid         *float64          `json:"amount_paid"`
}

// Create processes a sale. Every line is validated against current inventory
// before any stock is touched; the stock decrements and the sale insert then
// run inside one transaction so a sale either fully applies or not at all.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := c.GetString("role")
	if req.DiscountPercentage > 0 && role != "manager" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only managers can apply discounts"})
		return
	}

	if req.PaymentMethod == "mpesa" {
		if req.MpesaReference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "MPESA reference is required for MPESA payments"})
			return
		}
		if !validators.ValidMpesaReference(req.MpesaReference) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid MPESA reference format"})
			return
		}
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))

	tx := h.db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	// Validate every line before mutating any stock
	var saleItems []database.SaleItem
	var totalAmount float64

	for _, line := range req.Items {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid item ID: %s", line.ItemID)})
			return
		}

		var item database.Item
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item not found: %s", line.ItemID)})
			return
		}

		if item.CurrentStock < line.Quantity {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", item.Name)})
			return
		}

		// Reject stale prices from the client
		if line.UnitPrice != item.SellingPrice {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Price mismatch for %s", item.Name)})
			return
		}

		totalPrice := float64(line.Quantity) * line.UnitPrice
		totalAmount += totalPrice

		saleItems = append(saleItems, database.SaleItem{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: totalPrice,
		})
	}

	discountAmount := totalAmount * req.DiscountPercentage / 100
	finalAmount := totalAmount - discountAmount

	var change *float64
	if req.PaymentMethod == "cash" && req.AmountPaid != nil {
		if *req.AmountPaid < finalAmount {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount paid is less than final amount"})
			return
		}
		paid := *req.AmountPaid - finalAmount
		change = &paid
	}

	// All lines validated; apply the decrements. The stock guard repeats the
	// quantity check inside the UPDATE so a concurrent sale cannot slip a
	// stock level below zero between validation and commit.
	for _, saleItem := range saleItems {
		res := tx.Model(&database.Item{}).
			Where("id = ? AND current_stock >= ?", saleItem.ItemID, saleItem.Quantity).
			Update("current_stock", gorm.Expr("current_stock - ?", saleItem.Quantity))
		if res.Error != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
			return
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", saleItem.ItemName)})
			return
		}
	}

	sale := database.Sale{
		Items:              saleItems,
		TotalAmount:        totalAmount,
		DiscountPercentage: req.DiscountPercentage,
		DiscountAmount:     discountAmount,
		FinalAmount:        finalAmount,
		PaymentMethod:      req.PaymentMethod,
		MpesaReference:     req.MpesaReference,
		CustomerName:       req.CustomerName,
		ProcessedBy:        userID,
	}

	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit sale"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale recorded successfully",
		"sale_id": sale.ID.String(),
		"change":  change,
	})
}

// ItemsForSale lists items currently in stock with their selling prices
func (h *Handler) ItemsForSale(c *gin.Context) {
	type saleableItem struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		SellingPrice float64 `json:"selling_price"`
	}

	var items []database.Item
	if err := h.db.Where("current_stock > 0").Order("name ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	result := make([]saleableItem, 0, len(items))
	for _, item := range items {
		result = append(result, saleableItem{
			ID:           item.ID.String(),
			Name:         item.Name,
			SellingPrice: item.SellingPrice,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// History returns all sales, newest first
func (h *Handler) History(c *gin.Context) {
	var sales []database.Sale
	if err := h.db.Preload("Items").Order("created_at DESC").Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// Get returns a single sale
func (h *Handler) Get(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	var sale database.Sale
	if err := h.db.Preload("Items").Where("id = ?", saleID).First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}
