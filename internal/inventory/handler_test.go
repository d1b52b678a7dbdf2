package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Set("role", "manager")
		c.Set("user_name", "Test Manager")
	})
	h := NewHandler(db)
	r.POST("/inventory/items", h.CreateItem)
	r.GET("/inventory/items", h.ListItems)
	r.GET("/inventory/items/:custom_id", h.GetItem)
	r.PUT("/inventory/items/:custom_id", h.UpdateItem)
	r.POST("/inventory/items/:custom_id/supplier-price", h.AddSupplierPrice)
	r.POST("/inventory/items/:custom_id/stock-adjustment", h.AdjustStock)
	r.GET("/inventory/stock-adjustments", h.ListAdjustments)
	r.GET("/inventory/categories", h.ListCategories)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateItemAndDuplicate(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	body := gin.H{
		"custom_id":       "SKU-001",
		"name":            "Sugar 1kg",
		"category":        "Groceries",
		"current_stock":   20,
		"alert_threshold": 5,
		"selling_price":   150.0,
		"buying_price":    120.0,
	}

	w := doJSON(r, http.MethodPost, "/inventory/items", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/inventory/items", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	var item database.Item
	require.NoError(t, db.First(&item, "custom_id = ?", "SKU-001").Error)
	assert.Equal(t, 20, item.CurrentStock)
	assert.Equal(t, 150.0, item.SellingPrice)
}

func TestCreateItemRejectsBadCustomID(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w := doJSON(r, http.MethodPost, "/inventory/items", gin.H{
		"custom_id":     "x!",
		"name":          "Bad",
		"category":      "Groceries",
		"selling_price": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListItemsFilters(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	seed := []database.Item{
		{CustomID: "A1", Name: "Sugar", Category: "Groceries", CurrentStock: 20, AlertThreshold: 5, SellingPrice: 150},
		{CustomID: "A2", Name: "Soap", Category: "Hygiene", CurrentStock: 2, AlertThreshold: 5, SellingPrice: 80},
		{CustomID: "A3", Name: "Bread", Category: "groceries", CurrentStock: 0, AlertThreshold: 3, SellingPrice: 60},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	type listResp struct {
		Data []struct {
			CustomID     string `json:"custom_id"`
			IsLowStock   bool   `json:"is_low_stock"`
			IsOutOfStock bool   `json:"is_out_of_stock"`
		} `json:"data"`
	}

	w := doJSON(r, http.MethodGet, "/inventory/items?category=groc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2) // case-insensitive substring match

	w = doJSON(r, http.MethodGet, "/inventory/items?low_stock_only=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = listResp{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	for _, item := range resp.Data {
		assert.True(t, item.IsLowStock)
	}

	w = doJSON(r, http.MethodGet, "/inventory/items/A3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_out_of_stock":true`)
}

func TestUpdateItem(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	item := database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", CurrentStock: 20, SellingPrice: 150}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPut, "/inventory/items/A1", gin.H{"selling_price": 160.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated database.Item
	require.NoError(t, db.First(&updated, "custom_id = ?", "A1").Error)
	assert.Equal(t, 160.0, updated.SellingPrice)
	assert.Equal(t, "Sugar", updated.Name)

	w = doJSON(r, http.MethodPut, "/inventory/items/A1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No changes made")

	w = doJSON(r, http.MethodPut, "/inventory/items/MISSING", gin.H{"selling_price": 10.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdjustStockDecreaseClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	item := database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", CurrentStock: 3, SellingPrice: 150}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPost, "/inventory/items/A1/stock-adjustment", gin.H{
		"type":     "decrease",
		"quantity": 8,
		"reason":   "Damaged stock",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated database.Item
	require.NoError(t, db.First(&updated, "custom_id = ?", "A1").Error)
	assert.Equal(t, 0, updated.CurrentStock)

	var adjustment database.StockAdjustment
	require.NoError(t, db.First(&adjustment).Error)
	assert.Equal(t, "decrease", adjustment.AdjustmentType)
	assert.Equal(t, 3, adjustment.PreviousStock)
	assert.Equal(t, 0, adjustment.NewStock)
	assert.Equal(t, "Damaged stock", adjustment.Reason)
}

func TestAdjustStockIncreaseAndAuditTrail(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	item := database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", CurrentStock: 3, SellingPrice: 150}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPost, "/inventory/items/A1/stock-adjustment", gin.H{
		"type":     "increase",
		"quantity": 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated database.Item
	require.NoError(t, db.First(&updated, "custom_id = ?", "A1").Error)
	assert.Equal(t, 13, updated.CurrentStock)

	w = doJSON(r, http.MethodGet, "/inventory/stock-adjustments?custom_id=A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []database.StockAdjustment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Manual adjustment", resp.Data[0].Reason)
}

func TestAdjustStockRejectsBadType(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	item := database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", CurrentStock: 3, SellingPrice: 150}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPost, "/inventory/items/A1/stock-adjustment", gin.H{
		"type":     "restock",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddSupplierPrice(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	supplier := database.Supplier{CustomID: "SUP-1", Name: "Acme Traders", ContactPerson: "Jane", PhoneNumber: "+254712345678", IsActive: true}
	require.NoError(t, db.Create(&supplier).Error)
	item := database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", SellingPrice: 150}
	require.NoError(t, db.Create(&item).Error)

	w := doJSON(r, http.MethodPost, "/inventory/items/A1/supplier-price", gin.H{
		"supplier_id":  "SUP-1",
		"buying_price": 120.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var price database.ItemSupplierPrice
	require.NoError(t, db.First(&price).Error)
	assert.Equal(t, "Acme Traders", price.SupplierName)
	assert.Equal(t, 120.0, price.BuyingPrice)

	w = doJSON(r, http.MethodPost, "/inventory/items/A1/supplier-price", gin.H{
		"supplier_id":  "MISSING",
		"buying_price": 120.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategories(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	require.NoError(t, db.Create(&database.Item{CustomID: "A1", Name: "Sugar", Category: "Groceries", SellingPrice: 150}).Error)
	require.NoError(t, db.Create(&database.Item{CustomID: "A2", Name: "Salt", Category: "Groceries", SellingPrice: 50}).Error)
	require.NoError(t, db.Create(&database.Item{CustomID: "A3", Name: "Soap", Category: "Hygiene", SellingPrice: 80}).Error)

	w := doJSON(r, http.MethodGet, "/inventory/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Groceries")
	assert.Contains(t, w.Body.String(), "Hygiene")
}
