package supplier

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

func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Set("role", "manager")
		c.Set("user_name", "Test Manager")
	})
	h := NewHandler(db)
	r.POST("/suppliers", h.Create)
	r.GET("/suppliers", h.List)
	r.GET("/suppliers/:custom_id", h.Get)
	r.PUT("/suppliers/:custom_id", h.Update)
	r.DELETE("/suppliers/:custom_id", h.Deactivate)
	return db, r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func supplierBody(customID, phone string) gin.H {
	return gin.H{
		"custom_id":      customID,
		"name":           "Supplier " + customID,
		"contact_person": "Jane Doe",
		"phone_number":   phone,
		"email":          "supplier@example.com",
	}
}

func TestCreateSupplier(t *testing.T) {
	db, r := setupTest(t)

	w := doJSON(r, http.MethodPost, "/suppliers", supplierBody("SUP-1", "+254712345678"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var supplier database.Supplier
	require.NoError(t, db.First(&supplier, "custom_id = ?", "SUP-1").Error)
	assert.True(t, supplier.IsActive)

	// Same custom id and same phone both collide
	w = doJSON(r, http.MethodPost, "/suppliers", supplierBody("SUP-1", "+254799999999"))
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(r, http.MethodPost, "/suppliers", supplierBody("SUP-2", "+254712345678"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateSupplierValidation(t *testing.T) {
	_, r := setupTest(t)

	body := supplierBody("SUP-1", "12345")
	w := doJSON(r, http.MethodPost, "/suppliers", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = supplierBody("SUP-1", "+254712345678")
	body["email"] = "not-an-email"
	w = doJSON(r, http.MethodPost, "/suppliers", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSuppliersActiveFilter(t *testing.T) {
	db, r := setupTest(t)

	require.NoError(t, db.Create(&database.Supplier{CustomID: "SUP-1", Name: "Active One", ContactPerson: "Jane", PhoneNumber: "+254711111111", IsActive: true}).Error)
	require.NoError(t, db.Create(&database.Supplier{CustomID: "SUP-2", Name: "Retired One", ContactPerson: "Jane", PhoneNumber: "+254722222222", IsActive: false}).Error)

	var resp struct {
		Data []database.Supplier `json:"data"`
	}

	w := doJSON(r, http.MethodGet, "/suppliers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "SUP-1", resp.Data[0].CustomID)

	w = doJSON(r, http.MethodGet, "/suppliers?active_only=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Data = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestUpdateSupplier(t *testing.T) {
	db, r := setupTest(t)

	require.NoError(t, db.Create(&database.Supplier{CustomID: "SUP-1", Name: "First", ContactPerson: "Jane", PhoneNumber: "+254711111111", IsActive: true}).Error)
	require.NoError(t, db.Create(&database.Supplier{CustomID: "SUP-2", Name: "Second", ContactPerson: "John", PhoneNumber: "+254722222222", IsActive: true}).Error)

	w := doJSON(r, http.MethodPut, "/suppliers/SUP-1", gin.H{"contact_person": "Janet"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated database.Supplier
	require.NoError(t, db.First(&updated, "custom_id = ?", "SUP-1").Error)
	assert.Equal(t, "Janet", updated.ContactPerson)

	// Name collision with another supplier, case-insensitive
	w = doJSON(r, http.MethodPut, "/suppliers/SUP-1", gin.H{"name": "second"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPut, "/suppliers/SUP-1", gin.H{"phone_number": "+254722222222"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPut, "/suppliers/SUP-1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/suppliers/MISSING", gin.H{"contact_person": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivateSupplier(t *testing.T) {
	db, r := setupTest(t)

	require.NoError(t, db.Create(&database.Supplier{CustomID: "SUP-1", Name: "First", ContactPerson: "Jane", PhoneNumber: "+254711111111", IsActive: true}).Error)

	w := doJSON(r, http.MethodDelete, "/suppliers/SUP-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Row survives, only the flag flips
	var supplier database.Supplier
	require.NoError(t, db.First(&supplier, "custom_id = ?", "SUP-1").Error)
	assert.False(t, supplier.IsActive)

	w = doJSON(r, http.MethodDelete, "/suppliers/MISSING", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
