package inventory

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

func uploadCSV(t *testing.T, r *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/inventory/items/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportItemsFromCSV(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	r.POST("/inventory/items/import", NewHandler(db).ImportItems)

	csvContent := "custom_id,name,category,stock,threshold,selling,buying\n" +
		"SKU-001,Sugar 1kg,Groceries,20,5,150,120\n" +
		"SKU-002,Salt 500g,Groceries,30,10,50,35\n"

	w := uploadCSV(t, r, "items.csv", csvContent)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalRows)
	assert.Equal(t, 2, resp.Data.SuccessCount)
	assert.Equal(t, 0, resp.Data.FailedCount)

	var count int64
	db.Model(&database.Item{}).Count(&count)
	assert.Equal(t, int64(2), count)

	var item database.Item
	require.NoError(t, db.First(&item, "custom_id = ?", "SKU-001").Error)
	assert.Equal(t, 20, item.CurrentStock)
	assert.Equal(t, 150.0, item.SellingPrice)
}

func TestImportItemsReportsRowErrors(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	r.POST("/inventory/items/import", NewHandler(db).ImportItems)

	require.NoError(t, db.Create(&database.Item{CustomID: "SKU-001", Name: "Existing", Category: "Groceries", SellingPrice: 100}).Error)

	csvContent := "custom_id,name,category,stock,threshold,selling,buying\n" +
		"SKU-001,Duplicate,Groceries,1,1,10,5\n" + // already exists
		"x!,Bad ID,Groceries,1,1,10,5\n" + // invalid custom id
		"SKU-002,No Price,Groceries,1,1,0,0\n" + // selling price missing
		"SKU-003,Good,Groceries,5,2,25,15\n"

	w := uploadCSV(t, r, "items.csv", csvContent)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Data.TotalRows)
	assert.Equal(t, 1, resp.Data.SuccessCount)
	assert.Equal(t, 3, resp.Data.FailedCount)
	assert.Len(t, resp.Data.Errors, 3)
}

func TestImportItemsRejectsUnsupportedFormat(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	r.POST("/inventory/items/import", NewHandler(db).ImportItems)

	w := uploadCSV(t, r, "items.txt", "whatever")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
