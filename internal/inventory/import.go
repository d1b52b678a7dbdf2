package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/validators"
)

type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}

type importRow struct {
	CustomID       string
	Name           string
	Category       string
	CurrentStock   int
	AlertThreshold int
	SellingPrice   float64
	BuyingPrice    float64
}

// ImportItems handles an .xlsx or .csv upload for bulk item creation.
// Expected columns: custom id, name, category, stock, alert threshold,
// selling price, buying price. The first row is treated as a header.
func (h *Handler) ImportItems(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	var rows []importRow
	fileName := strings.ToLower(header.Filename)

	if strings.HasSuffix(fileName, ".xlsx") || strings.HasSuffix(fileName, ".xls") {
		rows, err = parseExcel(file)
	} else if strings.HasSuffix(fileName, ".csv") {
		rows, err = parseCSV(file)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format. Please upload .xlsx or .csv"})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse file: %v", err)})
		return
	}

	userID, _ := uuid.Parse(c.GetString("user_id"))

	result := ImportResult{
		TotalRows: len(rows),
		Errors:    []string{},
	}

	for i, row := range rows {
		rowNum := i + 2 // account for the header row

		if row.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: item name is required", rowNum))
			result.FailedCount++
			continue
		}
		if !validators.ValidCustomID(row.CustomID) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid custom ID %q", rowNum, row.CustomID))
			result.FailedCount++
			continue
		}
		if row.SellingPrice <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: selling price must be positive", rowNum))
			result.FailedCount++
			continue
		}
		if row.CurrentStock < 0 || row.AlertThreshold < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: stock and threshold cannot be negative", rowNum))
			result.FailedCount++
			continue
		}

		var existing database.Item
		if err := h.db.Where("custom_id = ?", row.CustomID).First(&existing).Error; err == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: item %q already exists", rowNum, row.CustomID))
			result.FailedCount++
			continue
		}

		item := database.Item{
			CustomID:       row.CustomID,
			Name:           row.Name,
			Category:       row.Category,
			CurrentStock:   row.CurrentStock,
			AlertThreshold: row.AlertThreshold,
			SellingPrice:   row.SellingPrice,
			BuyingPrice:    row.BuyingPrice,
			CreatedBy:      userID,
		}
		if item.Category == "" {
			item.Category = "Uncategorized"
		}

		if err := h.db.Create(&item).Error; err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			result.FailedCount++
			continue
		}
		result.SuccessCount++
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func parseExcel(file io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var rows []importRow
	for i, record := range cells {
		if i == 0 {
			continue // header
		}
		rows = append(rows, rowFromRecord(record))
	}
	return rows, nil
}

func parseCSV(file io.Reader) ([]importRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows []importRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue // header
		}
		rows = append(rows, rowFromRecord(record))
	}
	return rows, nil
}

func rowFromRecord(record []string) importRow {
	get := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	stock, _ := strconv.Atoi(get(3))
	threshold, _ := strconv.Atoi(get(4))
	selling, _ := strconv.ParseFloat(get(5), 64)
	buying, _ := strconv.ParseFloat(get(6), 64)

	return importRow{
		CustomID:       get(0),
		Name:           get(1),
		Category:       get(2),
		CurrentStock:   stock,
		AlertThreshold: threshold,
		SellingPrice:   selling,
		BuyingPrice:    buying,
	}
}
