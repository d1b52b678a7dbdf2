package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type TopSellingItem struct {
	ItemID        string  `json:"item_id"`
	ItemName      string  `json:"item_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

type DailyReport struct {
	Date              string           `json:"date"`
	TotalSales        float64          `json:"total_sales"`
	TotalTransactions int              `json:"total_transactions"`
	CashSales         float64          `json:"cash_sales"`
	MpesaSales        float64          `json:"mpesa_sales"`
	TotalDiscount     float64          `json:"total_discount"`
	TotalItemsSold    int              `json:"total_items_sold"`
	TopSellingItems   []TopSellingItem `json:"top_selling_items"`
}

type WeeklyReport struct {
	WeekStart         string        `json:"week_start"`
	WeekEnd           string        `json:"week_end"`
	DailyReports      []DailyReport `json:"daily_reports"`
	TotalWeeklySales  float64       `json:"total_weekly_sales"`
	AverageDailySales float64       `json:"average_daily_sales"`
}

type OperatorPerformance struct {
	OperatorID         string  `json:"operator_id"`
	OperatorName       string  `json:"operator_name"`
	TotalSales         float64 `json:"total_sales"`
	TotalTransactions  int     `json:"total_transactions"`
	AverageTransaction float64 `json:"average_transaction"`
	TotalItemsSold     int     `json:"total_items_sold"`
	PeriodStart        string  `json:"period_start"`
	PeriodEnd          string  `json:"period_end"`
}

type CategoryBreakdown struct {
	Category      string  `json:"category"`
	ItemCount     int     `json:"item_count"`
	TotalStock    int     `json:"total_stock"`
	CategoryValue float64 `json:"category_value"`
}

type InventoryReport struct {
	TotalItems        int                 `json:"total_items"`
	TotalStockValue   float64             `json:"total_stock_value"`
	LowStockItems     int                 `json:"low_stock_items"`
	OutOfStockItems   int                 `json:"out_of_stock_items"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
}

// dailyReport computes the sales aggregates for [startOfDay, startOfDay+24h)
func (h *Handler) dailyReport(day time.Time) (DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	report := DailyReport{
		Date:            start.Format("2006-01-02"),
		TopSellingItems: []TopSellingItem{},
	}

	var totals struct {
		TotalSales        float64
		TotalTransactions int
		CashSales         float64
		MpesaSales        float64
		TotalDiscount     float64
	}
	if err := h.db.Model(&database.Sale{}).
		Select(`COALESCE(SUM(final_amount), 0) as total_sales,
			COUNT(*) as total_transactions,
			COALESCE(SUM(CASE WHEN payment_method = 'cash' THEN final_amount ELSE 0 END), 0) as cash_sales,
			COALESCE(SUM(CASE WHEN payment_method = 'mpesa' THEN final_amount ELSE 0 END), 0) as mpesa_sales,
			COALESCE(SUM(discount_amount), 0) as total_discount`).
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&totals).Error; err != nil {
		return report, err
	}

	report.TotalSales = totals.TotalSales
	report.TotalTransactions = totals.TotalTransactions
	report.CashSales = totals.CashSales
	report.MpesaSales = totals.MpesaSales
	report.TotalDiscount = totals.TotalDiscount

	var itemsSold int
	if err := h.db.Model(&database.SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Scan(&itemsSold).Error; err != nil {
		return report, err
	}
	report.TotalItemsSold = itemsSold

	if err := h.db.Model(&database.SaleItem{}).
		Select(`sale_items.item_id as item_id,
			sale_items.item_name as item_name,
			SUM(sale_items.quantity) as total_quantity,
			SUM(sale_items.total_price) as total_revenue`).
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Group("sale_items.item_id, sale_items.item_name").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&report.TopSellingItems).Error; err != nil {
		return report, err
	}

	return report, nil
}

// DailySales returns the daily sales report, defaulting to today
func (h *Handler) DailySales(c *gin.Context) {
	day := time.Now().UTC()
	if dateParam := c.Query("date"); dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.dailyReport(day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// WeeklySales returns seven consecutive daily reports plus their sum and
// average, starting Monday of the current week unless start_date is given
func (h *Handler) WeeklySales(c *gin.Context) {
	var weekStart time.Time
	if startParam := c.Query("start_date"); startParam != "" {
		parsed, err := time.Parse("2006-01-02", startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		weekStart = parsed
	} else {
		now := time.Now().UTC()
		// Monday of the current week
		offset := (int(now.Weekday()) + 6) % 7
		weekStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	}
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)

	report := WeeklyReport{
		WeekStart:    weekStart.Format("2006-01-02"),
		WeekEnd:      weekStart.AddDate(0, 0, 7).Format("2006-01-02"),
		DailyReports: make([]DailyReport, 0, 7),
	}

	for i := 0; i < 7; i++ {
		daily, err := h.dailyReport(weekStart.AddDate(0, 0, i))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
			return
		}
		report.DailyReports = append(report.DailyReports, daily)
		report.TotalWeeklySales += daily.TotalSales
	}
	report.AverageDailySales = report.TotalWeeklySales / 7

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// OperatorPerformanceReport aggregates sales per processing user over an
// inclusive date range, sorted by total sales descending (manager only)
func (h *Handler) OperatorPerformanceReport(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}

	var operators []OperatorPerformance
	if err := h.db.Model(&database.Sale{}).
		Select(`sales.processed_by as operator_id,
			users.full_name as operator_name,
			SUM(sales.final_amount) as total_sales,
			COUNT(*) as total_transactions,
			AVG(sales.final_amount) as average_transaction`).
		Joins("JOIN users ON users.id = sales.processed_by").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Group("sales.processed_by, users.full_name").
		Order("total_sales DESC").
		Scan(&operators).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	type unitsRow struct {
		OperatorID string
		Units      int
	}
	var units []unitsRow
	if err := h.db.Model(&database.SaleItem{}).
		Select("sales.processed_by as operator_id, COALESCE(SUM(sale_items.quantity), 0) as units").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", start, end).
		Group("sales.processed_by").
		Scan(&units).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	unitsByOperator := make(map[string]int, len(units))
	for _, u := range units {
		unitsByOperator[u.OperatorID] = u.Units
	}

	periodStart := start.Format("2006-01-02")
	periodEnd := end.AddDate(0, 0, -1).Format("2006-01-02")
	for i := range operators {
		operators[i].TotalItemsSold = unitsByOperator[operators[i].OperatorID]
		operators[i].PeriodStart = periodStart
		operators[i].PeriodEnd = periodEnd
	}

	c.JSON(http.StatusOK, gin.H{"data": operators})
}

// Inventory returns stock valuation and per-category breakdown
func (h *Handler) Inventory(c *gin.Context) {
	report := InventoryReport{CategoryBreakdown: []CategoryBreakdown{}}

	var totals struct {
		TotalItems      int
		TotalStockValue float64
		LowStockItems   int
		OutOfStockItems int
	}
	if err := h.db.Model(&database.Item{}).
		Select(`COUNT(*) as total_items,
			COALESCE(SUM(current_stock * selling_price), 0) as total_stock_value,
			COALESCE(SUM(CASE WHEN current_stock <= alert_threshold THEN 1 ELSE 0 END), 0) as low_stock_items,
			COALESCE(SUM(CASE WHEN current_stock = 0 THEN 1 ELSE 0 END), 0) as out_of_stock_items`).
		Scan(&totals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	report.TotalItems = totals.TotalItems
	report.TotalStockValue = totals.TotalStockValue
	report.LowStockItems = totals.LowStockItems
	report.OutOfStockItems = totals.OutOfStockItems

	if err := h.db.Model(&database.Item{}).
		Select(`category,
			COUNT(*) as item_count,
			COALESCE(SUM(current_stock), 0) as total_stock,
			COALESCE(SUM(current_stock * selling_price), 0) as category_value`).
		Group("category").
		Order("category_value DESC").
		Scan(&report.CategoryBreakdown).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Expenses returns a per-category expense breakdown over an inclusive date
// range (manager only)
func (h *Handler) Expenses(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}

	type expenseCategory struct {
		Category     string  `json:"category"`
		TotalAmount  float64 `json:"total_amount"`
		ExpenseCount int     `json:"expense_count"`
	}

	breakdown := []expenseCategory{}
	if err := h.db.Model(&database.Expense{}).
		Select("category, SUM(amount) as total_amount, COUNT(*) as expense_count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("category").
		Order("total_amount DESC").
		Scan(&breakdown).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	var total float64
	for _, category := range breakdown {
		total += category.TotalAmount
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"start_date":         start.Format("2006-01-02"),
		"end_date":           end.AddDate(0, 0, -1).Format("2006-01-02"),
		"total_expenses":     total,
		"category_breakdown": breakdown,
	}})
}

// Feedback returns a per-type feedback breakdown with entry details over an
// inclusive date range (manager only)
func (h *Handler) Feedback(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}

	var entries []database.CustomerFeedback
	if err := h.db.Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	type feedbackDetail struct {
		CustomerName string `json:"customer_name,omitempty"`
		Description  string `json:"description"`
		Status       string `json:"status"`
		CreatedAt    string `json:"created_at"`
	}
	type feedbackGroup struct {
		Type    string           `json:"type"`
		Count   int              `json:"count"`
		Details []feedbackDetail `json:"details"`
	}

	grouped := map[string]*feedbackGroup{}
	order := []string{}
	for _, entry := range entries {
		group, found := grouped[entry.FeedbackType]
		if !found {
			group = &feedbackGroup{Type: entry.FeedbackType, Details: []feedbackDetail{}}
			grouped[entry.FeedbackType] = group
			order = append(order, entry.FeedbackType)
		}
		group.Count++
		group.Details = append(group.Details, feedbackDetail{
			CustomerName: entry.CustomerName,
			Description:  entry.Description,
			Status:       entry.Status,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}

	breakdown := make([]feedbackGroup, 0, len(order))
	for _, feedbackType := range order {
		breakdown = append(breakdown, *grouped[feedbackType])
	}
	// Largest group first
	for i := 0; i < len(breakdown); i++ {
		for j := i + 1; j < len(breakdown); j++ {
			if breakdown[j].Count > breakdown[i].Count {
				breakdown[i], breakdown[j] = breakdown[j], breakdown[i]
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"start_date":         start.Format("2006-01-02"),
		"end_date":           end.AddDate(0, 0, -1).Format("2006-01-02"),
		"total_feedback":     len(entries),
		"feedback_breakdown": breakdown,
	}})
}

// parseRange reads the required start_date/end_date query parameters. The
// returned end is exclusive: the day after end_date, so the range covers
// end_date in full.
func (h *Handler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return time.Time{}, time.Time{}, false
	}
	return start, end.AddDate(0, 0, 1), true
}
