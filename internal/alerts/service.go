package alerts

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/smartbiz/smartbiz-backend/pkg/database"
	"github.com/smartbiz/smartbiz-backend/pkg/sms"
)

// Service scans the inventory for items at or below their alert threshold
// and notifies managers over SMS.
type Service struct {
	db      *gorm.DB
	gateway sms.NotificationGateway
}

func NewService(db *gorm.DB, gateway sms.NotificationGateway) *Service {
	return &Service{db: db, gateway: gateway}
}

// CheckLowStock returns every item whose stock is at or below its threshold
func (s *Service) CheckLowStock() ([]database.Item, error) {
	var items []database.Item
	if err := s.db.Where("current_stock <= alert_threshold").
		Order("current_stock ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ComposeMessage builds the alert text: up to five items listed by name with
// their remaining stock, with a count of any overflow
func ComposeMessage(items []database.Item) string {
	var b strings.Builder
	b.WriteString("LOW STOCK ALERT\n")
	shown := items
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, item := range shown {
		fmt.Fprintf(&b, "• %s: %d left (Alert: %d)\n", item.Name, item.CurrentStock, item.AlertThreshold)
	}
	if len(items) > 5 {
		fmt.Fprintf(&b, "...and %d more items\n", len(items)-5)
	}
	b.WriteString("Please restock soon.")
	return b.String()
}

// SendLowStockAlerts checks stock levels and, when anything is low, sends a
// single SMS to every active manager. The outcome is recorded in alert_logs.
// Errors are logged rather than returned so a gateway outage never blocks
// startup.
func (s *Service) SendLowStockAlerts() {
	items, err := s.CheckLowStock()
	if err != nil {
		log.Printf("low stock check failed: %v", err)
		return
	}
	if len(items) == 0 {
		return
	}

	var managers []database.User
	if err := s.db.Where("role = ? AND is_active = ?", "manager", true).
		Find(&managers).Error; err != nil {
		log.Printf("failed to load managers for low stock alert: %v", err)
		return
	}

	recipients := make([]string, 0, len(managers))
	for _, manager := range managers {
		if manager.PhoneNumber != "" {
			recipients = append(recipients, manager.PhoneNumber)
		}
	}
	if len(recipients) == 0 {
		log.Printf("low stock alert: %d items flagged but no manager phone numbers on file", len(items))
		return
	}

	message := ComposeMessage(items)

	type itemSnapshot struct {
		CustomID       string `json:"custom_id"`
		Name           string `json:"name"`
		CurrentStock   int    `json:"current_stock"`
		AlertThreshold int    `json:"alert_threshold"`
	}
	snapshots := make([]itemSnapshot, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, itemSnapshot{
			CustomID:       item.CustomID,
			Name:           item.Name,
			CurrentStock:   item.CurrentStock,
			AlertThreshold: item.AlertThreshold,
		})
	}
	snapshotJSON, _ := json.Marshal(snapshots)

	entry := database.AlertLog{
		Type:       "low_stock",
		Items:      string(snapshotJSON),
		Recipients: strings.Join(recipients, ","),
		Message:    message,
		Success:    true,
		Result:     "sent",
	}

	if err := s.gateway.Send(recipients, message); err != nil {
		log.Printf("failed to send low stock alert: %v", err)
		entry.Success = false
		entry.Result = err.Error()
	} else {
		log.Printf("low stock alert sent to %d managers for %d items", len(recipients), len(items))
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("failed to record alert log: %v", err)
	}
}
