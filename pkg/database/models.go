package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model for all entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a store-generated id when the caller left it empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User represents a system user (manager or operator)
type User struct {
	BaseModel
	IDNumber     string     `gorm:"uniqueIndex;not null" json:"id_number"`
	FullName     string     `gorm:"not null" json:"full_name"`
	Role         string     `gorm:"not null" json:"role"` // manager, operator
	PhoneNumber  string     `gorm:"not null" json:"phone_number"`
	PasswordHash string     `json:"-"`
	FirstLogin   bool       `gorm:"default:true" json:"first_login"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedBy    *uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// Item represents a sellable inventory item
type Item struct {
	BaseModel
	CustomID       string              `gorm:"uniqueIndex;not null" json:"custom_id"`
	Name           string              `gorm:"not null" json:"name"`
	Category       string              `gorm:"not null" json:"category"`
	Description    string              `json:"description"`
	CurrentStock   int                 `gorm:"default:0" json:"current_stock"`
	AlertThreshold int                 `gorm:"default:0" json:"alert_threshold"`
	SellingPrice   float64             `gorm:"not null" json:"selling_price"`
	BuyingPrice    float64             `json:"buying_price"`
	SupplierPrices []ItemSupplierPrice `gorm:"foreignKey:ItemID" json:"supplier_prices"`
	CreatedBy      uuid.UUID           `gorm:"type:uuid" json:"created_by"`
}

// IsLowStock reports whether the item sits at or below its alert threshold
func (i *Item) IsLowStock() bool {
	return i.CurrentStock <= i.AlertThreshold
}

// IsOutOfStock reports whether the item is fully depleted
func (i *Item) IsOutOfStock() bool {
	return i.CurrentStock == 0
}

// ItemSupplierPrice is one entry of an item's supplier price history.
// Records are append-only; the supplier name is snapshotted at write time.
type ItemSupplierPrice struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	SupplierID   uuid.UUID `gorm:"type:uuid;not null" json:"supplier_id"`
	SupplierName string    `gorm:"not null" json:"supplier_name"`
	BuyingPrice  float64   `gorm:"not null" json:"buying_price"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"last_updated"`
}

func (p *ItemSupplierPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Supplier represents a goods supplier. Suppliers are deactivated, never removed.
type Supplier struct {
	BaseModel
	CustomID      string    `gorm:"uniqueIndex;not null" json:"custom_id"`
	Name          string    `gorm:"not null" json:"name"`
	ContactPerson string    `gorm:"not null" json:"contact_person"`
	PhoneNumber   string    `gorm:"uniqueIndex;not null" json:"phone_number"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedBy     uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// Sale represents a completed sale. Sales are write-once and are the sole
// source of truth for stock decrements and reporting.
type Sale struct {
	BaseModel
	Items              []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	TotalAmount        float64    `gorm:"not null" json:"total_amount"`
	DiscountPercentage float64    `gorm:"default:0" json:"discount_percentage"`
	DiscountAmount     float64    `gorm:"default:0" json:"discount_amount"`
	FinalAmount        float64    `gorm:"not null" json:"final_amount"`
	PaymentMethod      string     `gorm:"not null" json:"payment_method"` // cash, mpesa
	MpesaReference     string     `json:"mpesa_reference,omitempty"`
	CustomerName       string     `json:"customer_name,omitempty"`
	ProcessedBy        uuid.UUID  `gorm:"type:uuid;not null;index" json:"processed_by"`
	User               User       `gorm:"foreignKey:ProcessedBy" json:"-"`
}

// SaleItem is one line of a sale with name and price snapshotted at sale time
type SaleItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID     uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null" json:"item_id"`
	ItemName   string    `gorm:"not null" json:"item_name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	TotalPrice float64   `gorm:"not null" json:"total_price"`
}

func (s *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StockAdjustment is an append-only audit record of a manual stock change
type StockAdjustment struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ItemID         uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemCustomID   string    `gorm:"not null;index" json:"item_custom_id"`
	ItemName       string    `gorm:"not null" json:"item_name"`
	AdjustmentType string    `gorm:"not null" json:"adjustment_type"` // increase, decrease
	Quantity       int       `gorm:"not null" json:"quantity"`
	PreviousStock  int       `gorm:"not null" json:"previous_stock"`
	NewStock       int       `gorm:"not null" json:"new_stock"`
	Reason         string    `json:"reason"`
	AdjustedBy     uuid.UUID `gorm:"type:uuid;not null" json:"adjusted_by"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *StockAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CustomerFeedback captures requirements, complaints and recommendations
type CustomerFeedback struct {
	BaseModel
	CustomerName string    `json:"customer_name,omitempty"`
	FeedbackType string    `gorm:"not null" json:"feedback_type"` // requirement, complaint, recommendation
	Description  string    `gorm:"not null" json:"description"`
	Status       string    `gorm:"default:'open'" json:"status"` // open, in_progress, resolved
	RecordedBy   uuid.UUID `gorm:"type:uuid;not null" json:"recorded_by"`
}

// Expense is an append-only business expense record
type Expense struct {
	BaseModel
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    string    `gorm:"not null" json:"category"`
	RecordedBy  uuid.UUID `gorm:"type:uuid;not null" json:"recorded_by"`
}

// ActivityLog tracks user actions for audit trail
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName   string     `json:"user_name"`
	Action     string     `gorm:"not null" json:"action"` // create_feedback, adjust_stock, record_expense, etc.
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"` // JSON details
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// AlertLog records every low-stock notification attempt and its outcome
type AlertLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Type       string    `gorm:"not null" json:"type"`   // low_stock
	Items      string    `gorm:"type:text" json:"items"` // JSON snapshot of flagged items
	Recipients string    `gorm:"type:text" json:"recipients"`
	Message    string    `gorm:"type:text" json:"message"`
	Success    bool      `json:"success"`
	Result     string    `json:"result"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *AlertLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Item{},
		&ItemSupplierPrice{},
		&Supplier{},
		&Sale{},
		&SaleItem{},
		&StockAdjustment{},
		&CustomerFeedback{},
		&Expense{},
		&ActivityLog{},
		&AlertLog{},
	)
}
