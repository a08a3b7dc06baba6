package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealRequest is one meal-count booking for one temple-local calendar date.
// Owner display fields are denormalized at creation time and never re-derived.
type MealRequest struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ReferenceID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference_id"`

	UserID     uint   `gorm:"not null;index:idx_owner_date" json:"user_id"`
	User       User   `gorm:"foreignKey:UserID" json:"-"`
	UserName   string `gorm:"type:varchar(255);not null" json:"user_name"`
	UserPhone  string `gorm:"type:varchar(32)" json:"user_phone"`
	UserTemple string `gorm:"type:varchar(255)" json:"user_temple"`

	// Date is the temple-local day the meals apply to (YYYY-MM-DD).
	Date     string  `gorm:"type:varchar(10);not null;index:idx_owner_date" json:"date"`
	FromDate *string `gorm:"type:varchar(10)" json:"from_date,omitempty"`
	ToDate   *string `gorm:"type:varchar(10)" json:"to_date,omitempty"`

	MorningCount int    `gorm:"not null;default:0" json:"morning_count"`
	EveningCount int    `gorm:"not null;default:0" json:"evening_count"`
	Category     string `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"category"`

	// BillAmount is always computed server-side from the current rates.
	BillAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"bill_amount"`

	MealStatus    MealStatus    `gorm:"type:varchar(20);not null;default:'requested'" json:"meal_status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	ApprovalToken  string `gorm:"type:varchar(64)" json:"-"`
	RejectionToken string `gorm:"type:varchar(64)" json:"-"`
	EmailSent      bool   `gorm:"not null;default:false" json:"email_sent"`
	AdminEmail     string `gorm:"type:varchar(255)" json:"-"`

	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
	EditableUntil time.Time `gorm:"not null" json:"editable_until"`
}
