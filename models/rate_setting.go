package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSetting holds one per-slot price pair. Rows are never updated in place:
// a new row supersedes older ones, and the most recently created row is the
// one in effect.
type RateSetting struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MorningRate decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"morning_rate"`
	EveningRate decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"evening_rate"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}
