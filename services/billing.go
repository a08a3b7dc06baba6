package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/models"
)

// ErrRatesNotConfigured is returned before the temple has installed any rates.
// It is an expected setup-time condition, not a server failure.
var ErrRatesNotConfigured = errors.New("rates not configured")

type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// CurrentRates resolves the rate pair in effect: the most recently created row.
func (s *BillingService) CurrentRates() (*models.RateSetting, error) {
	var setting models.RateSetting
	err := s.DB.Order("created_at DESC, id DESC").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRatesNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// ComputeBill prices a count combination against the rates current at this
// evaluation instant. Counts must already be validated non-negative by the
// caller; the calculator does not clamp.
func (s *BillingService) ComputeBill(morningCount, eveningCount int) (decimal.Decimal, error) {
	setting, err := s.CurrentRates()
	if err != nil {
		return decimal.Zero, err
	}

	morning := setting.MorningRate.Mul(decimal.NewFromInt(int64(morningCount)))
	evening := setting.EveningRate.Mul(decimal.NewFromInt(int64(eveningCount)))
	return morning.Add(evening), nil
}
