package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/services"
	"github.com/kasalashiva/temple-meals/utils"
)

type SettingController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewSettingController(db *gorm.DB, billing *services.BillingService) *SettingController {
	return &SettingController{DB: db, Billing: billing}
}

// GetRates returns the rate pair currently in effect.
func (sc *SettingController) GetRates(c *gin.Context) {
	setting, err := sc.Billing.CurrentRates()
	if err != nil {
		if errors.Is(err, services.ErrRatesNotConfigured) {
			utils.RespondError(c, http.StatusNotFound, errors.New("rates not configured yet"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Current rates", gin.H{
		"morning_rate": setting.MorningRate,
		"evening_rate": setting.EveningRate,
	})
}

// CreateRates installs a new rate pair. Prior rows are superseded by recency,
// never deleted.
func (sc *SettingController) CreateRates(c *gin.Context) {
	type request struct {
		MorningRate *decimal.Decimal `json:"morning_rate" binding:"required"`
		EveningRate *decimal.Decimal `json:"evening_rate" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.MorningRate.IsNegative() || req.EveningRate.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("both morning_rate and evening_rate must be non-negative"))
		return
	}

	setting := models.RateSetting{
		MorningRate: *req.MorningRate,
		EveningRate: *req.EveningRate,
	}
	if err := sc.DB.Create(&setting).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New rates installed: morning=%s evening=%s", setting.MorningRate, setting.EveningRate)

	utils.RespondJSON(c, http.StatusCreated, "Rates saved", setting)
}
