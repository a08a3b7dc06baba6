package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/feed"
	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/services"
	"github.com/kasalashiva/temple-meals/utils"
)

type MealController struct {
	DB      *gorm.DB
	Window  *services.BookingWindow
	Billing *services.BillingService
	Mailer  services.Mailer
}

func NewMealController(db *gorm.DB, window *services.BookingWindow, billing *services.BillingService, mailer services.Mailer) *MealController {
	return &MealController{DB: db, Window: window, Billing: billing, Mailer: mailer}
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func baseURL() string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:4000"
	}
	return base
}

// CreateMealRequest books meals for the next temple-local day, or for an
// explicit date range. The single-day path is gated by the 4 PM cutoff;
// explicit ranges are not (deliberate, matches the booking rules).
func (mc *MealController) CreateMealRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := mc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user not found"))
		return
	}

	type request struct {
		MorningCount int    `json:"morning_count"`
		EveningCount int    `json:"evening_count"`
		UserPhone    string `json:"user_phone"`
		Category     string `json:"category"`
		FromDate     string `json:"from_date"`
		ToDate       string `json:"to_date"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.MorningCount < 0 || req.EveningCount < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("counts must be non-negative"))
		return
	}

	category := req.Category
	if category == "" {
		category = models.CategoryIndividual
	}
	if !models.ValidCategory(category) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("category must be INDIVIDUAL or COMMUNITY"))
		return
	}

	// Resolve target dates.
	var bookingDates []string
	var fromDate, toDate *string
	if req.FromDate != "" && req.ToDate != "" {
		dates, err := mc.Window.ExpandRange(req.FromDate, req.ToDate)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		if len(dates) == 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("from_date must not be after to_date"))
			return
		}
		bookingDates = dates
		fromDate, toDate = &req.FromDate, &req.ToDate
	} else {
		if mc.Window.PastDailyCutoff() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("4 PM cutoff passed, cannot create next-day request"))
			return
		}
		bookingDates = []string{mc.Window.NextLocalDate()}
	}

	billAmount, err := mc.Billing.ComputeBill(req.MorningCount, req.EveningCount)
	if err != nil {
		if errors.Is(err, services.ErrRatesNotConfigured) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// First-registered admin with an email receives the approval request.
	var admin models.User
	adminEmail := ""
	if err := mc.DB.Where("role = ? AND email IS NOT NULL", "admin").Order("id asc").First(&admin).Error; err == nil && admin.Email != nil {
		adminEmail = *admin.Email
	}

	userPhone := req.UserPhone
	if userPhone == "" {
		userPhone = user.Phone
	}

	// One independent record per date; dates the owner already booked are
	// skipped silently. Range creation is not atomic across its date set.
	var created []models.MealRequest
	for _, date := range bookingDates {
		var existing models.MealRequest
		err := mc.DB.Where("user_id = ? AND date = ?", userID, date).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		approvalToken, err := utils.GenerateActionToken()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		rejectionToken, err := utils.GenerateActionToken()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		createdAt := mc.Window.NowUTC()
		doc := models.MealRequest{
			ReferenceID:    uuid.NewString(),
			UserID:         user.ID,
			UserName:       user.Username,
			UserPhone:      userPhone,
			UserTemple:     user.TempleName,
			Date:           date,
			FromDate:       fromDate,
			ToDate:         toDate,
			MorningCount:   req.MorningCount,
			EveningCount:   req.EveningCount,
			Category:       category,
			BillAmount:     billAmount,
			MealStatus:     models.MealRequested,
			PaymentStatus:  models.PaymentPending,
			ApprovalToken:  approvalToken,
			RejectionToken: rejectionToken,
			AdminEmail:     adminEmail,
			CreatedAt:      createdAt,
			EditableUntil:  mc.Window.EditableUntil(createdAt),
		}

		if err := mc.DB.Create(&doc).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		// Record is committed; notification is a separate best-effort phase.
		if adminEmail != "" {
			approveLink := fmt.Sprintf("%s/api/meals/%d/approve?token=%s", baseURL(), doc.ID, approvalToken)
			rejectLink := fmt.Sprintf("%s/api/meals/%d/reject?token=%s", baseURL(), doc.ID, rejectionToken)
			if mc.Mailer.SendRequestToAdmin(&doc, adminEmail, approveLink, rejectLink) {
				mc.DB.Model(&doc).Update("email_sent", true)
				doc.EmailSent = true
			}
		}

		feed.BroadcastRequestCreated(doc)
		created = append(created, doc)
	}

	if len(created) == 1 {
		utils.RespondJSON(c, http.StatusCreated, "Meal request created", created[0])
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Meal requests created", created)
}

// GetMyRequests lists the caller's requests, newest first, each decorated
// with whether self-editing is still allowed.
func (mc *MealController) GetMyRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	query := mc.DB.Where("user_id = ?", userID)
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var items []models.MealRequest
	if err := query.Order("date desc, created_at desc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type mealWithEdit struct {
		models.MealRequest
		EditingAllowed bool `json:"editing_allowed"`
	}
	out := make([]mealWithEdit, 0, len(items))
	for i := range items {
		out = append(out, mealWithEdit{
			MealRequest:    items[i],
			EditingAllowed: mc.Window.Editable(&items[i]),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "My meal requests", out)
}

// AdminListRequests lists all requests with optional date and user filters.
func (mc *MealController) AdminListRequests(c *gin.Context) {
	query := mc.DB.Model(&models.MealRequest{})
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var items []models.MealRequest
	if err := query.Order("date desc, created_at desc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All meal requests", items)
}

// UpdateMealRequest lets the owner change counts while the edit window is
// open. The bill is recomputed from the rates current now, not the rates at
// creation time. Status, tokens and timestamps stay untouched.
func (mc *MealController) UpdateMealRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var meal models.MealRequest
	if err := mc.DB.First(&meal, c.Param("meal_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("meal request not found"))
		return
	}
	if meal.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	if !mc.Window.Editable(&meal) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("editing window expired or request not in requested state"))
		return
	}

	type request struct {
		MorningCount *int `json:"morning_count"`
		EveningCount *int `json:"evening_count"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	morning := meal.MorningCount
	evening := meal.EveningCount
	if req.MorningCount != nil {
		morning = *req.MorningCount
	}
	if req.EveningCount != nil {
		evening = *req.EveningCount
	}
	if morning < 0 || evening < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("counts must be non-negative"))
		return
	}

	billAmount, err := mc.Billing.ComputeBill(morning, evening)
	if err != nil {
		if errors.Is(err, services.ErrRatesNotConfigured) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	updates := map[string]interface{}{
		"morning_count": morning,
		"evening_count": evening,
		"bill_amount":   billAmount,
	}
	if err := mc.DB.Model(&meal).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Meal request updated", meal)
}

// MarkPaid lets the owner flag payment as done, unless an administrator has
// already finalized it.
func (mc *MealController) MarkPaid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var meal models.MealRequest
	if err := mc.DB.First(&meal, c.Param("meal_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("meal request not found"))
		return
	}
	if meal.UserID != userID {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	if meal.PaymentStatus == models.PaymentApproved {
		utils.RespondError(c, http.StatusConflict, errors.New("payment already approved"))
		return
	}

	meal.PaymentStatus = models.PaymentPaid
	if err := mc.DB.Save(&meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastPaymentStatus(meal)

	utils.RespondJSON(c, http.StatusOK, "Payment marked", meal)
}

// AdminSetMealStatus lets an administrator set any approval status, including
// re-opening a decided request. Decisions trigger a best-effort owner email
// after the record is committed.
func (mc *MealController) AdminSetMealStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	status, err := models.ParseMealStatus(req.Status)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var meal models.MealRequest
	if err := mc.DB.First(&meal, c.Param("meal_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("meal request not found"))
		return
	}

	meal.MealStatus = status
	if err := mc.DB.Save(&meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if status == models.MealApproved || status == models.MealRejected {
		mc.notifyOwnerDecision(&meal, status)
	}
	feed.BroadcastMealStatus(meal)

	utils.RespondJSON(c, http.StatusOK, "Meal status updated", meal)
}

// AdminSetPaymentStatus lets an administrator set any payment status directly.
func (mc *MealController) AdminSetPaymentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	status, err := models.ParsePaymentStatus(req.Status)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var meal models.MealRequest
	if err := mc.DB.First(&meal, c.Param("meal_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("meal request not found"))
		return
	}

	meal.PaymentStatus = status
	if err := mc.DB.Save(&meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	feed.BroadcastPaymentStatus(meal)

	utils.RespondJSON(c, http.StatusOK, "Payment status updated", meal)
}

// ApproveByToken approves a request via the emailed link. Only the approval
// token for this record works here.
func (mc *MealController) ApproveByToken(c *gin.Context) {
	mc.decideByToken(c, models.MealApproved)
}

// RejectByToken rejects a request via the emailed link.
func (mc *MealController) RejectByToken(c *gin.Context) {
	mc.decideByToken(c, models.MealRejected)
}

func (mc *MealController) decideByToken(c *gin.Context, status models.MealStatus) {
	token := c.Query("token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing token"))
		return
	}

	var meal models.MealRequest
	if err := mc.DB.First(&meal, c.Param("meal_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("meal request not found"))
		return
	}

	// Each token is single-purpose: the approval token never rejects and
	// vice versa.
	expected := meal.ApprovalToken
	if status == models.MealRejected {
		expected = meal.RejectionToken
	}
	if expected == "" || token != expected {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid or expired token"))
		return
	}

	meal.MealStatus = status
	if err := mc.DB.Save(&meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.notifyOwnerDecision(&meal, status)
	feed.BroadcastMealStatus(meal)

	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Request %s successfully", status), meal)
}

// notifyOwnerDecision emails the owner after a decision has been committed.
// Delivery failure is logged and otherwise ignored.
func (mc *MealController) notifyOwnerDecision(meal *models.MealRequest, status models.MealStatus) {
	var owner models.User
	if err := mc.DB.First(&owner, meal.UserID).Error; err != nil || owner.Email == nil {
		return
	}
	if !mc.Mailer.SendDecisionToOwner(meal, *owner.Email, status) {
		utils.ErrorLogger.Printf("Decision email for request %d to %s not delivered", meal.ID, *owner.Email)
	}
}

// AdminSummary aggregates counts and bill amounts per date, plus the total
// collected over finalized payments.
func (mc *MealController) AdminSummary(c *gin.Context) {
	type dailyRow struct {
		Date         string  `json:"date"`
		TotalMorning int     `json:"total_morning"`
		TotalEvening int     `json:"total_evening"`
		TotalAmount  float64 `json:"total_amount"`
	}

	daily := []dailyRow{}
	query := mc.DB.Model(&models.MealRequest{}).
		Select("date, SUM(morning_count) as total_morning, SUM(evening_count) as total_evening, SUM(bill_amount) as total_amount").
		Group("date").
		Order("date asc")
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if err := query.Scan(&daily).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var totalCollected float64
	collected := mc.DB.Model(&models.MealRequest{}).
		Select("COALESCE(SUM(bill_amount), 0)").
		Where("payment_status = ?", models.PaymentApproved)
	if date := c.Query("date"); date != "" {
		collected = collected.Where("date = ?", date)
	}
	if err := collected.Scan(&totalCollected).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Summary", gin.H{
		"daily":           daily,
		"total_collected": totalCollected,
	})
}

// AdminReport returns all requests for one date.
func (mc *MealController) AdminReport(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date (YYYY-MM-DD) is required"))
		return
	}

	var items []models.MealRequest
	if err := mc.DB.Where("date = ?", date).Order("created_at asc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Daily report", gin.H{
		"date":  date,
		"items": items,
	})
}
