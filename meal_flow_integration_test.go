package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/router"
	"github.com/kasalashiva/temple-meals/services"
	"github.com/kasalashiva/temple-meals/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixedClock struct {
	now time.Time
}

func (f *fixedClock) Now() time.Time { return f.now }

type recordingMailer struct {
	adminSends int
	ownerSends int
}

func (m *recordingMailer) SendRequestToAdmin(*models.MealRequest, string, string, string) bool {
	m.adminSends++
	return true
}

func (m *recordingMailer) SendDecisionToOwner(*models.MealRequest, string, models.MealStatus) bool {
	m.ownerSends++
	return true
}

// TestMealFlow walks the whole booking lifecycle over HTTP: bootstrap an
// admin, install rates, register a devotee, book next-day meals, approve,
// pay and finalize.
func TestMealFlow(t *testing.T) {
	t.Setenv("TEMPLE_TZ", "Asia/Kolkata")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RateSetting{}, &models.MealRequest{}))

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	clock := &fixedClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, loc)}
	mailer := &recordingMailer{}
	r := router.SetupRouter(db, services.NewBookingWindow(clock), mailer)

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	data := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		d, _ := resp["data"].(map[string]interface{})
		return d
	}

	// Bootstrap the first admin; a second attempt is refused.
	w := do("POST", "/api/auth/bootstrap-admin", "", gin.H{
		"username":    "admin",
		"password":    "secret123",
		"temple_name": "Sri Venkateswara",
		"email":       "admin@temple.org",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do("POST", "/api/auth/bootstrap-admin", "", gin.H{
		"username":    "admin2",
		"password":    "secret123",
		"temple_name": "Sri Venkateswara",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do("POST", "/api/auth/login", "", gin.H{"username": "admin", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	adminToken := data(w)["token"].(string)

	// Before rates exist, reads 404 and bookings fail cleanly later.
	w = do("GET", "/api/settings", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do("POST", "/api/settings", adminToken, gin.H{"morning_rate": "10", "evening_rate": "20"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do("GET", "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", data(w)["morning_rate"])

	// Admin registers a devotee account.
	w = do("POST", "/api/users", adminToken, gin.H{
		"username":    "devotee",
		"password":    "prasadam",
		"temple_name": "Sri Venkateswara",
		"email":       "devotee@example.com",
		"phone":       "9876543210",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do("POST", "/api/auth/login", "", gin.H{"username": "devotee", "password": "prasadam"})
	require.Equal(t, http.StatusOK, w.Code)
	userToken := data(w)["token"].(string)

	w = do("GET", "/api/auth/me", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user", data(w)["role"])

	// Book for tomorrow, before the 4 PM cutoff.
	w = do("POST", "/api/meals", userToken, gin.H{"morning_count": 2, "evening_count": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := data(w)
	assert.Equal(t, "2024-03-11", booking["date"])
	assert.Equal(t, "40", booking["bill_amount"])
	assert.Equal(t, "requested", booking["meal_status"])
	mealID := int(booking["id"].(float64))
	assert.Equal(t, 1, mailer.adminSends)

	// Admin approves; the devotee is notified.
	w = do("POST", fmt.Sprintf("/api/meals/%d/admin-meal-status", mealID), adminToken, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, mailer.ownerSends)

	// Devotee marks paid, admin finalizes, and the final state is immutable
	// to the devotee.
	w = do("POST", fmt.Sprintf("/api/meals/%d/mark-paid", mealID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do("POST", fmt.Sprintf("/api/meals/%d/admin-payment-status", mealID), adminToken, gin.H{"status": "payment-approved"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do("POST", fmt.Sprintf("/api/meals/%d/mark-paid", mealID), userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The admin listing and the devotee's own view agree on the final record.
	w = do("GET", "/api/meals/admin?date=2024-03-11", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Data []models.MealRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, models.MealApproved, listResp.Data[0].MealStatus)
	assert.Equal(t, models.PaymentApproved, listResp.Data[0].PaymentStatus)

	w = do("GET", "/api/meals/mine", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Devotees cannot reach admin surfaces.
	w = do("GET", "/api/meals/admin", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do("POST", "/api/settings", userToken, gin.H{"morning_rate": "1", "evening_rate": "1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
