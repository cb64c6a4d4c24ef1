package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/config"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// envelope mirrors response.Response with the data kept raw so each test can
// decode it into the shape it expects.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "dev",
		Port:    "3000",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
	}
	config.AppConfig = cfg

	app := fiber.New()
	Setup(app, db, cfg)
	return app, db, cfg
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	env := &envelope{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(env))
	resp.Body.Close()
	return resp, env
}

// decodeField pulls one key out of an object-shaped data payload.
func decodeField(t *testing.T, env *envelope, key string, out interface{}) {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &data))
	raw, ok := data[key]
	require.True(t, ok, "missing %q in response data", key)
	require.NoError(t, json.Unmarshal(raw, out))
}

func registerDonor(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, env := doRequest(t, app, fiber.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name":     "Test Donor",
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var token string
	decodeField(t, env, "access_token", &token)
	require.NotEmpty(t, token)
	return token
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(1, "admin@healthpal.app", "Platform Admin", "ADMIN",
		cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return token
}

func seedPatientRow(t *testing.T, db *gorm.DB) *models.Patient {
	t.Helper()
	patient := &models.Patient{Name: "Test Patient", Age: 34, Email: "patient1@example.com"}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func seedCaseRow(t *testing.T, db *gorm.DB, patientID uint, status domain.CaseStatus, totalCost decimal.Decimal) *models.TreatmentCase {
	t.Helper()
	tc := &models.TreatmentCase{
		PatientID:     patientID,
		Title:         "Knee surgery",
		Description:   "Reconstructive knee surgery",
		TreatmentType: domain.TreatmentSurgery,
		TotalCost:     totalCost,
		AmountRaised:  decimal.Zero,
		AmountNeeded:  totalCost,
		Status:        status,
		UrgencyLevel:  domain.UrgencyHigh,
		IsVerified:    status == domain.CaseStatusActive,
	}
	require.NoError(t, db.Create(tc).Error)
	return tc
}

func TestAuthFlow(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerDonor(t, app, "alice@example.com")

	// duplicate email is rejected
	resp, env := doRequest(t, app, fiber.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.False(t, env.Success)

	resp, env = doRequest(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var token string
	decodeField(t, env, "access_token", &token)

	refreshCookie := findCookie(t, resp, "refresh_token")
	require.NotEmpty(t, refreshCookie.Value)

	resp, env = doRequest(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env = doRequest(t, app, fiber.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var donor models.DonorResponse
	decodeField(t, env, "donor", &donor)
	require.Equal(t, "alice@example.com", donor.Email)
	require.Equal(t, "DONOR", donor.Role)

	resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshTokenRotationAndLogout(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name":     "Test Donor",
		"email":    "bob@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	refreshCookie := findCookie(t, resp, "refresh_token")

	// refresh rotates the token
	resp, env := doCookieRequest(t, app, fiber.MethodPost, "/api/v1/auth/refresh", refreshCookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	rotated := findCookie(t, resp, "refresh_token")
	require.NotEqual(t, refreshCookie.Value, rotated.Value)

	// the old token was revoked by the rotation
	resp, _ = doCookieRequest(t, app, fiber.MethodPost, "/api/v1/auth/refresh", refreshCookie)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// logout revokes the current token
	resp, _ = doCookieRequest(t, app, fiber.MethodPost, "/api/v1/auth/logout", rotated)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doCookieRequest(t, app, fiber.MethodPost, "/api/v1/auth/refresh", rotated)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDonationEndpointContract(t *testing.T) {
	app, db, _ := newTestApp(t)
	token := registerDonor(t, app, "alice@example.com")

	patient := seedPatientRow(t, db)
	tc := seedCaseRow(t, db, patient.ID, domain.CaseStatusActive, decimal.NewFromInt(1000))

	// unauthenticated recording is rejected
	resp, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/donations", "", fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "250",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, env := doRequest(t, app, fiber.MethodPost, "/api/v1/donations", token, fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "250",
		"transaction_id":    "stripe_tx_001",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "Donation recorded successfully", env.Message)

	var amount, remaining decimal.Decimal
	var status string
	decodeField(t, env, "amount_donated", &amount)
	decodeField(t, env, "remaining_needed", &remaining)
	decodeField(t, env, "case_status", &status)
	require.True(t, decimal.NewFromInt(250).Equal(amount))
	require.True(t, decimal.NewFromInt(750).Equal(remaining))
	require.Equal(t, "active", status)

	// replaying the same transaction id does not re-credit the case
	resp, env = doRequest(t, app, fiber.MethodPost, "/api/v1/donations", token, fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "250",
		"transaction_id":    "stripe_tx_001",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Donation already recorded", env.Message)
	decodeField(t, env, "remaining_needed", &remaining)
	require.True(t, decimal.NewFromInt(750).Equal(remaining))

	resp, _ = doRequest(t, app, fiber.MethodPost, "/api/v1/donations", token, fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "-5",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodPost, "/api/v1/donations", token, fiber.Map{
		"treatment_case_id": 999,
		"amount":            "10",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// the case feed is public
	resp, env = doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/donations/case/%d", tc.ID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var count int
	decodeField(t, env, "count", &count)
	require.Equal(t, 1, count)

	resp, env = doRequest(t, app, fiber.MethodGet, "/api/v1/donations/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeField(t, env, "count", &count)
	require.Equal(t, 1, count)

	// an anonymous donation is masked for visitors, but its own donor
	// sees it unmasked when sending a token
	resp, _ = doRequest(t, app, fiber.MethodPost, "/api/v1/donations", token, fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "40",
		"is_anonymous":      true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var feed []models.DonationResponse
	resp, env = doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/donations/case/%d", tc.ID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeField(t, env, "donations", &feed)
	require.Len(t, feed, 2)
	require.Equal(t, models.AnonymousDonorName, feed[0].DonorName)

	resp, env = doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/donations/case/%d", tc.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeField(t, env, "donations", &feed)
	require.Equal(t, "Test Donor", feed[0].DonorName)
}

func TestCaseLifecycleContract(t *testing.T) {
	app, db, cfg := newTestApp(t)
	donorTok := registerDonor(t, app, "alice@example.com")
	adminTok := adminToken(t, cfg)

	patient := seedPatientRow(t, db)

	resp, env := doRequest(t, app, fiber.MethodPost, "/api/v1/cases", donorTok, fiber.Map{
		"patient_id":     patient.ID,
		"title":          "Heart surgery",
		"description":    "Open heart surgery for a child",
		"treatment_type": "surgery",
		"total_cost":     "12000",
		"urgency_level":  "critical",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.CaseResponse
	decodeField(t, env, "case", &created)
	require.Equal(t, domain.CaseStatusPending, created.Status)
	require.False(t, created.IsVerified)

	// pending review is admin-only
	resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/cases/pending", donorTok, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env = doRequest(t, app, fiber.MethodGet, "/api/v1/cases/pending", adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var count int
	decodeField(t, env, "count", &count)
	require.Equal(t, 1, count)

	resp, env = doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/cases/%d/verify", created.ID), adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var verified models.CaseResponse
	decodeField(t, env, "case", &verified)
	require.Equal(t, domain.CaseStatusActive, verified.Status)
	require.True(t, verified.IsVerified)

	resp, _ = doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/cases/%d/verify", created.ID), adminTok, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// the verified case shows up in the public listing
	resp, env = doRequest(t, app, fiber.MethodGet, "/api/v1/cases", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listing struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Equal(t, int64(1), listing.Meta.Total)

	resp, env = doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/cases/%d/cancel", created.ID), adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cancelled models.CaseResponse
	decodeField(t, env, "case", &cancelled)
	require.Equal(t, domain.CaseStatusCancelled, cancelled.Status)

	// no donations after cancellation
	resp, _ = doRequest(t, app, fiber.MethodPost, "/api/v1/donations", donorTok, fiber.Map{
		"treatment_case_id": created.ID,
		"amount":            "50",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTransparencyContract(t *testing.T) {
	app, db, cfg := newTestApp(t)
	donorTok := registerDonor(t, app, "alice@example.com")
	adminTok := adminToken(t, cfg)

	patient := seedPatientRow(t, db)
	tc := seedCaseRow(t, db, patient.ID, domain.CaseStatusActive, decimal.NewFromInt(1000))

	resp, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/donations", donorTok, fiber.Map{
		"treatment_case_id": tc.ID,
		"amount":            "400",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/transparency/case/%d/invoices", tc.ID), donorTok, fiber.Map{
		"amount":       "150",
		"description":  "Lab tests",
		"invoice_type": "tests",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, env := doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/transparency/case/%d", tc.ID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))

	var dashboard services.CaseDashboard
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	require.True(t, decimal.NewFromInt(400).Equal(dashboard.CaseInfo.AmountRaised))
	require.True(t, decimal.NewFromInt(40).Equal(dashboard.CaseInfo.ProgressPercent))
	require.True(t, decimal.NewFromInt(150).Equal(dashboard.Financial.TotalInvoiced))
	require.True(t, decimal.NewFromInt(250).Equal(dashboard.Financial.Balance))
	require.Equal(t, patient.Name, dashboard.PatientInfo.Name)

	resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/transparency/case/999", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// recovery updates are admin-only
	resp, _ = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/transparency/case/%d/updates", tc.ID), donorTok, fiber.Map{
		"update": "Admitted for surgery",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/transparency/case/%d/updates", tc.ID), adminTok, fiber.Map{
		"update": "Admitted for surgery",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/transparency/case/%d/feedback", tc.ID), donorTok, fiber.Map{
		"rating": 7,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/v1/transparency/case/%d/feedback", tc.ID), donorTok, fiber.Map{
		"rating":  5,
		"comment": "Care was excellent",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	app, db, cfg := newTestApp(t)
	donorTok := registerDonor(t, app, "alice@example.com")
	adminTok := adminToken(t, cfg)

	patient := seedPatientRow(t, db)
	seedCaseRow(t, db, patient.ID, domain.CaseStatusActive, decimal.NewFromInt(1000))

	resp, _ := doRequest(t, app, fiber.MethodGet, "/api/v1/admin/statistics", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/admin/statistics", donorTok, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := doRequest(t, app, fiber.MethodGet, "/api/v1/admin/statistics", adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	resp, env = doRequest(t, app, fiber.MethodPost, "/api/v1/admin/reconcile", adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set on response", name)
	return nil
}

func doCookieRequest(t *testing.T, app *fiber.App, method, path string, cookie *http.Cookie) (*http.Response, *envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	env := &envelope{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(env))
	resp.Body.Close()
	return resp, env
}
