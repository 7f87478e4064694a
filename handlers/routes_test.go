package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/handlers"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("ALERTS_PUBSUB_TOPIC", "")
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "false")
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "false")

	cfg := config.NewGormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	conn, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.InstallPlugins(conn))
	require.NoError(t, models.AutoMigrate(conn))

	previous := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() {
		config.SetDB(previous)
		_ = sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers.RegisterRoutes(r)
	return &testServer{t: t, router: r}
}

// token signs a bearer token for a fresh organization.
func (s *testServer) token(role models.UserRole) (string, string) {
	s.t.Helper()
	org, err := models.CreateOrganization(context.Background(), &models.NewOrganization{Name: "Sunset " + string(role)})
	require.NoError(s.t, err)
	return s.tokenFor(org.ID, role), org.ID
}

func (s *testServer) tokenFor(organizationId string, role models.UserRole) string {
	s.t.Helper()
	token, err := utils.JwtGenerate(7, organizationId, "Ann", string(role))
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createProperty(token string, name string) int {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/properties", token, map[string]interface{}{"name": name, "price_per_night": 2500})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return int(decode(s.t, w)["id"].(float64))
}

func TestRoutesRequireBearerToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/properties", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/properties", "not-a-jwt", nil).Code)
}

func TestPropertiesAreTenantScoped(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.token(models.UserRolePortfolioManager)
	otherToken, _ := s.token(models.UserRolePortfolioManager)

	id := s.createProperty(token, "Villa Mango")

	w := s.do(http.MethodGet, fmt.Sprintf("/api/properties/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Villa Mango", decode(t, w)["name"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/properties/%d", id), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/properties", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestDeliveryLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	managerToken, org := s.token(models.UserRolePortfolioManager)
	staffToken := s.tokenFor(org, models.UserRoleStaff)
	propertyId := s.createProperty(managerToken, "Villa Mango")

	w := s.do(http.MethodPost, "/api/water-utility/deliveries", staffToken, map[string]interface{}{
		"property_id":   propertyId,
		"supplier_name": "Blue Truck Co",
		"delivery_date": time.Now().UTC().Format(time.RFC3339),
		"volume_liters": 5000,
		"cost":          "750",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	delivery := decode(t, w)
	assert.Equal(t, "0.15", delivery["cost_per_liter"])
	id := int(delivery["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/water-utility/deliveries/%d/complete", id), staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/water-utility/deliveries/%d/complete", id), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/water-utility/deliveries?property_id=%d&start_date=2000-01-01", propertyId), staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Villa Mango", rows[0]["property_name"])
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.token(models.UserRolePortfolioManager)

	w := s.do(http.MethodGet, "/api/water-utility/deliveries?start_date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/water-utility/deliveries/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/water-utility/deliveries/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/water-utility/deliveries", token, map[string]interface{}{"volume_liters": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "errors")

	w = s.do(http.MethodPost, "/api/water-utility/deliveries", token, map[string]interface{}{
		"supplier_name": "Blue Truck Co",
		"delivery_date": time.Now().UTC().Format(time.RFC3339),
		"cost":          "-5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func TestManagerOnlyTransitions(t *testing.T) {
	s := newTestServer(t)
	managerToken, org := s.token(models.UserRoleAdmin)
	ownerToken := s.tokenFor(org, models.UserRoleOwner)
	propertyId := s.createProperty(managerToken, "Villa Mango")

	w := s.do(http.MethodPost, "/api/owner-targets/upgrades", ownerToken, map[string]interface{}{
		"property_id":  propertyId,
		"upgrade_name": "Pool heater",
		"priority":     "high",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/owner-targets/upgrades/%d/approve", id), ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/owner-targets/upgrades/%d/approve", id), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode(t, w)["status"])
	assert.EqualValues(t, 7, decode(t, w)["approved_by"])
}

func TestAiNotificationsFollowCallerRole(t *testing.T) {
	s := newTestServer(t)
	managerToken, org := s.token(models.UserRolePortfolioManager)
	ownerToken := s.tokenFor(org, models.UserRoleOwner)
	staffToken := s.tokenFor(org, models.UserRoleStaff)

	w := s.do(http.MethodPost, "/api/ai-notifications", managerToken, map[string]interface{}{
		"alert_type":       "owner_statement",
		"title":            "Statement ready",
		"visible_to_roles": []string{"owner"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int(decode(t, w)["id"].(float64))

	w = s.do(http.MethodGet, "/api/ai-notifications", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(http.MethodGet, "/api/ai-notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/ai-notifications/%d", id), ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/ai-notifications/%d/resolve", id), ownerToken, map[string]interface{}{"notes": "read it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "resolved", decode(t, w)["status"])
	assert.EqualValues(t, 7, decode(t, w)["action_taken_by"])
}

func TestUtilityBillOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.token(models.UserRolePortfolioManager)
	propertyId := s.createProperty(token, "Villa Mango")

	w := s.do(http.MethodPost, "/api/utilities", token, map[string]interface{}{
		"property_id":   propertyId,
		"utility_type":  "electricity",
		"provider_name": "PEA",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	utilityId := int(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/utilities/bills", token, map[string]interface{}{
		"utility_id":           utilityId,
		"billing_period_start": time.Now().UTC().AddDate(0, 0, -10).Format(time.RFC3339),
		"amount":               "1450.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bill := decode(t, w)
	assert.EqualValues(t, propertyId, bill["property_id"])

	w = s.do(http.MethodPost, fmt.Sprintf("/api/utilities/bills/%d/pay", int(bill["id"].(float64))), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["is_paid"])

	w = s.do(http.MethodGet, "/api/utilities/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dashboard := decode(t, w)
	assert.EqualValues(t, 1, dashboard["totalUtilities"])
	assert.EqualValues(t, 0, dashboard["unpaidBills"])

	w = s.do(http.MethodGet, "/api/utilities/bills?is_paid=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
