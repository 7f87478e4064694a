package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB installs a fresh in-memory database as the global connection.
// One open connection keeps every query on the same memory database.
func setupDB(t *testing.T) {
	t.Helper()
	t.Setenv("ALERTS_PUBSUB_TOPIC", "")

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
}

// newTenant creates an organization and a manager acting on its behalf.
func newTenant(t *testing.T, name string) (context.Context, string) {
	t.Helper()
	ctx := context.Background()
	org, err := models.CreateOrganization(ctx, &models.NewOrganization{Name: name})
	require.NoError(t, err)

	ctx = utils.SetOrganizationIdInContext(ctx, org.ID)
	user, err := models.CreateUser(ctx, org.ID, &models.NewUser{
		Username: name + "-manager",
		Name:     name + " Manager",
		Password: "password123",
		Role:     models.UserRolePortfolioManager,
	})
	require.NoError(t, err)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserNameInContext(ctx, user.Name)
	return ctx, org.ID
}

func newProperty(t *testing.T, ctx context.Context, organizationId string, name string) int {
	t.Helper()
	property, err := models.CreateProperty(ctx, organizationId, &models.NewProperty{
		Name:          name,
		Bedrooms:      2,
		PricePerNight: dec("2500"),
	})
	require.NoError(t, err)
	return property.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func daysAgo(n int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
}
