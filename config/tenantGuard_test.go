package config_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type lease struct {
	ID             int
	OrganizationId string
	Name           string
}

type country struct {
	Code string
	Name string
}

func newGuardedDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.NewGormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	conn, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	require.NoError(t, config.InstallPlugins(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn.Session(&gorm.Session{DryRun: true})
}

func TestTenantGuardAddsMissingScope(t *testing.T) {
	conn := newGuardedDB(t)
	ctx := utils.SetOrganizationIdInContext(context.Background(), "org-a")

	var rows []lease
	stmt := conn.WithContext(ctx).Where("name = ?", "x").Find(&rows).Statement
	assert.Contains(t, stmt.SQL.String(), "organization_id")
	assert.Contains(t, stmt.Vars, "org-a")
}

func TestTenantGuardKeepsExplicitScope(t *testing.T) {
	conn := newGuardedDB(t)
	ctx := utils.SetOrganizationIdInContext(context.Background(), "org-a")

	var rows []lease
	stmt := conn.WithContext(ctx).Clauses(utils.TenantScope("leases", "org-b").Where()).Find(&rows).Statement
	assert.Equal(t, []interface{}{"org-b"}, stmt.Vars)
}

func TestTenantGuardSkips(t *testing.T) {
	conn := newGuardedDB(t)
	withOrg := utils.SetOrganizationIdInContext(context.Background(), "org-a")

	tests := []struct {
		name  string
		ctx   context.Context
		model interface{}
	}{
		{"no organization in context", context.Background(), &[]lease{}},
		{"table without tenant column", withOrg, &[]country{}},
		{"explicit bypass", utils.SetSkipTenantScopeInContext(withOrg, true), &[]lease{}},
		{"admin", utils.SetIsAdminInContext(withOrg, true), &[]lease{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := conn.WithContext(tt.ctx).Find(tt.model).Statement
			assert.NotContains(t, stmt.SQL.String(), "organization_id")
		})
	}
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "")
	assert.True(t, config.AutoRefillFrequencyAlerts())
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "false")
	assert.False(t, config.AutoRefillFrequencyAlerts())
	t.Setenv("AUTO_REFILL_FREQUENCY_ALERTS", "Yes")
	assert.True(t, config.AutoRefillFrequencyAlerts())
	t.Setenv("AUTO_WATER_CONSUMPTION_ALERTS", "0")
	assert.False(t, config.AutoWaterConsumptionAlerts())

	t.Setenv("DEFAULT_COUNTRY_CODE", "")
	assert.Equal(t, "TH", config.DefaultCountryCode())
	t.Setenv("DEFAULT_COUNTRY_CODE", " vn ")
	assert.Equal(t, "VN", config.DefaultCountryCode())
}

func TestPublishAlertDisabledWithoutTopic(t *testing.T) {
	t.Setenv("ALERTS_PUBSUB_TOPIC", "")
	id, err := config.PublishAlert(context.Background(), config.AlertMessage{OrganizationId: "org-a", AlertType: "missing_bill"})
	require.NoError(t, err)
	assert.Empty(t, id)
}
