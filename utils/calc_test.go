package utils_test

import (
	"testing"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUnitCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		quantity int
		want     string
	}{
		{"delivery", "750", 5000, "0.15"},
		{"rounds to six places", "100", 3, "33.333333"},
		{"zero quantity", "750", 0, "0"},
		{"negative quantity", "750", -5, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.UnitCostInt(d(tt.cost), tt.quantity)
			assert.Truef(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestPercentHelpers(t *testing.T) {
	assert.True(t, d("150").Equal(utils.PercentOf(d("1000"), d("15"))))
	assert.True(t, d("13.33").Equal(utils.Ratio(d("2000"), d("15000"))))
	assert.True(t, decimal.Zero.Equal(utils.Ratio(d("10"), decimal.Zero)))
	assert.True(t, d("10.01").Equal(utils.RoundMoney(d("10.005"))))
	assert.True(t, d("6").Equal(utils.SumDecimals(d("1"), d("2"), d("3"))))
}

func TestDateHelpers(t *testing.T) {
	a := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 45, utils.DaysBetween(a, a.AddDate(0, 0, 45)))
	assert.Equal(t, 0, utils.DaysBetween(a, a.Add(23*time.Hour)))

	assert.Equal(t, "2026-01", utils.MonthKey(a))
}
