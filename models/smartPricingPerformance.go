package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const yearOnYearPerformanceTable = "year_on_year_performance"

type YearOnYearPerformance struct {
	ID                int             `gorm:"primary_key" json:"id"`
	OrganizationId    string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId        int             `gorm:"index;not null" json:"property_id"`
	Year              int             `gorm:"not null" json:"year"`
	Month             int             `gorm:"not null" json:"month"`
	Revenue           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"revenue"`
	PreviousRevenue   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"previous_revenue"`
	OccupancyRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"occupancy_rate"`
	PreviousOccupancy decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"previous_occupancy"`
	AverageDailyRate  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"average_daily_rate"`
	PreviousDailyRate decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"previous_daily_rate"`
	BookedNights      int             `gorm:"not null;default:0" json:"booked_nights"`
	RevenueGrowthRate decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"revenue_growth_rate"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (YearOnYearPerformance) TableName() string { return yearOnYearPerformanceTable }

type NewYearOnYearPerformance struct {
	PropertyId        int             `json:"property_id" binding:"required"`
	Year              int             `json:"year" binding:"required"`
	Month             int             `json:"month" binding:"required"`
	Revenue           decimal.Decimal `json:"revenue"`
	PreviousRevenue   decimal.Decimal `json:"previous_revenue"`
	OccupancyRate     decimal.Decimal `json:"occupancy_rate"`
	PreviousOccupancy decimal.Decimal `json:"previous_occupancy"`
	AverageDailyRate  decimal.Decimal `json:"average_daily_rate"`
	PreviousDailyRate decimal.Decimal `json:"previous_daily_rate"`
	BookedNights      int             `json:"booked_nights"`
	Notes             *string         `json:"notes"`
}

type YearOnYearPerformanceUpdate struct {
	Revenue           *decimal.Decimal `json:"revenue"`
	PreviousRevenue   *decimal.Decimal `json:"previous_revenue"`
	OccupancyRate     *decimal.Decimal `json:"occupancy_rate"`
	PreviousOccupancy *decimal.Decimal `json:"previous_occupancy"`
	AverageDailyRate  *decimal.Decimal `json:"average_daily_rate"`
	PreviousDailyRate *decimal.Decimal `json:"previous_daily_rate"`
	BookedNights      *int             `json:"booked_nights"`
	Notes             *string          `json:"notes"`
}

type YearOnYearPerformanceFilter struct {
	PropertyId *int
	Year       *int
	Month      *int
}

// growthRate is the percentage change from previous to current, zero without a baseline.
func growthRate(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return utils.Ratio(current.Sub(previous), previous)
}

func ListYearOnYearPerformance(ctx context.Context, organizationId string, filter YearOnYearPerformanceFilter) ([]*YearOnYearPerformance, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = yearOnYearPerformanceTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "year", filter.Year),
		utils.OptionalEq(t, "month", filter.Month),
	)
	return listScoped[YearOnYearPerformance](ctx, preds, utils.OrderDesc(t, "year"), utils.OrderDesc(t, "month"), utils.OrderDesc(t, "id"))
}

func CreateYearOnYearPerformance(ctx context.Context, organizationId string, input *NewYearOnYearPerformance) (*YearOnYearPerformance, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, utils.NewInputError("month must be between 1 and 12")
	}
	if input.Year < 2000 {
		return nil, utils.NewInputError("invalid year")
	}
	if err := validateNonNegative(input.Revenue, input.PreviousRevenue, input.AverageDailyRate, input.PreviousDailyRate); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	row := YearOnYearPerformance{
		OrganizationId:    organizationId,
		PropertyId:        input.PropertyId,
		Year:              input.Year,
		Month:             input.Month,
		Revenue:           input.Revenue,
		PreviousRevenue:   input.PreviousRevenue,
		OccupancyRate:     input.OccupancyRate,
		PreviousOccupancy: input.PreviousOccupancy,
		AverageDailyRate:  input.AverageDailyRate,
		PreviousDailyRate: input.PreviousDailyRate,
		BookedNights:      input.BookedNights,
		RevenueGrowthRate: growthRate(input.Revenue, input.PreviousRevenue),
		Notes:             input.Notes,
	}
	return createScoped(ctx, &row)
}

func UpdateYearOnYearPerformance(ctx context.Context, organizationId string, id int, input *YearOnYearPerformanceUpdate) (*YearOnYearPerformance, error) {
	existing, err := utils.FetchModel[YearOnYearPerformance](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.OccupancyRate != nil {
		updates["occupancy_rate"] = *input.OccupancyRate
	}
	if input.PreviousOccupancy != nil {
		updates["previous_occupancy"] = *input.PreviousOccupancy
	}
	if input.AverageDailyRate != nil {
		updates["average_daily_rate"] = *input.AverageDailyRate
	}
	if input.PreviousDailyRate != nil {
		updates["previous_daily_rate"] = *input.PreviousDailyRate
	}
	if input.BookedNights != nil {
		updates["booked_nights"] = *input.BookedNights
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Revenue != nil || input.PreviousRevenue != nil {
		revenue := utils.DereferencePtr(input.Revenue, existing.Revenue)
		previous := utils.DereferencePtr(input.PreviousRevenue, existing.PreviousRevenue)
		if err := validateNonNegative(revenue, previous); err != nil {
			return nil, err
		}
		updates["revenue"] = revenue
		updates["previous_revenue"] = previous
		updates["revenue_growth_rate"] = growthRate(revenue, previous)
	}
	if err := utils.UpdateScoped[YearOnYearPerformance](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[YearOnYearPerformance](ctx, organizationId, id)
}
