package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const historicalBookingPatternsTable = "historical_booking_patterns"

type HistoricalBookingPattern struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	OrganizationId     string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId         int             `gorm:"index;not null" json:"property_id"`
	Year               int             `gorm:"not null" json:"year"`
	Month              int             `gorm:"not null" json:"month"`
	WeekNumber         *int            `json:"week_number"`
	OccupancyRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"occupancy_rate"`
	AverageDailyRate   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"average_daily_rate"`
	AverageLeadTime    *int            `json:"average_lead_time_days"`
	AverageStayLength  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"average_stay_length"`
	TotalBookings      int             `gorm:"not null;default:0" json:"total_bookings"`
	CancellationRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"cancellation_rate"`
	DominantGuestType  *string         `gorm:"size:50" json:"dominant_guest_type"`
	DominantBookingSrc *string         `gorm:"size:50" json:"dominant_booking_source"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (HistoricalBookingPattern) TableName() string { return historicalBookingPatternsTable }

type NewHistoricalBookingPattern struct {
	PropertyId         int             `json:"property_id" binding:"required"`
	Year               int             `json:"year" binding:"required"`
	Month              int             `json:"month" binding:"required"`
	WeekNumber         *int            `json:"week_number"`
	OccupancyRate      decimal.Decimal `json:"occupancy_rate"`
	AverageDailyRate   decimal.Decimal `json:"average_daily_rate"`
	AverageLeadTime    *int            `json:"average_lead_time_days"`
	AverageStayLength  decimal.Decimal `json:"average_stay_length"`
	TotalBookings      int             `json:"total_bookings"`
	CancellationRate   decimal.Decimal `json:"cancellation_rate"`
	DominantGuestType  *string         `json:"dominant_guest_type"`
	DominantBookingSrc *string         `json:"dominant_booking_source"`
}

type HistoricalBookingPatternFilter struct {
	PropertyId *int
	Year       *int
	Month      *int
	WeekNumber *int
}

func ListHistoricalBookingPatterns(ctx context.Context, organizationId string, filter HistoricalBookingPatternFilter) ([]*HistoricalBookingPattern, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = historicalBookingPatternsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "year", filter.Year),
		utils.OptionalEq(t, "month", filter.Month),
		utils.OptionalEq(t, "week_number", filter.WeekNumber),
	)
	return listScoped[HistoricalBookingPattern](ctx, preds, utils.OrderDesc(t, "year"), utils.OrderDesc(t, "month"), utils.OrderDesc(t, "id"))
}

func CreateHistoricalBookingPattern(ctx context.Context, organizationId string, input *NewHistoricalBookingPattern) (*HistoricalBookingPattern, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, utils.NewInputError("month must be between 1 and 12")
	}
	if input.WeekNumber != nil && (*input.WeekNumber < 1 || *input.WeekNumber > 53) {
		return nil, utils.NewInputError("week number must be between 1 and 53")
	}
	if input.TotalBookings < 0 {
		return nil, utils.NewInputError("total bookings cannot be negative")
	}
	if err := validateNonNegative(input.OccupancyRate, input.AverageDailyRate, input.AverageStayLength, input.CancellationRate); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	row := HistoricalBookingPattern{
		OrganizationId:     organizationId,
		PropertyId:         input.PropertyId,
		Year:               input.Year,
		Month:              input.Month,
		WeekNumber:         input.WeekNumber,
		OccupancyRate:      input.OccupancyRate,
		AverageDailyRate:   input.AverageDailyRate,
		AverageLeadTime:    input.AverageLeadTime,
		AverageStayLength:  input.AverageStayLength,
		TotalBookings:      input.TotalBookings,
		CancellationRate:   input.CancellationRate,
		DominantGuestType:  input.DominantGuestType,
		DominantBookingSrc: input.DominantBookingSrc,
	}
	return createScoped(ctx, &row)
}
