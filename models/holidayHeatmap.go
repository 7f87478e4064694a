package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const holidayHeatmapTable = "holiday_heatmap"

// HolidayHeatmapDay is one calendar cell. ColorCode follows DemandLevel unless
// set explicitly.
type HolidayHeatmapDay struct {
	ID              int              `gorm:"primary_key" json:"id"`
	OrganizationId  string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      *int             `gorm:"index" json:"property_id"`
	Date            time.Time        `gorm:"type:date;not null" json:"date"`
	DemandLevel     DemandLevel      `gorm:"size:20;not null" json:"demand_level"`
	ColorCode       string           `gorm:"size:20;not null" json:"color_code"`
	HolidayEventId  *int             `gorm:"index" json:"holiday_event_id"`
	PriceMultiplier *decimal.Decimal `gorm:"type:decimal(4,2)" json:"price_multiplier"`
	SuggestedRate   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"suggested_rate"`
	Notes           *string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HolidayHeatmapDay) TableName() string { return holidayHeatmapTable }

type NewHolidayHeatmapDay struct {
	PropertyId      *int             `json:"property_id"`
	Date            time.Time        `json:"date" binding:"required"`
	DemandLevel     DemandLevel      `json:"demand_level" binding:"required"`
	ColorCode       string           `json:"color_code"`
	HolidayEventId  *int             `json:"holiday_event_id"`
	PriceMultiplier *decimal.Decimal `json:"price_multiplier"`
	SuggestedRate   *decimal.Decimal `json:"suggested_rate"`
	Notes           *string          `json:"notes"`
}

type HolidayHeatmapDayUpdate struct {
	DemandLevel     *DemandLevel     `json:"demand_level"`
	ColorCode       *string          `json:"color_code"`
	PriceMultiplier *decimal.Decimal `json:"price_multiplier"`
	SuggestedRate   *decimal.Decimal `json:"suggested_rate"`
	Notes           *string          `json:"notes"`
}

type HolidayHeatmapFilter struct {
	PropertyId  *int
	StartDate   *time.Time
	EndDate     *time.Time
	DemandLevel *DemandLevel
	ColorCode   *string
}

func ListHolidayHeatmap(ctx context.Context, organizationId string, filter HolidayHeatmapFilter) ([]*HolidayHeatmapDay, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = holidayHeatmapTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalGte(t, "date", filter.StartDate),
		utils.OptionalLte(t, "date", filter.EndDate),
		utils.OptionalEq(t, "demand_level", filter.DemandLevel),
		utils.OptionalEq(t, "color_code", filter.ColorCode),
	)
	return listScoped[HolidayHeatmapDay](ctx, preds, utils.OrderAsc(t, "date"), utils.OrderAsc(t, "id"))
}

func validateMultiplier(m *decimal.Decimal) error {
	if m != nil && !m.IsPositive() {
		return utils.NewInputError("price multiplier must be positive")
	}
	return nil
}

func CreateHolidayHeatmapDay(ctx context.Context, organizationId string, input *NewHolidayHeatmapDay) (*HolidayHeatmapDay, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, utils.NewInputError("date is required")
	}
	if !input.DemandLevel.IsValid() {
		return nil, errInvalidDemandLevel
	}
	if err := validateMultiplier(input.PriceMultiplier); err != nil {
		return nil, err
	}
	if input.SuggestedRate != nil {
		if err := validateNonNegative(*input.SuggestedRate); err != nil {
			return nil, err
		}
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateRef[HolidayEvent](ctx, organizationId, input.HolidayEventId, "holiday event"); err != nil {
		return nil, err
	}
	color := input.ColorCode
	if color == "" {
		color = input.DemandLevel.ColorCode()
	}
	day := HolidayHeatmapDay{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		Date:            dateOnly(input.Date),
		DemandLevel:     input.DemandLevel,
		ColorCode:       color,
		HolidayEventId:  input.HolidayEventId,
		PriceMultiplier: input.PriceMultiplier,
		SuggestedRate:   input.SuggestedRate,
		Notes:           input.Notes,
	}
	return createScoped(ctx, &day)
}

// UpdateHolidayHeatmapDay re-derives the color from a new demand level unless
// a color is given alongside it.
func UpdateHolidayHeatmapDay(ctx context.Context, organizationId string, id int, input *HolidayHeatmapDayUpdate) (*HolidayHeatmapDay, error) {
	if _, err := utils.FetchModel[HolidayHeatmapDay](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.DemandLevel != nil {
		if !input.DemandLevel.IsValid() {
			return nil, errInvalidDemandLevel
		}
		updates["demand_level"] = *input.DemandLevel
		updates["color_code"] = input.DemandLevel.ColorCode()
	}
	if input.ColorCode != nil {
		updates["color_code"] = *input.ColorCode
	}
	if input.PriceMultiplier != nil {
		if err := validateMultiplier(input.PriceMultiplier); err != nil {
			return nil, err
		}
		updates["price_multiplier"] = *input.PriceMultiplier
	}
	if input.SuggestedRate != nil {
		if err := validateNonNegative(*input.SuggestedRate); err != nil {
			return nil, err
		}
		updates["suggested_rate"] = *input.SuggestedRate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[HolidayHeatmapDay](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[HolidayHeatmapDay](ctx, organizationId, id)
}
