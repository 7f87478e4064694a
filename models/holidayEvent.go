package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const holidayEventsTable = "holiday_event_calendar"

type HolidayEvent struct {
	ID                   int              `gorm:"primary_key" json:"id"`
	OrganizationId       string           `gorm:"size:36;index;not null" json:"organization_id"`
	EventName            string           `gorm:"size:200;not null" json:"event_name"`
	EventDate            time.Time        `gorm:"type:date;not null" json:"event_date"`
	EndDate              *time.Time       `gorm:"type:date" json:"end_date"`
	EventType            string           `gorm:"size:50;not null" json:"event_type"`
	Country              string           `gorm:"size:2;not null" json:"country"`
	Region               *string          `gorm:"size:100" json:"region"`
	DemandImpact         *string          `gorm:"size:20" json:"demand_impact"`
	SuggestedPriceChange *decimal.Decimal `gorm:"type:decimal(6,2)" json:"suggested_price_change"`
	IsActive             *bool            `gorm:"not null;default:true" json:"is_active"`
	Notes                *string          `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (HolidayEvent) TableName() string { return holidayEventsTable }

type NewHolidayEvent struct {
	EventName            string           `json:"event_name" binding:"required"`
	EventDate            time.Time        `json:"event_date" binding:"required"`
	EndDate              *time.Time       `json:"end_date"`
	EventType            string           `json:"event_type" binding:"required"`
	Country              string           `json:"country"`
	Region               *string          `json:"region"`
	DemandImpact         *string          `json:"demand_impact"`
	SuggestedPriceChange *decimal.Decimal `json:"suggested_price_change"`
	Notes                *string          `json:"notes"`
}

type HolidayEventFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	EventType *string
	Country   *string
}

// ListHolidayEvents returns active events only.
func ListHolidayEvents(ctx context.Context, organizationId string, filter HolidayEventFilter) ([]*HolidayEvent, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = holidayEventsTable
	var country *string
	if filter.Country != nil {
		country = utils.Ptr(strings.ToUpper(*filter.Country))
	}
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "is_active", utils.NewTrue()),
		utils.OptionalGte(t, "event_date", filter.StartDate),
		utils.OptionalLte(t, "event_date", filter.EndDate),
		utils.OptionalEq(t, "event_type", filter.EventType),
		utils.OptionalEq(t, "country", country),
	)
	return listScoped[HolidayEvent](ctx, preds, utils.OrderAsc(t, "event_date"), utils.OrderAsc(t, "id"))
}

func CreateHolidayEvent(ctx context.Context, organizationId string, input *NewHolidayEvent) (*HolidayEvent, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.EventName) == "" {
		return nil, utils.NewInputError("event name is required")
	}
	if input.EventDate.IsZero() {
		return nil, utils.NewInputError("event date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(dateOnly(input.EventDate)) {
		return nil, utils.NewInputError("end date cannot be before event date")
	}
	var endDate *time.Time
	if input.EndDate != nil {
		endDate = utils.Ptr(dateOnly(*input.EndDate))
	}
	country := strings.ToUpper(input.Country)
	if country == "" {
		country = organizationCountryCode(ctx, organizationId)
	}
	event := HolidayEvent{
		OrganizationId:       organizationId,
		EventName:            strings.TrimSpace(input.EventName),
		EventDate:            dateOnly(input.EventDate),
		EndDate:              endDate,
		EventType:            input.EventType,
		Country:              country,
		Region:               input.Region,
		DemandImpact:         input.DemandImpact,
		SuggestedPriceChange: input.SuggestedPriceChange,
		IsActive:             utils.NewTrue(),
		Notes:                input.Notes,
	}
	return createScoped(ctx, &event)
}
