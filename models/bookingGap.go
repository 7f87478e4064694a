package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const bookingGapsTable = "booking_gap_analysis"

type BookingGap struct {
	ID               int              `gorm:"primary_key" json:"id"`
	OrganizationId   string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId       int              `gorm:"index;not null" json:"property_id"`
	GapType          string           `gorm:"size:50;not null" json:"gap_type"`
	GapStartDate     time.Time        `gorm:"type:date;not null" json:"gap_start_date"`
	GapEndDate       time.Time        `gorm:"type:date;not null" json:"gap_end_date"`
	GapNights        int              `gorm:"not null;default:0" json:"gap_nights"`
	PotentialRevenue *decimal.Decimal `gorm:"type:decimal(12,2)" json:"potential_revenue"`
	SuggestedAction  *string          `gorm:"type:text" json:"suggested_action"`
	IsResolved       *bool            `gorm:"not null;default:false" json:"is_resolved"`
	ResolvedDate     *time.Time       `gorm:"type:date" json:"resolved_date"`
	ActionTaken      *string          `gorm:"type:text" json:"action_taken"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (BookingGap) TableName() string { return bookingGapsTable }

type BookingGapWithProperty struct {
	BookingGap
	PropertyName *string `json:"property_name"`
}

type NewBookingGap struct {
	PropertyId       int              `json:"property_id" binding:"required"`
	GapType          string           `json:"gap_type" binding:"required"`
	GapStartDate     time.Time        `json:"gap_start_date" binding:"required"`
	GapEndDate       time.Time        `json:"gap_end_date" binding:"required"`
	PotentialRevenue *decimal.Decimal `json:"potential_revenue"`
	SuggestedAction  *string          `json:"suggested_action"`
}

type BookingGapFilter struct {
	PropertyId *int
	GapType    *string
	IsResolved *bool
	StartDate  *time.Time
	EndDate    *time.Time
}

func ListBookingGaps(ctx context.Context, organizationId string, filter BookingGapFilter) ([]*BookingGapWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = bookingGapsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "gap_type", filter.GapType),
		utils.OptionalEq(t, "is_resolved", filter.IsResolved),
		utils.OptionalGte(t, "gap_start_date", filter.StartDate),
		utils.OptionalLte(t, "gap_end_date", filter.EndDate),
	)
	return listWithProperty[BookingGapWithProperty](ctx, &BookingGap{}, t, preds,
		utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateBookingGap(ctx context.Context, organizationId string, input *NewBookingGap) (*BookingGap, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	start, end := dateOnly(input.GapStartDate), dateOnly(input.GapEndDate)
	if end.Before(start) {
		return nil, utils.NewInputError("gap end date cannot be before start date")
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	gap := BookingGap{
		OrganizationId:   organizationId,
		PropertyId:       input.PropertyId,
		GapType:          input.GapType,
		GapStartDate:     start,
		GapEndDate:       end,
		GapNights:        utils.DaysBetween(start, end),
		PotentialRevenue: input.PotentialRevenue,
		SuggestedAction:  input.SuggestedAction,
		IsResolved:       utils.NewFalse(),
	}
	return createScoped(ctx, &gap)
}

// ResolveBookingGap marks a gap resolved today. Resolving twice keeps the first resolution.
func ResolveBookingGap(ctx context.Context, organizationId string, id int, actionTaken string) (*BookingGap, error) {
	existing, err := utils.FetchModel[BookingGap](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsResolved) {
		return existing, nil
	}
	updates := map[string]interface{}{
		"is_resolved":   true,
		"resolved_date": dateOnly(now()),
		"action_taken":  actionTaken,
	}
	guard := utils.NotEqualOrNull(bookingGapsTable, "is_resolved", true)
	if _, err := utils.TransitionScoped[BookingGap](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[BookingGap](ctx, organizationId, id)
}
