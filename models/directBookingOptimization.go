package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const directBookingOptimizationTable = "direct_booking_optimization"

// DirectBookingOptimization compares an OTA listing against a direct booking
// rate. Payout, recommendation and advantage are derived on create.
type DirectBookingOptimization struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	OrganizationId       string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId           int             `gorm:"index;not null" json:"property_id"`
	AnalysisDate         time.Time       `gorm:"type:date;not null" json:"analysis_date"`
	PlatformName         string          `gorm:"size:50;not null" json:"platform_name"`
	OtaGuestRate         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"ota_guest_rate"`
	CommissionRate       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	OtaNetPayout         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"ota_net_payout"`
	RecommendedDirect    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"recommended_direct_rate"`
	CompetitiveAdvantage decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"competitive_advantage"`
	SuggestedPerks       datatypes.JSON  `json:"suggested_perks"`
	ConversionPotential  *string         `gorm:"size:20" json:"conversion_potential"`
	Notes                *string         `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (DirectBookingOptimization) TableName() string { return directBookingOptimizationTable }

type DirectBookingOptimizationWithProperty struct {
	DirectBookingOptimization
	PropertyName *string `json:"property_name"`
}

type NewDirectBookingOptimization struct {
	PropertyId          int              `json:"property_id" binding:"required"`
	AnalysisDate        *time.Time       `json:"analysis_date"`
	PlatformName        string           `json:"platform_name" binding:"required"`
	OtaGuestRate        decimal.Decimal  `json:"ota_guest_rate"`
	CommissionRate      decimal.Decimal  `json:"commission_rate"`
	RecommendedDirect   *decimal.Decimal `json:"recommended_direct_rate"`
	SuggestedPerks      []string         `json:"suggested_perks"`
	ConversionPotential *string          `json:"conversion_potential"`
	Notes               *string          `json:"notes"`
}

type DirectBookingOptimizationFilter struct {
	PropertyId   *int
	PlatformName *string
	StartDate    *time.Time
	EndDate      *time.Time
}

func ListDirectBookingOptimizations(ctx context.Context, organizationId string, filter DirectBookingOptimizationFilter) ([]*DirectBookingOptimizationWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = directBookingOptimizationTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "platform_name", filter.PlatformName),
		utils.OptionalGte(t, "analysis_date", filter.StartDate),
		utils.OptionalLte(t, "analysis_date", filter.EndDate),
	)
	return listWithProperty[DirectBookingOptimizationWithProperty](ctx, &DirectBookingOptimization{}, t, preds,
		utils.OrderDesc(t, "analysis_date"), utils.OrderDesc(t, "id"))
}

// CreateDirectBookingOptimization recommends the midpoint between the OTA
// payout and the guest rate unless a rate is given.
func CreateDirectBookingOptimization(ctx context.Context, organizationId string, input *NewDirectBookingOptimization) (*DirectBookingOptimization, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validateNonNegative(input.OtaGuestRate, input.CommissionRate); err != nil {
		return nil, err
	}
	if input.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.NewInputError("commission rate cannot exceed 100")
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	net := utils.RoundMoney(input.OtaGuestRate.Sub(utils.PercentOf(input.OtaGuestRate, input.CommissionRate)))
	recommended := utils.RoundMoney(net.Add(input.OtaGuestRate).Div(decimal.NewFromInt(2)))
	if input.RecommendedDirect != nil {
		if err := validateNonNegative(*input.RecommendedDirect); err != nil {
			return nil, err
		}
		recommended = *input.RecommendedDirect
	}
	var perks datatypes.JSON
	if len(input.SuggestedPerks) > 0 {
		raw, err := json.Marshal(input.SuggestedPerks)
		if err != nil {
			return nil, err
		}
		perks = datatypes.JSON(raw)
	}
	row := DirectBookingOptimization{
		OrganizationId:       organizationId,
		PropertyId:           input.PropertyId,
		AnalysisDate:         dateOnly(utils.DereferencePtr(input.AnalysisDate, now())),
		PlatformName:         input.PlatformName,
		OtaGuestRate:         input.OtaGuestRate,
		CommissionRate:       input.CommissionRate,
		OtaNetPayout:         net,
		RecommendedDirect:    recommended,
		CompetitiveAdvantage: input.OtaGuestRate.Sub(recommended),
		SuggestedPerks:       perks,
		ConversionPotential:  input.ConversionPotential,
		Notes:                input.Notes,
	}
	return createScoped(ctx, &row)
}
