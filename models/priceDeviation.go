package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const priceDeviationsTable = "price_deviation_analysis"

// deviations beyond this percentage flag a price as under- or overpriced
var priceDeviationThreshold = decimal.NewFromInt(10)

type PriceDeviation struct {
	ID                  int              `gorm:"primary_key" json:"id"`
	OrganizationId      string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId          int              `gorm:"index;not null" json:"property_id"`
	AnalysisDate        time.Time        `gorm:"type:date;not null" json:"analysis_date"`
	TargetDate          *time.Time       `gorm:"type:date" json:"target_date"`
	CurrentPrice        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"current_price"`
	MarketAveragePrice  decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"market_average_price"`
	DeviationPercentage decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0" json:"deviation_percentage"`
	IsUnderpriced       *bool            `gorm:"not null;default:false" json:"is_underpriced"`
	IsOverpriced        *bool            `gorm:"not null;default:false" json:"is_overpriced"`
	SuggestedPrice      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"suggested_price"`
	Notes               *string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (PriceDeviation) TableName() string { return priceDeviationsTable }

type PriceDeviationWithProperty struct {
	PriceDeviation
	PropertyName *string `json:"property_name"`
}

type NewPriceDeviation struct {
	PropertyId         int              `json:"property_id" binding:"required"`
	AnalysisDate       *time.Time       `json:"analysis_date"`
	TargetDate         *time.Time       `json:"target_date"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`
	MarketAveragePrice decimal.Decimal  `json:"market_average_price"`
	SuggestedPrice     *decimal.Decimal `json:"suggested_price"`
	Notes              *string          `json:"notes"`
}

type PriceDeviationFilter struct {
	PropertyId    *int
	IsUnderpriced *bool
	IsOverpriced  *bool
	StartDate     *time.Time
	EndDate       *time.Time
}

func ListPriceDeviations(ctx context.Context, organizationId string, filter PriceDeviationFilter) ([]*PriceDeviationWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = priceDeviationsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "is_underpriced", filter.IsUnderpriced),
		utils.OptionalEq(t, "is_overpriced", filter.IsOverpriced),
		utils.OptionalGte(t, "analysis_date", filter.StartDate),
		utils.OptionalLte(t, "analysis_date", filter.EndDate),
	)
	return listWithProperty[PriceDeviationWithProperty](ctx, &PriceDeviation{}, t, preds,
		utils.OrderDesc(t, "analysis_date"), utils.OrderDesc(t, "id"))
}

// CreatePriceDeviation derives the deviation percentage against the market
// average and flags prices outside the threshold band.
func CreatePriceDeviation(ctx context.Context, organizationId string, input *NewPriceDeviation) (*PriceDeviation, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validateNonNegative(input.CurrentPrice, input.MarketAveragePrice); err != nil {
		return nil, err
	}
	if input.MarketAveragePrice.IsZero() {
		return nil, utils.NewInputError("market average price is required")
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	deviation := utils.Ratio(input.CurrentPrice.Sub(input.MarketAveragePrice), input.MarketAveragePrice)
	var targetDate *time.Time
	if input.TargetDate != nil {
		targetDate = utils.Ptr(dateOnly(*input.TargetDate))
	}
	row := PriceDeviation{
		OrganizationId:      organizationId,
		PropertyId:          input.PropertyId,
		AnalysisDate:        dateOnly(utils.DereferencePtr(input.AnalysisDate, now())),
		TargetDate:          targetDate,
		CurrentPrice:        input.CurrentPrice,
		MarketAveragePrice:  input.MarketAveragePrice,
		DeviationPercentage: deviation,
		IsUnderpriced:       utils.Ptr(deviation.LessThan(priceDeviationThreshold.Neg())),
		IsOverpriced:        utils.Ptr(deviation.GreaterThan(priceDeviationThreshold)),
		SuggestedPrice:      input.SuggestedPrice,
		Notes:               input.Notes,
	}
	return createScoped(ctx, &row)
}
