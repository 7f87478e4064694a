package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const aiPerformanceSummaryTable = "ai_performance_summary"

type AiPerformanceSummary struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	OrganizationId        string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId            *int            `gorm:"index" json:"property_id"`
	SummaryDate           time.Time       `gorm:"type:date;not null" json:"summary_date"`
	PeriodType            PeriodType      `gorm:"size:20;not null;default:monthly" json:"period_type"`
	TotalRevenue          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_revenue"`
	OccupancyRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"occupancy_rate"`
	AverageDailyRate      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"average_daily_rate"`
	RecommendationsIssued int             `gorm:"not null;default:0" json:"recommendations_issued"`
	RecommendationsTaken  int             `gorm:"not null;default:0" json:"recommendations_taken"`
	PerformanceGrade      string          `gorm:"size:5;not null" json:"performance_grade"`
	Insights              *string         `gorm:"type:text" json:"insights"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (AiPerformanceSummary) TableName() string { return aiPerformanceSummaryTable }

type NewAiPerformanceSummary struct {
	PropertyId            *int            `json:"property_id"`
	SummaryDate           *time.Time      `json:"summary_date"`
	PeriodType            PeriodType      `json:"period_type"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	OccupancyRate         decimal.Decimal `json:"occupancy_rate"`
	AverageDailyRate      decimal.Decimal `json:"average_daily_rate"`
	RecommendationsIssued int             `json:"recommendations_issued"`
	RecommendationsTaken  int             `json:"recommendations_taken"`
	PerformanceGrade      string          `json:"performance_grade"`
	Insights              *string         `json:"insights"`
}

type AiPerformanceSummaryFilter struct {
	PropertyId *int
	PeriodType *PeriodType
	StartDate  *time.Time
	EndDate    *time.Time
}

// performanceGrade maps an occupancy percentage to a letter grade.
func performanceGrade(occupancy decimal.Decimal) string {
	switch {
	case occupancy.GreaterThanOrEqual(decimal.NewFromInt(85)):
		return "A"
	case occupancy.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return "B+"
	case occupancy.GreaterThanOrEqual(decimal.NewFromInt(65)):
		return "B"
	case occupancy.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return "C"
	}
	return "D"
}

func ListAiPerformanceSummaries(ctx context.Context, organizationId string, filter AiPerformanceSummaryFilter) ([]*AiPerformanceSummary, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = aiPerformanceSummaryTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "period_type", filter.PeriodType),
		utils.OptionalGte(t, "summary_date", filter.StartDate),
		utils.OptionalLte(t, "summary_date", filter.EndDate),
	)
	return listScoped[AiPerformanceSummary](ctx, preds, utils.OrderDesc(t, "summary_date"), utils.OrderDesc(t, "id"))
}

func CreateAiPerformanceSummary(ctx context.Context, organizationId string, input *NewAiPerformanceSummary) (*AiPerformanceSummary, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.PeriodType != "" && !input.PeriodType.IsValid() {
		return nil, errInvalidPeriodType
	}
	if err := validateNonNegative(input.TotalRevenue, input.OccupancyRate, input.AverageDailyRate); err != nil {
		return nil, err
	}
	if input.OccupancyRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, utils.NewInputError("occupancy rate cannot exceed 100")
	}
	if input.RecommendationsIssued < 0 || input.RecommendationsTaken < 0 || input.RecommendationsTaken > input.RecommendationsIssued {
		return nil, utils.NewInputError("invalid recommendation counts")
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	grade := input.PerformanceGrade
	if grade == "" {
		grade = performanceGrade(input.OccupancyRate)
	}
	row := AiPerformanceSummary{
		OrganizationId:        organizationId,
		PropertyId:            input.PropertyId,
		SummaryDate:           dateOnly(utils.DereferencePtr(input.SummaryDate, now())),
		PeriodType:            utils.DereferencePtr(utils.NilIfEmpty(input.PeriodType), PeriodMonthly),
		TotalRevenue:          input.TotalRevenue,
		OccupancyRate:         input.OccupancyRate,
		AverageDailyRate:      input.AverageDailyRate,
		RecommendationsIssued: input.RecommendationsIssued,
		RecommendationsTaken:  input.RecommendationsTaken,
		PerformanceGrade:      grade,
		Insights:              input.Insights,
	}
	return createScoped(ctx, &row)
}
