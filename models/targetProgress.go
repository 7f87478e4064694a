package models

import (
	"context"
	"errors"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const targetProgressTable = "target_progress_tracking"

type TargetProgress struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	OrganizationId     string          `gorm:"size:36;index;not null" json:"organization_id"`
	TargetId           int             `gorm:"index;not null" json:"target_id"`
	PropertyId         int             `gorm:"not null" json:"property_id"`
	RecordDate         time.Time       `gorm:"type:date;not null" json:"record_date"`
	RevenueToDate      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"revenue_to_date"`
	ProgressPercentage decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"progress_percentage"`
	Notes              *string         `gorm:"type:text" json:"notes"`
	CreatedBy          *int            `json:"created_by"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (TargetProgress) TableName() string { return targetProgressTable }

type NewTargetProgress struct {
	TargetId      int             `json:"target_id"`
	RecordDate    *time.Time      `json:"record_date"`
	RevenueToDate decimal.Decimal `json:"revenue_to_date"`
	Notes         *string         `json:"notes"`
}

func ListTargetProgress(ctx context.Context, organizationId string, targetId int) ([]*TargetProgress, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = targetProgressTable
	preds := utils.TenantScope(t, organizationId).With(utils.OptionalEq(t, "target_id", &targetId))
	return listScoped[TargetProgress](ctx, preds, utils.OrderDesc(t, "record_date"), utils.OrderDesc(t, "id"))
}

// CreateTargetProgress records revenue against a target and, when the record is
// the latest for that target, carries the amount onto the target's current revenue.
func CreateTargetProgress(ctx context.Context, organizationId string, input *NewTargetProgress) (*TargetProgress, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validateNonNegative(input.RevenueToDate); err != nil {
		return nil, err
	}
	target, err := utils.FetchModel[RevenueTarget](ctx, organizationId, input.TargetId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewInputError("revenue target not found")
		}
		return nil, err
	}
	record := TargetProgress{
		OrganizationId:     organizationId,
		TargetId:           target.ID,
		PropertyId:         target.PropertyId,
		RecordDate:         dateOnly(utils.DereferencePtr(input.RecordDate, now())),
		RevenueToDate:      input.RevenueToDate,
		ProgressPercentage: utils.Ratio(input.RevenueToDate, target.TargetAmount),
		Notes:              input.Notes,
		CreatedBy:          utils.GetActorIdFromContext(ctx),
	}

	const t = targetProgressTable
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	var newer int64
	err = tx.Model(&TargetProgress{}).
		Clauses(utils.TenantScope(t, organizationId).With(
			utils.OptionalEq(t, "target_id", &target.ID),
			utils.OptionalGte(t, "record_date", utils.Ptr(record.RecordDate.AddDate(0, 0, 1))),
		).Where()).
		Count(&newer).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if newer == 0 {
		err = tx.Model(&RevenueTarget{}).
			Clauses(utils.ById(revenueTargetsTable, organizationId, target.ID).Where()).
			Updates(map[string]interface{}{"current_revenue": record.RevenueToDate, "updated_at": now()}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &record, nil
}
