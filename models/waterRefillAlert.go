package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const waterRefillAlertsTable = "water_refill_alerts"

type WaterRefillAlert struct {
	ID                int             `gorm:"primary_key" json:"id"`
	OrganizationId    string          `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId        int             `gorm:"index;not null" json:"property_id"`
	AlertType         RefillAlertType `gorm:"size:30;not null" json:"alert_type"`
	AlertMessage      string          `gorm:"type:text;not null" json:"alert_message"`
	TriggerCount      int             `gorm:"not null;default:0" json:"trigger_count"`
	TriggerPeriodDays int             `gorm:"not null;default:30" json:"trigger_period_days"`
	Severity          Severity        `gorm:"size:20;not null;default:medium" json:"severity"`
	Recommendations   *string         `gorm:"type:text" json:"recommendations"`
	IsAcknowledged    *bool           `gorm:"not null;default:false" json:"is_acknowledged"`
	AcknowledgedBy    *int            `json:"acknowledged_by"`
	AcknowledgedAt    *time.Time      `json:"acknowledged_at"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (WaterRefillAlert) TableName() string { return waterRefillAlertsTable }

type WaterRefillAlertWithProperty struct {
	WaterRefillAlert
	PropertyName *string `json:"property_name"`
}

type NewWaterRefillAlert struct {
	PropertyId        int             `json:"property_id" binding:"required"`
	AlertType         RefillAlertType `json:"alert_type" binding:"required"`
	AlertMessage      string          `json:"alert_message" binding:"required"`
	TriggerCount      int             `json:"trigger_count"`
	TriggerPeriodDays int             `json:"trigger_period_days"`
	Severity          Severity        `json:"severity"`
	Recommendations   *string         `json:"recommendations"`
}

func ListWaterRefillAlerts(ctx context.Context, organizationId string, propertyId *int) ([]*WaterRefillAlertWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterRefillAlertsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
	)
	return listWithProperty[WaterRefillAlertWithProperty](ctx, &WaterRefillAlert{}, t, preds,
		utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateWaterRefillAlert(ctx context.Context, organizationId string, input *NewWaterRefillAlert) (*WaterRefillAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if input.AlertType != RefillAlertFrequency && input.AlertType != RefillAlertCost {
		return nil, errInvalidAlertType
	}
	if input.Severity != "" && !input.Severity.IsValid() {
		return nil, errInvalidSeverity
	}
	if err := validatePropertyRef(ctx, organizationId, &input.PropertyId); err != nil {
		return nil, err
	}
	alert := WaterRefillAlert{
		OrganizationId:    organizationId,
		PropertyId:        input.PropertyId,
		AlertType:         input.AlertType,
		AlertMessage:      input.AlertMessage,
		TriggerCount:      input.TriggerCount,
		TriggerPeriodDays: utils.DereferencePtr(utils.NilIfEmpty(input.TriggerPeriodDays), frequencyWindowDays),
		Severity:          utils.DereferencePtr(utils.NilIfEmpty(input.Severity), SeverityMedium),
		Recommendations:   input.Recommendations,
		IsAcknowledged:    utils.NewFalse(),
	}
	if _, err := createScoped(ctx, &alert); err != nil {
		return nil, err
	}
	propertyId := alert.PropertyId
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      string(alert.AlertType),
		ReferenceType:  waterRefillAlertsTable,
		ReferenceId:    alert.ID,
		PropertyId:     &propertyId,
		Severity:       string(alert.Severity),
		Message:        alert.AlertMessage,
		CreatedAt:      alert.CreatedAt,
	})
	return &alert, nil
}

// AcknowledgeWaterRefillAlert keeps the first acknowledgement's audit fields.
func AcknowledgeWaterRefillAlert(ctx context.Context, organizationId string, id int, acknowledgedBy *int) (*WaterRefillAlert, error) {
	existing, err := utils.FetchModel[WaterRefillAlert](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsAcknowledged) {
		return existing, nil
	}
	if acknowledgedBy == nil {
		acknowledgedBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{
		"is_acknowledged": true,
		"acknowledged_at": now(),
	}
	if acknowledgedBy != nil {
		updates["acknowledged_by"] = *acknowledgedBy
	}
	guard := utils.NotEqualOrNull(waterRefillAlertsTable, "is_acknowledged", true)
	if _, err := utils.TransitionScoped[WaterRefillAlert](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterRefillAlert](ctx, organizationId, id)
}
