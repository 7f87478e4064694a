package models

import (
	"context"
	"fmt"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"gorm.io/gorm/clause"
)

const (
	waterConsumptionAlertsTable = "water_consumption_alerts"

	emergencyWindowDays   = 30
	emergencyAlertMinimum = 3
	noEntryWindowDays     = 20
	consumptionLockTTL    = 30 * time.Second
)

type WaterConsumptionAlert struct {
	ID                 int                  `gorm:"primary_key" json:"id"`
	OrganizationId     string               `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId         *int                 `gorm:"index" json:"property_id"`
	AlertType          ConsumptionAlertType `gorm:"size:30;not null" json:"alert_type"`
	AlertMessage       string               `gorm:"type:text;not null" json:"alert_message"`
	Severity           Severity             `gorm:"size:20;not null;default:medium" json:"severity"`
	TriggerCount       *int                 `json:"trigger_count"`
	TriggerPeriodDays  *int                 `json:"trigger_period_days"`
	DaysSinceLastEntry *int                 `json:"days_since_last_entry"`
	SourceType         *WaterSourceType     `gorm:"size:30" json:"source_type"`
	Recommendations    *string              `gorm:"type:text" json:"recommendations"`
	AiGenerated        *bool                `gorm:"not null;default:false" json:"ai_generated"`
	IsActive           *bool                `gorm:"not null;default:true" json:"is_active"`
	AcknowledgedBy     *int                 `json:"acknowledged_by"`
	AcknowledgedAt     *time.Time           `json:"acknowledged_at"`
	Notes              *string              `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time            `gorm:"autoCreateTime" json:"created_at"`
}

func (WaterConsumptionAlert) TableName() string { return waterConsumptionAlertsTable }

type WaterConsumptionAlertWithProperty struct {
	WaterConsumptionAlert
	PropertyName *string `json:"property_name"`
}

type NewWaterConsumptionAlert struct {
	PropertyId         *int                 `json:"property_id"`
	AlertType          ConsumptionAlertType `json:"alert_type" binding:"required"`
	AlertMessage       string               `json:"alert_message" binding:"required"`
	Severity           Severity             `json:"severity"`
	TriggerCount       *int                 `json:"trigger_count"`
	TriggerPeriodDays  *int                 `json:"trigger_period_days"`
	DaysSinceLastEntry *int                 `json:"days_since_last_entry"`
	SourceType         *WaterSourceType     `json:"source_type"`
	Recommendations    *string              `json:"recommendations"`
	Notes              *string              `json:"notes"`
	aiGenerated        bool
}

type WaterConsumptionAlertFilter struct {
	PropertyId *int
	AlertType  *ConsumptionAlertType
	Severity   *Severity
	IsActive   *bool
}

func ListWaterConsumptionAlerts(ctx context.Context, organizationId string, filter WaterConsumptionAlertFilter) ([]*WaterConsumptionAlertWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterConsumptionAlertsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "alert_type", filter.AlertType),
		utils.OptionalEq(t, "severity", filter.Severity),
		utils.OptionalEq(t, "is_active", filter.IsActive),
	)
	return listWithProperty[WaterConsumptionAlertWithProperty](ctx, &WaterConsumptionAlert{}, t, preds,
		utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateWaterConsumptionAlert(ctx context.Context, organizationId string, input *NewWaterConsumptionAlert) (*WaterConsumptionAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.AlertType.IsValid() {
		return nil, errInvalidAlertType
	}
	if input.Severity != "" && !input.Severity.IsValid() {
		return nil, errInvalidSeverity
	}
	if input.SourceType != nil && !input.SourceType.IsValid() {
		return nil, errInvalidSourceType
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	alert := WaterConsumptionAlert{
		OrganizationId:     organizationId,
		PropertyId:         input.PropertyId,
		AlertType:          input.AlertType,
		AlertMessage:       input.AlertMessage,
		Severity:           utils.DereferencePtr(utils.NilIfEmpty(input.Severity), SeverityMedium),
		TriggerCount:       input.TriggerCount,
		TriggerPeriodDays:  input.TriggerPeriodDays,
		DaysSinceLastEntry: input.DaysSinceLastEntry,
		SourceType:         input.SourceType,
		Recommendations:    input.Recommendations,
		AiGenerated:        utils.Ptr(input.aiGenerated),
		IsActive:           utils.NewTrue(),
		Notes:              input.Notes,
	}
	if _, err := createScoped(ctx, &alert); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      string(alert.AlertType),
		ReferenceType:  waterConsumptionAlertsTable,
		ReferenceId:    alert.ID,
		PropertyId:     alert.PropertyId,
		Severity:       string(alert.Severity),
		Message:        alert.AlertMessage,
		CreatedAt:      alert.CreatedAt,
	})
	return &alert, nil
}

// AcknowledgeWaterConsumptionAlert records who saw the alert. The first
// acknowledgement is kept.
func AcknowledgeWaterConsumptionAlert(ctx context.Context, organizationId string, id int, acknowledgedBy *int) (*WaterConsumptionAlert, error) {
	existing, err := utils.FetchModel[WaterConsumptionAlert](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if existing.AcknowledgedAt != nil {
		return existing, nil
	}
	if acknowledgedBy == nil {
		acknowledgedBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{"acknowledged_at": now()}
	if acknowledgedBy != nil {
		updates["acknowledged_by"] = *acknowledgedBy
	}
	guard := clause.Eq{Column: utils.Col(waterConsumptionAlertsTable, "acknowledged_at"), Value: nil}
	if _, err := utils.TransitionScoped[WaterConsumptionAlert](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterConsumptionAlert](ctx, organizationId, id)
}

// hasOpenConsumptionAlert reports an active, unacknowledged alert of the type.
func hasOpenConsumptionAlert(ctx context.Context, organizationId string, propertyId int, alertType ConsumptionAlertType) (bool, error) {
	const t = waterConsumptionAlertsTable
	open, err := listScoped[WaterConsumptionAlert](ctx, utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", &propertyId),
		utils.OptionalEq(t, "alert_type", &alertType),
		utils.OptionalEq(t, "is_active", utils.NewTrue()),
		clause.Eq{Column: utils.Col(t, "acknowledged_at"), Value: nil},
	))
	if err != nil {
		return false, err
	}
	return len(open) > 0, nil
}

// CheckWaterConsumptionAlerts raises frequent_emergency when a property had at
// least three emergency entries in the last 30 days, and no_entry_dry_season when
// nothing was logged in the last 20 days. A type with an open alert is skipped.
func CheckWaterConsumptionAlerts(ctx context.Context, organizationId string, propertyId int, at time.Time) ([]*WaterConsumptionAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	release := utils.OrganizationLock(ctx, organizationId, fmt.Sprintf("water-consumption:%d", propertyId), consumptionLockTTL)
	defer release()

	entries, err := ListWaterConsumptionEntries(ctx, organizationId, WaterConsumptionEntryFilter{PropertyId: &propertyId})
	if err != nil {
		return nil, err
	}
	today := dateOnly(at)
	emergencySince := today.AddDate(0, 0, -emergencyWindowDays)
	entrySince := today.AddDate(0, 0, -noEntryWindowDays)
	emergencies, recent := 0, 0
	var last *time.Time
	for _, e := range entries {
		if !e.EntryDate.Before(emergencySince) && utils.DereferencePtr(e.IsEmergency) {
			emergencies++
		}
		if !e.EntryDate.Before(entrySince) {
			recent++
		}
		if last == nil || e.EntryDate.After(*last) {
			d := e.EntryDate
			last = &d
		}
	}

	created := make([]*WaterConsumptionAlert, 0)
	raise := func(input *NewWaterConsumptionAlert) error {
		open, err := hasOpenConsumptionAlert(ctx, organizationId, propertyId, input.AlertType)
		if err != nil || open {
			return err
		}
		input.PropertyId = &propertyId
		input.aiGenerated = true
		alert, err := CreateWaterConsumptionAlert(ctx, organizationId, input)
		if err != nil {
			return err
		}
		created = append(created, alert)
		return nil
	}

	if emergencies >= emergencyAlertMinimum {
		err := raise(&NewWaterConsumptionAlert{
			AlertType:         ConsumptionAlertFrequentEmergency,
			AlertMessage:      fmt.Sprintf("Property has had %d emergency water deliveries in the last %d days. Consider investigating water supply issues.", emergencies, emergencyWindowDays),
			Severity:          SeverityHigh,
			TriggerCount:      utils.Ptr(emergencies),
			TriggerPeriodDays: utils.Ptr(emergencyWindowDays),
			SourceType:        utils.Ptr(WaterSourceEmergencyTruck),
			Recommendations:   utils.Ptr("Check main water source, inspect for leaks, consider upgrading to more reliable water source."),
		})
		if err != nil {
			return created, err
		}
	}
	if recent == 0 {
		var daysSince *int
		if last != nil {
			daysSince = utils.Ptr(utils.DaysBetween(*last, today))
		}
		err := raise(&NewWaterConsumptionAlert{
			AlertType:          ConsumptionAlertNoEntry,
			AlertMessage:       fmt.Sprintf("No water consumption entries recorded for %d+ days. Please verify water usage and billing status.", noEntryWindowDays),
			Severity:           SeverityMedium,
			TriggerPeriodDays:  utils.Ptr(noEntryWindowDays),
			DaysSinceLastEntry: daysSince,
			Recommendations:    utils.Ptr("Update water consumption records, check for missing bills, verify property occupancy."),
		})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}
