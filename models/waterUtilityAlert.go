package models

import (
	"context"
	"fmt"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const waterUtilityAlertsTable = "water_utility_alerts"

type WaterUtilityAlert struct {
	ID                int            `gorm:"primary_key" json:"id"`
	OrganizationId    string         `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId        *int           `gorm:"index" json:"property_id"`
	AlertType         WaterAlertType `gorm:"size:30;not null" json:"alert_type"`
	AlertDate         time.Time      `gorm:"not null" json:"alert_date"`
	ExpectedBillDate  *time.Time     `gorm:"type:date" json:"expected_bill_date"`
	DaysSinceLastBill *int           `json:"days_since_last_bill"`
	AlertMessage      string         `gorm:"type:text;not null" json:"alert_message"`
	IsActive          *bool          `gorm:"not null;default:true" json:"is_active"`
	DismissedBy       *int           `json:"dismissed_by"`
	DismissedAt       *time.Time     `json:"dismissed_at"`
	ActionTaken       *string        `gorm:"size:500" json:"action_taken"`
	Notes             *string        `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (WaterUtilityAlert) TableName() string { return waterUtilityAlertsTable }

type WaterUtilityAlertWithProperty struct {
	WaterUtilityAlert
	PropertyName *string `json:"property_name"`
}

type NewWaterUtilityAlert struct {
	PropertyId        *int           `json:"property_id"`
	AlertType         WaterAlertType `json:"alert_type" binding:"required"`
	AlertDate         *time.Time     `json:"alert_date"`
	ExpectedBillDate  *time.Time     `json:"expected_bill_date"`
	DaysSinceLastBill *int           `json:"days_since_last_bill"`
	AlertMessage      string         `json:"alert_message" binding:"required"`
	Notes             *string        `json:"notes"`
}

type WaterUtilityAlertFilter struct {
	PropertyId *int
	AlertType  *WaterAlertType
	IsActive   *bool
}

func ListWaterUtilityAlerts(ctx context.Context, organizationId string, filter WaterUtilityAlertFilter) ([]*WaterUtilityAlertWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = waterUtilityAlertsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "alert_type", filter.AlertType),
		utils.OptionalEq(t, "is_active", filter.IsActive),
	)
	return listWithProperty[WaterUtilityAlertWithProperty](ctx, &WaterUtilityAlert{}, t, preds,
		utils.OrderDesc(t, "alert_date"), utils.OrderDesc(t, "id"))
}

func CreateWaterUtilityAlert(ctx context.Context, organizationId string, input *NewWaterUtilityAlert) (*WaterUtilityAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if !input.AlertType.IsValid() {
		return nil, errInvalidAlertType
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	alert := WaterUtilityAlert{
		OrganizationId:    organizationId,
		PropertyId:        input.PropertyId,
		AlertType:         input.AlertType,
		AlertDate:         utils.DereferencePtr(input.AlertDate, now()).UTC(),
		ExpectedBillDate:  input.ExpectedBillDate,
		DaysSinceLastBill: input.DaysSinceLastBill,
		AlertMessage:      input.AlertMessage,
		IsActive:          utils.NewTrue(),
		Notes:             input.Notes,
	}
	if _, err := createScoped(ctx, &alert); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      string(alert.AlertType),
		ReferenceType:  waterUtilityAlertsTable,
		ReferenceId:    alert.ID,
		PropertyId:     alert.PropertyId,
		Message:        alert.AlertMessage,
		CreatedAt:      alert.CreatedAt,
	})
	return &alert, nil
}

// DismissWaterUtilityAlert deactivates an alert. Dismissing an inactive alert is a
// no-op so the first dismissal's audit fields survive.
func DismissWaterUtilityAlert(ctx context.Context, organizationId string, id int, dismissedBy *int, actionTaken *string) (*WaterUtilityAlert, error) {
	existing, err := utils.FetchModel[WaterUtilityAlert](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if !utils.DereferencePtr(existing.IsActive, true) {
		return existing, nil
	}
	if dismissedBy == nil {
		dismissedBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{
		"is_active":    false,
		"dismissed_at": now(),
	}
	if dismissedBy != nil {
		updates["dismissed_by"] = *dismissedBy
	}
	if actionTaken != nil {
		updates["action_taken"] = *actionTaken
	}
	// a concurrent dismissal wins; ours becomes a no-op
	guard := utils.NotEqualOrNull(waterUtilityAlertsTable, "is_active", false)
	if _, err := utils.TransitionScoped[WaterUtilityAlert](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[WaterUtilityAlert](ctx, organizationId, id)
}

func missingBillMessage(days int) string {
	return fmt.Sprintf("No water bills logged for %d days. Did you have an emergency truck delivery?", days)
}

// ScanMissingWaterBills raises an emergency_prompt alert for every property whose
// last bill is older than its bill cycle plus threshold. Properties with an active
// prompt are skipped. When no bill was ever logged the setting's creation time is
// the baseline.
func ScanMissingWaterBills(ctx context.Context, organizationId string, at time.Time) ([]*WaterUtilityAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	settings, err := ListPropertyWaterSettings(ctx, organizationId, nil)
	if err != nil {
		return nil, err
	}
	bills, err := ListWaterUtilityBills(ctx, organizationId, WaterUtilityBillFilter{})
	if err != nil {
		return nil, err
	}
	lastBill := make(map[int]time.Time)
	for _, b := range bills {
		if b.PropertyId == nil {
			continue
		}
		if last, ok := lastBill[*b.PropertyId]; !ok || b.BillDate.After(last) {
			lastBill[*b.PropertyId] = b.BillDate
		}
	}
	promptType := WaterAlertEmergencyPrompt
	active, err := ListWaterUtilityAlerts(ctx, organizationId, WaterUtilityAlertFilter{
		AlertType: &promptType,
		IsActive:  utils.NewTrue(),
	})
	if err != nil {
		return nil, err
	}
	prompted := make(map[int]bool)
	for _, a := range active {
		if a.PropertyId != nil {
			prompted[*a.PropertyId] = true
		}
	}

	created := make([]*WaterUtilityAlert, 0)
	for _, s := range settings {
		if !utils.DereferencePtr(s.AutoAlertEnabled, true) || prompted[s.PropertyId] {
			continue
		}
		baseline, ok := lastBill[s.PropertyId]
		if !ok {
			baseline = s.CreatedAt
		}
		days := utils.DaysBetween(baseline, at)
		if days <= s.ExpectedBillCycle+s.AlertThresholdDays {
			continue
		}
		propertyId := s.PropertyId
		expected := dateOnly(baseline.AddDate(0, 0, s.ExpectedBillCycle))
		alert, err := CreateWaterUtilityAlert(ctx, organizationId, &NewWaterUtilityAlert{
			PropertyId:        &propertyId,
			AlertType:         WaterAlertEmergencyPrompt,
			AlertDate:         &at,
			ExpectedBillDate:  &expected,
			DaysSinceLastBill: &days,
			AlertMessage:      missingBillMessage(days),
		})
		if err != nil {
			return created, err
		}
		prompted[propertyId] = true
		created = append(created, alert)
	}
	return created, nil
}
