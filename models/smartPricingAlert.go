package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const smartPricingAlertsTable = "smart_pricing_alerts"

type SmartPricingAlert struct {
	ID              int        `gorm:"primary_key" json:"id"`
	OrganizationId  string     `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      *int       `gorm:"index" json:"property_id"`
	AlertType       string     `gorm:"size:50;not null" json:"alert_type"`
	Severity        Severity   `gorm:"size:20;not null;default:medium" json:"severity"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Message         string     `gorm:"type:text;not null" json:"message"`
	SuggestedAction *string    `gorm:"type:text" json:"suggested_action"`
	IsRead          *bool      `gorm:"not null;default:false" json:"is_read"`
	IsResolved      *bool      `gorm:"not null;default:false" json:"is_resolved"`
	ResolvedBy      *int       `json:"resolved_by"`
	ResolvedDate    *time.Time `json:"resolved_date"`
	ActionTaken     *string    `gorm:"type:text" json:"action_taken"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (SmartPricingAlert) TableName() string { return smartPricingAlertsTable }

type SmartPricingAlertWithProperty struct {
	SmartPricingAlert
	PropertyName *string `json:"property_name"`
}

type NewSmartPricingAlert struct {
	PropertyId      *int     `json:"property_id"`
	AlertType       string   `json:"alert_type" binding:"required"`
	Severity        Severity `json:"severity"`
	Title           string   `json:"title" binding:"required"`
	Message         string   `json:"message" binding:"required"`
	SuggestedAction *string  `json:"suggested_action"`
}

type SmartPricingAlertFilter struct {
	PropertyId *int
	AlertType  *string
	Severity   *Severity
	IsRead     *bool
	IsResolved *bool
}

func ListSmartPricingAlerts(ctx context.Context, organizationId string, filter SmartPricingAlertFilter) ([]*SmartPricingAlertWithProperty, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = smartPricingAlertsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "alert_type", filter.AlertType),
		utils.OptionalEq(t, "severity", filter.Severity),
		utils.OptionalEq(t, "is_read", filter.IsRead),
		utils.OptionalEq(t, "is_resolved", filter.IsResolved),
	)
	return listWithProperty[SmartPricingAlertWithProperty](ctx, &SmartPricingAlert{}, t, preds,
		utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateSmartPricingAlert(ctx context.Context, organizationId string, input *NewSmartPricingAlert) (*SmartPricingAlert, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, utils.NewInputError("title and message are required")
	}
	if input.Severity != "" && !input.Severity.IsValid() {
		return nil, errInvalidSeverity
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	alert := SmartPricingAlert{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		AlertType:       input.AlertType,
		Severity:        utils.DereferencePtr(utils.NilIfEmpty(input.Severity), SeverityMedium),
		Title:           strings.TrimSpace(input.Title),
		Message:         input.Message,
		SuggestedAction: input.SuggestedAction,
		IsRead:          utils.NewFalse(),
		IsResolved:      utils.NewFalse(),
	}
	if _, err := createScoped(ctx, &alert); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      alert.AlertType,
		ReferenceType:  smartPricingAlertsTable,
		ReferenceId:    alert.ID,
		PropertyId:     alert.PropertyId,
		Severity:       string(alert.Severity),
		Message:        alert.Title,
		CreatedAt:      alert.CreatedAt,
	})
	return &alert, nil
}

func MarkSmartPricingAlertRead(ctx context.Context, organizationId string, id int) (*SmartPricingAlert, error) {
	existing, err := utils.FetchModel[SmartPricingAlert](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsRead) {
		return existing, nil
	}
	guard := utils.NotEqualOrNull(smartPricingAlertsTable, "is_read", true)
	if _, err := utils.TransitionScoped[SmartPricingAlert](ctx, organizationId, id, map[string]interface{}{"is_read": true}, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[SmartPricingAlert](ctx, organizationId, id)
}

// ResolveSmartPricingAlert also marks the alert read. Resolving twice keeps the first resolution.
func ResolveSmartPricingAlert(ctx context.Context, organizationId string, id int, resolvedBy *int, actionTaken *string) (*SmartPricingAlert, error) {
	existing, err := utils.FetchModel[SmartPricingAlert](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsResolved) {
		return existing, nil
	}
	if resolvedBy == nil {
		resolvedBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{
		"is_read":       true,
		"is_resolved":   true,
		"resolved_date": now(),
	}
	if resolvedBy != nil {
		updates["resolved_by"] = *resolvedBy
	}
	if actionTaken != nil {
		updates["action_taken"] = *actionTaken
	}
	guard := utils.NotEqualOrNull(smartPricingAlertsTable, "is_resolved", true)
	if _, err := utils.TransitionScoped[SmartPricingAlert](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[SmartPricingAlert](ctx, organizationId, id)
}
