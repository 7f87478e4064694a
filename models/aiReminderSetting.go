package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"gorm.io/datatypes"
)

const aiReminderSettingsTable = "ai_reminder_settings"

var notificationMethods = map[string]bool{"dashboard": true, "email": true, "whatsapp": true, "sms": true}

// AiReminderSetting tunes how often one reminder type recurs for a property,
// or for the whole organization when PropertyId is nil.
type AiReminderSetting struct {
	ID                  int               `gorm:"primary_key" json:"id"`
	OrganizationId      string            `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId          *int              `gorm:"index" json:"property_id"`
	AlertType           string            `gorm:"size:50;not null" json:"alert_type"`
	Enabled             *bool             `gorm:"not null;default:true" json:"enabled"`
	IntervalDays        int               `gorm:"not null" json:"interval_days"`
	ReminderDaysBefore  int               `gorm:"not null;default:0" json:"reminder_days_before"`
	AutoCreateTasks     *bool             `gorm:"not null;default:false" json:"auto_create_tasks"`
	NotificationMethods datatypes.JSON    `json:"notification_methods"`
	CustomRules         datatypes.JSONMap `json:"custom_rules"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AiReminderSetting) TableName() string { return aiReminderSettingsTable }

type NewAiReminderSetting struct {
	PropertyId          *int                   `json:"property_id"`
	AlertType           string                 `json:"alert_type" binding:"required"`
	Enabled             *bool                  `json:"enabled"`
	IntervalDays        int                    `json:"interval_days" binding:"required"`
	ReminderDaysBefore  int                    `json:"reminder_days_before"`
	AutoCreateTasks     *bool                  `json:"auto_create_tasks"`
	NotificationMethods []string               `json:"notification_methods"`
	CustomRules         map[string]interface{} `json:"custom_rules"`
}

type AiReminderSettingUpdate struct {
	Enabled             *bool                  `json:"enabled"`
	IntervalDays        *int                   `json:"interval_days"`
	ReminderDaysBefore  *int                   `json:"reminder_days_before"`
	AutoCreateTasks     *bool                  `json:"auto_create_tasks"`
	NotificationMethods []string               `json:"notification_methods"`
	CustomRules         map[string]interface{} `json:"custom_rules"`
}

func validateReminderWindow(interval, before int) error {
	if interval <= 0 {
		return utils.NewInputError("interval days must be positive")
	}
	if before < 0 || before >= interval {
		return utils.NewInputError("reminder days must be within the interval")
	}
	return nil
}

// encodeMethods defaults to the dashboard only.
func encodeMethods(methods []string) (datatypes.JSON, error) {
	if len(methods) == 0 {
		methods = []string{"dashboard"}
	}
	for i, m := range methods {
		m = strings.ToLower(strings.TrimSpace(m))
		if !notificationMethods[m] {
			return nil, utils.NewInputError("invalid notification method " + m)
		}
		methods[i] = m
	}
	raw, err := json.Marshal(methods)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func ListAiReminderSettings(ctx context.Context, organizationId string, propertyId *int) ([]*AiReminderSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = aiReminderSettingsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", propertyId),
	)
	return listScoped[AiReminderSetting](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateAiReminderSetting(ctx context.Context, organizationId string, input *NewAiReminderSetting) (*AiReminderSetting, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.AlertType) == "" {
		return nil, utils.NewInputError("alert type is required")
	}
	if err := validateReminderWindow(input.IntervalDays, input.ReminderDaysBefore); err != nil {
		return nil, err
	}
	methods, err := encodeMethods(input.NotificationMethods)
	if err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	setting := AiReminderSetting{
		OrganizationId:      organizationId,
		PropertyId:          input.PropertyId,
		AlertType:           strings.TrimSpace(input.AlertType),
		Enabled:             utils.Ptr(utils.DereferencePtr(input.Enabled, true)),
		IntervalDays:        input.IntervalDays,
		ReminderDaysBefore:  input.ReminderDaysBefore,
		AutoCreateTasks:     utils.Ptr(utils.DereferencePtr(input.AutoCreateTasks)),
		NotificationMethods: methods,
		CustomRules:         datatypes.JSONMap(input.CustomRules),
	}
	return createScoped(ctx, &setting)
}

func UpdateAiReminderSetting(ctx context.Context, organizationId string, id int, input *AiReminderSettingUpdate) (*AiReminderSetting, error) {
	existing, err := utils.FetchModel[AiReminderSetting](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.Enabled != nil {
		updates["enabled"] = *input.Enabled
	}
	if input.IntervalDays != nil || input.ReminderDaysBefore != nil {
		interval := utils.DereferencePtr(input.IntervalDays, existing.IntervalDays)
		before := utils.DereferencePtr(input.ReminderDaysBefore, existing.ReminderDaysBefore)
		if err := validateReminderWindow(interval, before); err != nil {
			return nil, err
		}
		updates["interval_days"] = interval
		updates["reminder_days_before"] = before
	}
	if input.AutoCreateTasks != nil {
		updates["auto_create_tasks"] = *input.AutoCreateTasks
	}
	if input.NotificationMethods != nil {
		methods, err := encodeMethods(input.NotificationMethods)
		if err != nil {
			return nil, err
		}
		updates["notification_methods"] = methods
	}
	if input.CustomRules != nil {
		updates["custom_rules"] = datatypes.JSONMap(input.CustomRules)
	}
	if err := utils.UpdateScoped[AiReminderSetting](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[AiReminderSetting](ctx, organizationId, id)
}
