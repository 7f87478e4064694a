package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const utilityNotificationsTable = "utility_notifications"

type UtilityNotification struct {
	ID               int        `gorm:"primary_key" json:"id"`
	OrganizationId   string     `gorm:"size:36;index;not null" json:"organization_id"`
	UtilityId        *int       `gorm:"index" json:"utility_id"`
	PropertyId       *int       `gorm:"index" json:"property_id"`
	RecipientUserId  *int       `gorm:"index" json:"recipient_user_id"`
	RecipientRole    *UserRole  `gorm:"size:30" json:"recipient_role"`
	NotificationType string     `gorm:"size:50;not null" json:"notification_type"`
	Severity         Severity   `gorm:"size:20;not null;default:medium" json:"severity"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	ActionRequired   *bool      `gorm:"not null;default:false" json:"action_required"`
	IsRead           *bool      `gorm:"not null;default:false" json:"is_read"`
	ReadBy           *int       `json:"read_by"`
	ReadAt           *time.Time `json:"read_at"`
	ActionTaken      *bool      `gorm:"not null;default:false" json:"action_taken"`
	ActionTakenBy    *int       `json:"action_taken_by"`
	ActionTakenAt    *time.Time `json:"action_taken_at"`
	ActionNotes      *string    `gorm:"type:text" json:"action_notes"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (UtilityNotification) TableName() string { return utilityNotificationsTable }

type NewUtilityNotification struct {
	UtilityId        *int      `json:"utility_id"`
	PropertyId       *int      `json:"property_id"`
	RecipientUserId  *int      `json:"recipient_user_id"`
	RecipientRole    *UserRole `json:"recipient_role"`
	NotificationType string    `json:"notification_type" binding:"required"`
	Severity         Severity  `json:"severity"`
	Title            string    `json:"title" binding:"required"`
	Message          string    `json:"message" binding:"required"`
	ActionRequired   *bool     `json:"action_required"`
}

type UtilityNotificationFilter struct {
	RecipientUserId  *int
	RecipientRole    *UserRole
	NotificationType *string
	IsRead           *bool
	ActionRequired   *bool
	Severity         *Severity
}

func ListUtilityNotifications(ctx context.Context, organizationId string, filter UtilityNotificationFilter) ([]*UtilityNotification, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = utilityNotificationsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "recipient_user_id", filter.RecipientUserId),
		utils.OptionalEq(t, "recipient_role", filter.RecipientRole),
		utils.OptionalEq(t, "notification_type", filter.NotificationType),
		utils.OptionalEq(t, "is_read", filter.IsRead),
		utils.OptionalEq(t, "action_required", filter.ActionRequired),
		utils.OptionalEq(t, "severity", filter.Severity),
	)
	return listScoped[UtilityNotification](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateUtilityNotification(ctx context.Context, organizationId string, input *NewUtilityNotification) (*UtilityNotification, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, utils.NewInputError("title and message are required")
	}
	if input.Severity != "" && !input.Severity.IsValid() {
		return nil, errInvalidSeverity
	}
	if input.RecipientRole != nil && !input.RecipientRole.IsValid() {
		return nil, errInvalidRole
	}
	if err := validateRef[PropertyUtility](ctx, organizationId, input.UtilityId, "utility"); err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateRef[User](ctx, organizationId, input.RecipientUserId, "recipient"); err != nil {
		return nil, err
	}
	notification := UtilityNotification{
		OrganizationId:   organizationId,
		UtilityId:        input.UtilityId,
		PropertyId:       input.PropertyId,
		RecipientUserId:  input.RecipientUserId,
		RecipientRole:    input.RecipientRole,
		NotificationType: input.NotificationType,
		Severity:         utils.DereferencePtr(utils.NilIfEmpty(input.Severity), SeverityMedium),
		Title:            strings.TrimSpace(input.Title),
		Message:          input.Message,
		ActionRequired:   utils.Ptr(utils.DereferencePtr(input.ActionRequired)),
		IsRead:           utils.NewFalse(),
		ActionTaken:      utils.NewFalse(),
	}
	if _, err := createScoped(ctx, &notification); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      notification.NotificationType,
		ReferenceType:  utilityNotificationsTable,
		ReferenceId:    notification.ID,
		PropertyId:     notification.PropertyId,
		Severity:       string(notification.Severity),
		Message:        notification.Title,
		CreatedAt:      notification.CreatedAt,
	})
	return &notification, nil
}

// MarkUtilityNotificationRead keeps the first reader.
func MarkUtilityNotificationRead(ctx context.Context, organizationId string, id int, readBy *int) (*UtilityNotification, error) {
	existing, err := utils.FetchModel[UtilityNotification](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsRead) {
		return existing, nil
	}
	if readBy == nil {
		readBy = utils.GetActorIdFromContext(ctx)
	}
	updates := map[string]interface{}{"is_read": true, "read_at": now()}
	if readBy != nil {
		updates["read_by"] = *readBy
	}
	guard := utils.NotEqualOrNull(utilityNotificationsTable, "is_read", true)
	if _, err := utils.TransitionScoped[UtilityNotification](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[UtilityNotification](ctx, organizationId, id)
}

// MarkUtilityNotificationActionTaken also marks the notification read. The
// first recorded action is kept.
func MarkUtilityNotificationActionTaken(ctx context.Context, organizationId string, id int, takenBy *int, notes *string) (*UtilityNotification, error) {
	existing, err := utils.FetchModel[UtilityNotification](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.ActionTaken) {
		return existing, nil
	}
	if takenBy == nil {
		takenBy = utils.GetActorIdFromContext(ctx)
	}
	at := now()
	updates := map[string]interface{}{
		"action_taken":    true,
		"action_taken_at": at,
		"is_read":         true,
	}
	if existing.ReadAt == nil {
		updates["read_at"] = at
	}
	if takenBy != nil {
		updates["action_taken_by"] = *takenBy
	}
	if notes != nil {
		updates["action_notes"] = *notes
	}
	guard := utils.NotEqualOrNull(utilityNotificationsTable, "action_taken", true)
	if _, err := utils.TransitionScoped[UtilityNotification](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[UtilityNotification](ctx, organizationId, id)
}
