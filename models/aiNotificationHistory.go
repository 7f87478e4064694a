package models

import (
	"context"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

const aiNotificationHistoryTable = "ai_notification_history"

type HistoryAction string

const (
	HistoryCreated       HistoryAction = "created"
	HistoryStatusChanged HistoryAction = "status_changed"
	HistoryDeleted       HistoryAction = "deleted"
)

// AiNotificationHistory is append only; rows outlive their notification.
type AiNotificationHistory struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	OrganizationId string              `gorm:"size:36;index;not null" json:"organization_id"`
	NotificationId int                 `gorm:"index;not null" json:"notification_id"`
	Action         HistoryAction       `gorm:"size:30;not null" json:"action"`
	PreviousStatus *NotificationStatus `gorm:"size:20" json:"previous_status"`
	NewStatus      *NotificationStatus `gorm:"size:20" json:"new_status"`
	PerformedBy    *int                `json:"performed_by"`
	Notes          *string             `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (AiNotificationHistory) TableName() string { return aiNotificationHistoryTable }

func recordNotificationHistory(ctx context.Context, organizationId string, notificationId int, action HistoryAction, previous, next *NotificationStatus, notes *string) error {
	row := AiNotificationHistory{
		OrganizationId: organizationId,
		NotificationId: notificationId,
		Action:         action,
		PreviousStatus: previous,
		NewStatus:      next,
		PerformedBy:    utils.GetActorIdFromContext(ctx),
		Notes:          notes,
	}
	_, err := createScoped(ctx, &row)
	return err
}

// ListAiNotificationHistory returns the newest entries first, optionally for one notification.
func ListAiNotificationHistory(ctx context.Context, organizationId string, notificationId *int) ([]*AiNotificationHistory, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = aiNotificationHistoryTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "notification_id", notificationId),
	)
	return listScoped[AiNotificationHistory](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}
