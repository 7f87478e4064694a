package models

import (
	"context"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/sirupsen/logrus"
)

// publishAlert notifies subscribers about a newly created alert row.
// Failures are logged and never returned; the alert row is the source of truth.
func publishAlert(ctx context.Context, msg config.AlertMessage) {
	if msg.CorrelationId == "" {
		if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok {
			msg.CorrelationId = cid
		}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	id, err := config.PublishAlert(ctx, msg)
	if err != nil {
		config.LogError(config.GetLogger(), "notifications.go", "publishAlert", msg.AlertType, msg, err)
		return
	}
	if id != "" {
		config.GetLogger().WithFields(logrus.Fields{
			"organization_id": msg.OrganizationId,
			"alert_type":      msg.AlertType,
			"reference_id":    msg.ReferenceId,
			"message_id":      id,
		}).Info("alert published")
	}
}
