package models

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

const aiNotificationsTable = "ai_notifications"

// AiNotification is a maintenance or billing reminder raised for a property,
// either by a pattern detector or by hand. Priority uses the severity scale.
type AiNotification struct {
	ID                int                `gorm:"primary_key" json:"id"`
	OrganizationId    string             `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId        *int               `gorm:"index" json:"property_id"`
	AlertType         string             `gorm:"size:50;not null" json:"alert_type"`
	Title             string             `gorm:"size:200;not null" json:"title"`
	Description       string             `gorm:"type:text;not null" json:"description"`
	Priority          Severity           `gorm:"size:20;not null;default:medium" json:"priority"`
	Status            NotificationStatus `gorm:"size:20;not null;default:active" json:"status"`
	DueDate           *time.Time         `json:"due_date"`
	SnoozeUntil       *time.Time         `json:"snooze_until"`
	LastServiceDate   *time.Time         `json:"last_service_date"`
	EstimatedNextDate *time.Time         `json:"estimated_next_date"`
	AiConfidence      *decimal.Decimal   `gorm:"type:decimal(3,2)" json:"ai_confidence"`
	SourceType        *string            `gorm:"size:50" json:"source_type"`
	SourceId          *string            `gorm:"size:100" json:"source_id"`
	VisibleToRoles    datatypes.JSON     `json:"visible_to_roles"`
	AssignedTo        *int               `json:"assigned_to"`
	CreatedBy         *int               `json:"created_by"`
	ActionTaken       *bool              `gorm:"not null;default:false" json:"action_taken"`
	ActionTakenBy     *int               `json:"action_taken_by"`
	ActionTakenAt     *time.Time         `json:"action_taken_at"`
	ActionNotes       *string            `gorm:"type:text" json:"action_notes"`
	CreatedAt         time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AiNotification) TableName() string { return aiNotificationsTable }

// Roles decodes VisibleToRoles; an empty list means every role may see it.
// Admins see every notification.
func (n *AiNotification) Roles() []UserRole {
	roles := make([]UserRole, 0)
	if len(n.VisibleToRoles) == 0 {
		return roles
	}
	_ = json.Unmarshal(n.VisibleToRoles, &roles)
	return roles
}

func (n *AiNotification) visibleTo(role UserRole) bool {
	roles := n.Roles()
	if len(roles) == 0 || role == UserRoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type NewAiNotification struct {
	PropertyId        *int             `json:"property_id"`
	AlertType         string           `json:"alert_type" binding:"required"`
	Title             string           `json:"title" binding:"required"`
	Description       string           `json:"description"`
	Priority          Severity         `json:"priority"`
	DueDate           *time.Time       `json:"due_date"`
	LastServiceDate   *time.Time       `json:"last_service_date"`
	EstimatedNextDate *time.Time       `json:"estimated_next_date"`
	AiConfidence      *decimal.Decimal `json:"ai_confidence"`
	SourceType        *string          `json:"source_type"`
	SourceId          *string          `json:"source_id"`
	VisibleToRoles    []UserRole       `json:"visible_to_roles"`
	AssignedTo        *int             `json:"assigned_to"`
}

type AiNotificationUpdate struct {
	Title          *string             `json:"title"`
	Description    *string             `json:"description"`
	Priority       *Severity           `json:"priority"`
	Status         *NotificationStatus `json:"status"`
	DueDate        *time.Time          `json:"due_date"`
	SnoozeUntil    *time.Time          `json:"snooze_until"`
	VisibleToRoles []UserRole          `json:"visible_to_roles"`
	AssignedTo     *int                `json:"assigned_to"`
	ActionNotes    *string             `json:"action_notes"`
}

type AiNotificationFilter struct {
	PropertyId    *int
	AlertType     *string
	Status        *NotificationStatus
	Priority      *Severity
	VisibleToRole *UserRole
}

var (
	one                  = decimal.NewFromInt(1)
	errNotificationMoved = utils.NewInputError("notification status changed meanwhile, reload and retry")
)

func encodeRoles(roles []UserRole) (datatypes.JSON, error) {
	for _, r := range roles {
		if !r.IsValid() {
			return nil, errInvalidRole
		}
	}
	if roles == nil {
		roles = []UserRole{}
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ListAiNotifications filters by role in Go since roles are stored as a JSON list.
func ListAiNotifications(ctx context.Context, organizationId string, filter AiNotificationFilter) ([]*AiNotification, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = aiNotificationsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "alert_type", filter.AlertType),
		utils.OptionalEq(t, "status", filter.Status),
		utils.OptionalEq(t, "priority", filter.Priority),
	)
	rows, err := listScoped[AiNotification](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
	if err != nil || filter.VisibleToRole == nil {
		return rows, err
	}
	visible := make([]*AiNotification, 0, len(rows))
	for _, n := range rows {
		if n.visibleTo(*filter.VisibleToRole) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

func GetAiNotification(ctx context.Context, organizationId string, id int) (*AiNotification, error) {
	return utils.FetchModel[AiNotification](ctx, organizationId, id)
}

func CreateAiNotification(ctx context.Context, organizationId string, input *NewAiNotification) (*AiNotification, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.AlertType) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, utils.NewInputError("alert type and title are required")
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, errInvalidPriority
	}
	if input.AiConfidence != nil && (input.AiConfidence.IsNegative() || input.AiConfidence.GreaterThan(one)) {
		return nil, utils.NewInputError("confidence must be between 0 and 1")
	}
	roles, err := encodeRoles(input.VisibleToRoles)
	if err != nil {
		return nil, err
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateRef[User](ctx, organizationId, input.AssignedTo, "assignee"); err != nil {
		return nil, err
	}
	notification := AiNotification{
		OrganizationId:    organizationId,
		PropertyId:        input.PropertyId,
		AlertType:         strings.TrimSpace(input.AlertType),
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		Priority:          utils.DereferencePtr(utils.NilIfEmpty(input.Priority), SeverityMedium),
		Status:            NotificationActive,
		DueDate:           input.DueDate,
		LastServiceDate:   input.LastServiceDate,
		EstimatedNextDate: input.EstimatedNextDate,
		AiConfidence:      input.AiConfidence,
		SourceType:        input.SourceType,
		SourceId:          input.SourceId,
		VisibleToRoles:    roles,
		AssignedTo:        input.AssignedTo,
		CreatedBy:         utils.GetActorIdFromContext(ctx),
		ActionTaken:       utils.NewFalse(),
	}
	if _, err := createScoped(ctx, &notification); err != nil {
		return nil, err
	}
	if err := recordNotificationHistory(ctx, organizationId, notification.ID, HistoryCreated, nil, &notification.Status, nil); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      notification.AlertType,
		ReferenceType:  aiNotificationsTable,
		ReferenceId:    notification.ID,
		PropertyId:     notification.PropertyId,
		Severity:       string(notification.Priority),
		Message:        notification.Title,
		CreatedAt:      notification.CreatedAt,
	})
	return &notification, nil
}

// UpdateAiNotification writes a history row when the status changes. Moving to
// resolved also records who acted.
func UpdateAiNotification(ctx context.Context, organizationId string, id int, input *AiNotificationUpdate) (*AiNotification, error) {
	existing, err := utils.FetchModel[AiNotification](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, utils.NewInputError("title is required")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, errInvalidPriority
		}
		updates["priority"] = *input.Priority
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.SnoozeUntil != nil {
		updates["snooze_until"] = *input.SnoozeUntil
	}
	if input.VisibleToRoles != nil {
		roles, err := encodeRoles(input.VisibleToRoles)
		if err != nil {
			return nil, err
		}
		updates["visible_to_roles"] = roles
	}
	if input.AssignedTo != nil {
		if err := validateRef[User](ctx, organizationId, input.AssignedTo, "assignee"); err != nil {
			return nil, err
		}
		updates["assigned_to"] = *input.AssignedTo
	}
	if input.ActionNotes != nil {
		updates["action_notes"] = *input.ActionNotes
	}
	statusChanged := input.Status != nil && *input.Status != existing.Status
	if statusChanged {
		if !input.Status.IsValid() {
			return nil, errInvalidStatus
		}
		updates["status"] = *input.Status
		if *input.Status == NotificationResolved {
			updates["action_taken"] = true
			updates["action_taken_at"] = now()
			if actor := utils.GetActorIdFromContext(ctx); actor != nil {
				updates["action_taken_by"] = *actor
			}
		}
	}
	if !statusChanged {
		if err := utils.UpdateScoped[AiNotification](ctx, organizationId, id, updates); err != nil {
			return nil, err
		}
		return utils.FetchModel[AiNotification](ctx, organizationId, id)
	}
	// status must still be the one we read
	guard := clause.Eq{Column: utils.Col(aiNotificationsTable, "status"), Value: existing.Status}
	changed, err := utils.TransitionScoped[AiNotification](ctx, organizationId, id, updates, guard)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, errNotificationMoved
	}
	if err := recordNotificationHistory(ctx, organizationId, id, HistoryStatusChanged, &existing.Status, input.Status, input.ActionNotes); err != nil {
		return nil, err
	}
	return utils.FetchModel[AiNotification](ctx, organizationId, id)
}

// SnoozeAiNotification hides an active notification until the given time.
func SnoozeAiNotification(ctx context.Context, organizationId string, id int, until time.Time) (*AiNotification, error) {
	if !until.After(now()) {
		return nil, utils.NewInputError("snooze must end in the future")
	}
	status := NotificationSnoozed
	return UpdateAiNotification(ctx, organizationId, id, &AiNotificationUpdate{Status: &status, SnoozeUntil: &until})
}

func ResolveAiNotification(ctx context.Context, organizationId string, id int, notes *string) (*AiNotification, error) {
	status := NotificationResolved
	return UpdateAiNotification(ctx, organizationId, id, &AiNotificationUpdate{Status: &status, ActionNotes: notes})
}

func DeleteAiNotification(ctx context.Context, organizationId string, id int) (*AiNotification, error) {
	existing, err := utils.FetchModel[AiNotification](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[AiNotification](ctx, organizationId, id); err != nil {
		return nil, err
	}
	if err := recordNotificationHistory(ctx, organizationId, id, HistoryDeleted, &existing.Status, nil, nil); err != nil {
		return nil, err
	}
	return existing, nil
}

type NotificationCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type AiNotificationStats struct {
	Total        int                  `json:"total"`
	Active       int                  `json:"active"`
	Overdue      int                  `json:"overdue"`
	HighPriority int                  `json:"highPriority"`
	ByType       []*NotificationCount `json:"byType"`
	ByPriority   []*NotificationCount `json:"byPriority"`
}

func countsOf(counts map[string]int) []*NotificationCount {
	result := make([]*NotificationCount, 0, len(counts))
	for k, v := range counts {
		result = append(result, &NotificationCount{Key: k, Count: v})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// GetAiNotificationStats counts notifications. Overdue means active with a due
// date before at; high priority covers high and critical.
func GetAiNotificationStats(ctx context.Context, organizationId string, propertyId *int, at time.Time) (*AiNotificationStats, error) {
	rows, err := ListAiNotifications(ctx, organizationId, AiNotificationFilter{PropertyId: propertyId})
	if err != nil {
		return nil, err
	}
	stats := AiNotificationStats{Total: len(rows)}
	byType := make(map[string]int)
	byPriority := make(map[string]int)
	for _, n := range rows {
		if n.Status == NotificationActive {
			stats.Active++
			if n.DueDate != nil && n.DueDate.Before(at) {
				stats.Overdue++
			}
		}
		if n.Priority == SeverityHigh || n.Priority == SeverityCritical {
			stats.HighPriority++
		}
		byType[n.AlertType]++
		byPriority[string(n.Priority)]++
	}
	stats.ByType = countsOf(byType)
	stats.ByPriority = countsOf(byPriority)
	return &stats, nil
}
