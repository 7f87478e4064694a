package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const targetSuggestionsTable = "target_upgrade_suggestions"

type TargetSuggestion struct {
	ID              int              `gorm:"primary_key" json:"id"`
	OrganizationId  string           `gorm:"size:36;index;not null" json:"organization_id"`
	PropertyId      *int             `gorm:"index" json:"property_id"`
	TargetId        *int             `json:"target_id"`
	UpgradeId       *int             `json:"upgrade_id"`
	SuggestionType  string           `gorm:"size:50;not null" json:"suggestion_type"`
	Title           string           `gorm:"size:200;not null" json:"title"`
	Message         string           `gorm:"type:text;not null" json:"message"`
	SuggestedAction *string          `gorm:"type:text" json:"suggested_action"`
	Confidence      *decimal.Decimal `gorm:"type:decimal(3,2)" json:"confidence"`
	Metadata        json.RawMessage  `gorm:"type:json" json:"metadata"`
	IsRead          *bool            `gorm:"not null;default:false" json:"is_read"`
	IsDismissed     *bool            `gorm:"not null;default:false" json:"is_dismissed"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (TargetSuggestion) TableName() string { return targetSuggestionsTable }

type NewTargetSuggestion struct {
	PropertyId      *int             `json:"property_id"`
	TargetId        *int             `json:"target_id"`
	UpgradeId       *int             `json:"upgrade_id"`
	SuggestionType  string           `json:"suggestion_type" binding:"required"`
	Title           string           `json:"title" binding:"required"`
	Message         string           `json:"message" binding:"required"`
	SuggestedAction *string          `json:"suggested_action"`
	Confidence      *decimal.Decimal `json:"confidence"`
	Metadata        json.RawMessage  `json:"metadata"`
}

type TargetSuggestionFilter struct {
	PropertyId     *int
	SuggestionType *string
	IsRead         *bool
	IsDismissed    *bool
}

func ListTargetSuggestions(ctx context.Context, organizationId string, filter TargetSuggestionFilter) ([]*TargetSuggestion, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = targetSuggestionsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "suggestion_type", filter.SuggestionType),
		utils.OptionalEq(t, "is_read", filter.IsRead),
		utils.OptionalEq(t, "is_dismissed", filter.IsDismissed),
	)
	return listScoped[TargetSuggestion](ctx, preds, utils.OrderDesc(t, "created_at"), utils.OrderDesc(t, "id"))
}

func CreateTargetSuggestion(ctx context.Context, organizationId string, input *NewTargetSuggestion) (*TargetSuggestion, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, utils.NewInputError("title and message are required")
	}
	if input.Confidence != nil && (input.Confidence.IsNegative() || input.Confidence.GreaterThan(decimal.NewFromInt(1))) {
		return nil, utils.NewInputError("confidence must be between 0 and 1")
	}
	if len(input.Metadata) > 0 && !json.Valid(input.Metadata) {
		return nil, utils.NewInputError("metadata must be valid json")
	}
	if err := validatePropertyRef(ctx, organizationId, input.PropertyId); err != nil {
		return nil, err
	}
	if err := validateRef[RevenueTarget](ctx, organizationId, input.TargetId, "target"); err != nil {
		return nil, err
	}
	if err := validateRef[UpgradeItem](ctx, organizationId, input.UpgradeId, "upgrade"); err != nil {
		return nil, err
	}
	suggestion := TargetSuggestion{
		OrganizationId:  organizationId,
		PropertyId:      input.PropertyId,
		TargetId:        input.TargetId,
		UpgradeId:       input.UpgradeId,
		SuggestionType:  input.SuggestionType,
		Title:           strings.TrimSpace(input.Title),
		Message:         input.Message,
		SuggestedAction: input.SuggestedAction,
		Confidence:      input.Confidence,
		Metadata:        input.Metadata,
		IsRead:          utils.NewFalse(),
		IsDismissed:     utils.NewFalse(),
	}
	if _, err := createScoped(ctx, &suggestion); err != nil {
		return nil, err
	}
	publishAlert(ctx, config.AlertMessage{
		OrganizationId: organizationId,
		AlertType:      suggestion.SuggestionType,
		ReferenceType:  targetSuggestionsTable,
		ReferenceId:    suggestion.ID,
		PropertyId:     suggestion.PropertyId,
		Message:        suggestion.Title,
		CreatedAt:      suggestion.CreatedAt,
	})
	return &suggestion, nil
}

func MarkTargetSuggestionRead(ctx context.Context, organizationId string, id int) (*TargetSuggestion, error) {
	return setSuggestionFlag(ctx, organizationId, id, "is_read", func(s *TargetSuggestion) bool {
		return utils.DereferencePtr(s.IsRead)
	})
}

func DismissTargetSuggestion(ctx context.Context, organizationId string, id int) (*TargetSuggestion, error) {
	return setSuggestionFlag(ctx, organizationId, id, "is_dismissed", func(s *TargetSuggestion) bool {
		return utils.DereferencePtr(s.IsDismissed)
	})
}

func setSuggestionFlag(ctx context.Context, organizationId string, id int, column string, isSet func(*TargetSuggestion) bool) (*TargetSuggestion, error) {
	existing, err := utils.FetchModel[TargetSuggestion](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if isSet(existing) {
		return existing, nil
	}
	guard := utils.NotEqualOrNull(targetSuggestionsTable, column, true)
	if _, err := utils.TransitionScoped[TargetSuggestion](ctx, organizationId, id, map[string]interface{}{column: true}, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[TargetSuggestion](ctx, organizationId, id)
}
