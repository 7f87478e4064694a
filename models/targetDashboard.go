package models

import (
	"context"

	"github.com/hostpilotpro/hostpilot_backend/utils"
)

type TargetDashboard struct {
	TotalTargets      int `json:"totalTargets"`
	ActiveTargets     int `json:"activeTargets"`
	TargetsOnTrack    int `json:"targetsOnTrack"`
	TotalUpgrades     int `json:"totalUpgrades"`
	PendingUpgrades   int `json:"pendingUpgrades"`
	CompletedUpgrades int `json:"completedUpgrades"`
	UnreadSuggestions int `json:"unreadSuggestions"`
}

// GetTargetDashboard counts targets, the upgrades attached to them and the
// unread, undismissed suggestions for the properties that carry those targets.
func GetTargetDashboard(ctx context.Context, organizationId string, propertyId *int) (*TargetDashboard, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	targets, err := listScoped[RevenueTarget](ctx, utils.TenantScope(revenueTargetsTable, organizationId).With(
		utils.OptionalEq(revenueTargetsTable, "property_id", propertyId),
	))
	if err != nil {
		return nil, err
	}

	dashboard := &TargetDashboard{TotalTargets: len(targets)}
	targetIds := make(map[int]bool, len(targets))
	propertyIds := make(map[int]bool)
	for _, target := range targets {
		targetIds[target.ID] = true
		propertyIds[target.PropertyId] = true
		if utils.DereferencePtr(target.IsActive) {
			dashboard.ActiveTargets++
		}
		if target.IsOnTrack() {
			dashboard.TargetsOnTrack++
		}
	}
	if len(targets) == 0 {
		return dashboard, nil
	}

	upgrades, err := listScoped[UpgradeItem](ctx, utils.TenantScope(upgradeWishlistTable, organizationId).With(
		utils.OptionalEq(upgradeWishlistTable, "property_id", propertyId),
	))
	if err != nil {
		return nil, err
	}
	for _, upgrade := range upgrades {
		if upgrade.TargetId == nil || !targetIds[*upgrade.TargetId] {
			continue
		}
		dashboard.TotalUpgrades++
		switch upgrade.Status {
		case UpgradeStatusPlanned, UpgradeStatusConfirmed:
			dashboard.PendingUpgrades++
		case UpgradeStatusCompleted:
			dashboard.CompletedUpgrades++
		}
	}

	suggestions, err := listScoped[TargetSuggestion](ctx, utils.TenantScope(targetSuggestionsTable, organizationId).With(
		utils.OptionalEq(targetSuggestionsTable, "property_id", propertyId),
		utils.OptionalEq(targetSuggestionsTable, "is_read", utils.NewFalse()),
		utils.OptionalEq(targetSuggestionsTable, "is_dismissed", utils.NewFalse()),
	))
	if err != nil {
		return nil, err
	}
	for _, suggestion := range suggestions {
		if suggestion.PropertyId != nil && propertyIds[*suggestion.PropertyId] {
			dashboard.UnreadSuggestions++
		}
	}
	return dashboard, nil
}
