package models_test

import (
	"encoding/json"
	"testing"

	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueTargetValidation(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")

	target, err := models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{
		PropertyId:    mango,
		TargetYear:    2026,
		TargetQuarter: utils.Ptr(3),
		TargetAmount:  dec("300000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "THB", target.Currency)
	assertDecimal(t, "0", target.CurrentRevenue)
	assert.True(t, *target.IsActive)

	_, err = models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2026, TargetQuarter: utils.Ptr(5), TargetAmount: dec("1")})
	assert.True(t, utils.IsInputError(err), "quarter out of range")
	_, err = models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2026})
	assert.True(t, utils.IsInputError(err), "zero target amount")

	otherCtx, other := newTenant(t, "harbour")
	_, err = models.CreateRevenueTarget(otherCtx, other, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2026, TargetAmount: dec("1")})
	assert.True(t, utils.IsInputError(err), "property of another organization")
}

func TestTargetProgressUpdatesLatestOnly(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	target, err := models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2026, TargetAmount: dec("100000")})
	require.NoError(t, err)

	first, err := models.CreateTargetProgress(ctx, org, &models.NewTargetProgress{TargetId: target.ID, RecordDate: utils.Ptr(daysAgo(5)), RevenueToDate: dec("40000")})
	require.NoError(t, err)
	assertDecimal(t, "40", first.ProgressPercentage)
	assert.Equal(t, mango, first.PropertyId)

	current, err := models.GetRevenueTarget(ctx, org, target.ID)
	require.NoError(t, err)
	assertDecimal(t, "40000", current.CurrentRevenue)

	// a backfilled record does not overwrite the newer figure
	_, err = models.CreateTargetProgress(ctx, org, &models.NewTargetProgress{TargetId: target.ID, RecordDate: utils.Ptr(daysAgo(10)), RevenueToDate: dec("30000")})
	require.NoError(t, err)
	current, err = models.GetRevenueTarget(ctx, org, target.ID)
	require.NoError(t, err)
	assertDecimal(t, "40000", current.CurrentRevenue)

	_, err = models.CreateTargetProgress(ctx, org, &models.NewTargetProgress{TargetId: target.ID, RecordDate: utils.Ptr(daysAgo(1)), RevenueToDate: dec("85000")})
	require.NoError(t, err)
	current, err = models.GetRevenueTarget(ctx, org, target.ID)
	require.NoError(t, err)
	assertDecimal(t, "85000", current.CurrentRevenue)
	assert.True(t, current.IsOnTrack())

	history, err := models.ListTargetProgress(ctx, org, target.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assertDecimal(t, "85000", history[0].RevenueToDate)

	_, err = models.CreateTargetProgress(ctx, org, &models.NewTargetProgress{TargetId: target.ID + 100, RevenueToDate: dec("1")})
	assert.True(t, utils.IsInputError(err))
}

func TestUpgradeOrderingAndTransitions(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")
	target, err := models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2026, TargetAmount: dec("100000"), Description: utils.Ptr("Year one")})
	require.NoError(t, err)

	create := func(name string, priority models.Priority, deadlineDaysAgo int) *models.UpgradeItem {
		item, err := models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{
			PropertyId:    mango,
			TargetId:      &target.ID,
			UpgradeName:   name,
			Priority:      priority,
			Deadline:      utils.Ptr(daysAgo(deadlineDaysAgo)),
			EstimatedCost: utils.Ptr(dec("15000")),
		})
		require.NoError(t, err)
		return item
	}
	create("Garden lights", models.PriorityLow, 30)
	late := create("Pool heater", models.PriorityHigh, -60)
	soon := create("Smart lock", models.PriorityHigh, -10)
	sofa := create("New sofa", models.PriorityMedium, -5)

	items, err := models.ListUpgradeItems(ctx, org, models.UpgradeItemFilter{PropertyId: &mango})
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.UpgradeName)
	}
	assert.Equal(t, []string{"Smart lock", "Pool heater", "New sofa", "Garden lights"}, names)
	assert.Equal(t, "Year one", *items[0].TargetDescription)
	assert.Equal(t, "Villa Mango", *items[0].PropertyName)

	approved, err := models.ApproveUpgradeItem(ctx, org, soon.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.UpgradeStatusConfirmed, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	again, err := models.ApproveUpgradeItem(ctx, org, soon.ID, utils.Ptr(9999))
	require.NoError(t, err)
	assert.Equal(t, *approved.ApprovedBy, *again.ApprovedBy)

	completed, err := models.CompleteUpgradeItem(ctx, org, soon.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UpgradeStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = models.ApproveUpgradeItem(ctx, org, soon.ID, nil)
	assert.True(t, utils.IsInputError(err), "approving a completed upgrade")

	cancelled := models.UpgradeStatusCancelled
	_, err = models.UpdateUpgradeItem(ctx, org, late.ID, &models.UpgradeItemUpdate{Status: &cancelled})
	require.NoError(t, err)
	_, err = models.CompleteUpgradeItem(ctx, org, late.ID)
	assert.True(t, utils.IsInputError(err), "completing a cancelled upgrade")

	direct, err := models.CompleteUpgradeItem(ctx, org, sofa.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UpgradeStatusCompleted, direct.Status)

	_, err = models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{PropertyId: lime, TargetId: &target.ID, UpgradeName: "Mismatch"})
	assert.True(t, utils.IsInputError(err), "target of another property")
	_, err = models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{PropertyId: mango, UpgradeName: "Bad", Priority: "urgent"})
	assert.True(t, utils.IsInputError(err), "unknown priority")
}

func TestTargetSuggestions(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")

	suggestion, err := models.CreateTargetSuggestion(ctx, org, &models.NewTargetSuggestion{
		PropertyId:     &mango,
		SuggestionType: "target_reached",
		Title:          "Target almost reached",
		Message:        "Revenue is at 90% of the yearly target",
		Confidence:     utils.Ptr(dec("0.85")),
		Metadata:       json.RawMessage(`{"progress":90}`),
	})
	require.NoError(t, err)
	assert.False(t, *suggestion.IsRead)

	_, err = models.CreateTargetSuggestion(ctx, org, &models.NewTargetSuggestion{
		SuggestionType: "target_reached", Title: "x", Message: "y", Confidence: utils.Ptr(dec("1.5")),
	})
	assert.True(t, utils.IsInputError(err), "confidence above one")
	_, err = models.CreateTargetSuggestion(ctx, org, &models.NewTargetSuggestion{
		SuggestionType: "target_reached", Title: "x", Message: "y", Metadata: json.RawMessage(`{broken`),
	})
	assert.True(t, utils.IsInputError(err), "invalid metadata")

	read, err := models.MarkTargetSuggestionRead(ctx, org, suggestion.ID)
	require.NoError(t, err)
	assert.True(t, *read.IsRead)
	assert.False(t, *read.IsDismissed)

	dismissed, err := models.DismissTargetSuggestion(ctx, org, suggestion.ID)
	require.NoError(t, err)
	assert.True(t, *dismissed.IsDismissed)
	_, err = models.DismissTargetSuggestion(ctx, org, suggestion.ID)
	require.NoError(t, err)

	unread, err := models.ListTargetSuggestions(ctx, org, models.TargetSuggestionFilter{IsRead: utils.NewFalse()})
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestTargetDashboardCounts(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	mango := newProperty(t, ctx, org, "Villa Mango")
	lime := newProperty(t, ctx, org, "Villa Lime")

	onTrack, err := models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{
		PropertyId: mango, TargetYear: 2026, TargetAmount: dec("100000"), CurrentRevenue: utils.Ptr(dec("85000")),
	})
	require.NoError(t, err)
	behind, err := models.CreateRevenueTarget(ctx, org, &models.NewRevenueTarget{PropertyId: mango, TargetYear: 2027, TargetAmount: dec("50000")})
	require.NoError(t, err)
	_, err = models.UpdateRevenueTarget(ctx, org, behind.ID, &models.RevenueTargetUpdate{IsActive: utils.NewFalse()})
	require.NoError(t, err)

	planned, err := models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{PropertyId: mango, TargetId: &onTrack.ID, UpgradeName: "Pool heater"})
	require.NoError(t, err)
	done, err := models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{PropertyId: mango, TargetId: &onTrack.ID, UpgradeName: "Smart lock"})
	require.NoError(t, err)
	_, err = models.CompleteUpgradeItem(ctx, org, done.ID)
	require.NoError(t, err)
	_, err = models.CreateUpgradeItem(ctx, org, &models.NewUpgradeItem{PropertyId: mango, UpgradeName: "Unlinked"})
	require.NoError(t, err)
	require.NotZero(t, planned.ID)

	for _, p := range []int{mango, mango, lime} {
		_, err := models.CreateTargetSuggestion(ctx, org, &models.NewTargetSuggestion{
			PropertyId: utils.Ptr(p), SuggestionType: "upgrade_ready", Title: "Upgrade ready", Message: "Trigger amount reached",
		})
		require.NoError(t, err)
	}
	suggestions, err := models.ListTargetSuggestions(ctx, org, models.TargetSuggestionFilter{PropertyId: &mango})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	_, err = models.MarkTargetSuggestionRead(ctx, org, suggestions[0].ID)
	require.NoError(t, err)

	dashboard, err := models.GetTargetDashboard(ctx, org, nil)
	require.NoError(t, err)
	assert.Equal(t, &models.TargetDashboard{
		TotalTargets:      2,
		ActiveTargets:     1,
		TargetsOnTrack:    1,
		TotalUpgrades:     2,
		PendingUpgrades:   1,
		CompletedUpgrades: 1,
		UnreadSuggestions: 1,
	}, dashboard)

	empty, err := models.GetTargetDashboard(ctx, org, &lime)
	require.NoError(t, err)
	assert.Equal(t, &models.TargetDashboard{}, empty)
}
