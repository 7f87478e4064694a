package models_test

import (
	"testing"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownOwnerIsBadInput(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	otherCtx, other := newTenant(t, "harbour")
	foreignOwner, err := models.CreateUser(otherCtx, other, &models.NewUser{
		Username: "harbour-owner", Name: "Harbour Owner", Password: "password123", Role: models.UserRoleOwner,
	})
	require.NoError(t, err)

	_, err = models.CreateProperty(ctx, org, &models.NewProperty{Name: "Villa Mango", OwnerId: utils.Ptr(9999)})
	require.True(t, utils.IsInputError(err))
	assert.EqualError(t, err, "owner not found")

	mango := newProperty(t, ctx, org, "Villa Mango")
	_, err = models.UpdateProperty(ctx, org, mango, &models.PropertyUpdate{OwnerId: &foreignOwner.ID})
	require.True(t, utils.IsInputError(err))
	assert.NotErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestPropertySearchMatchesWildcardsLiterally(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")
	newProperty(t, ctx, org, "100% Villa")
	newProperty(t, ctx, org, "Villa Mango")
	newProperty(t, ctx, org, "Villa_Lime")

	rows, err := models.ListProperties(ctx, org, models.PropertyFilter{Search: utils.Ptr("%")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% Villa", rows[0].Name)

	rows, err = models.ListProperties(ctx, org, models.PropertyFilter{Search: utils.Ptr("_")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Villa_Lime", rows[0].Name)

	rows, err = models.ListProperties(ctx, org, models.PropertyFilter{Search: utils.Ptr("villa")})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReferenceLookupFailureIsNotBadInput(t *testing.T) {
	setupDB(t)
	ctx, org := newTenant(t, "sunset")

	_, err := models.CreateWaterUtilityBill(ctx, org, &models.NewWaterUtilityBill{BillDate: daysAgo(1), EmergencyDeliveryId: utils.Ptr(9999)})
	assert.True(t, utils.IsInputError(err))

	sqlDB, err := config.GetDB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = models.CreateEmergencyWaterDelivery(ctx, org, &models.NewEmergencyWaterDelivery{
		SupplierName: "Blue Truck Co",
		DeliveryDate: daysAgo(1),
		ProcessedBy:  utils.Ptr(1),
	})
	require.Error(t, err)
	assert.False(t, utils.IsInputError(err))

	_, err = models.CreateWaterUtilityBill(ctx, org, &models.NewWaterUtilityBill{
		BillDate:            daysAgo(1),
		EmergencyDeliveryId: utils.Ptr(1),
	})
	require.Error(t, err)
	assert.False(t, utils.IsInputError(err))
}
