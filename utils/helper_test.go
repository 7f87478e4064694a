package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	got, err := utils.FormatPhoneNumber("081 234 5678", "TH")
	require.NoError(t, err)
	assert.Equal(t, "+66812345678", got)

	got, err = utils.FormatPhoneNumber("+66 81 234 5678", "")
	require.NoError(t, err)
	assert.Equal(t, "+66812345678", got)

	_, err = utils.FormatPhoneNumber("12", "TH")
	assert.Error(t, err)
}

func TestProcessValidationErrors(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"Name": "required"}, utils.ProcessValidationErrors(err))

	assert.Equal(t, map[string]string{"body": "EOF"}, utils.ProcessValidationErrors(errors.New("EOF")))
}

func TestDereferenceHelpers(t *testing.T) {
	assert.Equal(t, "fallback", utils.DereferencePtr(nil, "fallback"))
	assert.Equal(t, 0, utils.DereferencePtr[int](nil))
	assert.Equal(t, "set", utils.DereferencePtr(utils.Ptr("set"), "fallback"))

	assert.Nil(t, utils.NilIfEmpty(""))
	assert.Equal(t, "x", *utils.NilIfEmpty("x"))
}

func TestOrganizationLockWithoutRedis(t *testing.T) {
	release := utils.OrganizationLock(context.Background(), "org-a", "water-bill-scan", time.Second)
	require.NotNil(t, release)
	release()
}

func TestInputErrors(t *testing.T) {
	err := utils.NewInputError("bad input")
	assert.True(t, utils.IsInputError(err))
	assert.True(t, utils.IsInputError(errors.Join(errors.New("context"), err)))
	assert.False(t, utils.IsInputError(utils.ErrorRecordNotFound))
	assert.ErrorIs(t, utils.RequireOrganization(""), utils.ErrorOrganizationRequired)
	assert.NoError(t, utils.RequireOrganization("org-a"))
}

func TestJwtRoundTrip(t *testing.T) {
	token, err := utils.JwtGenerate(42, "org-a", "Ann", "portfolio_manager")
	require.NoError(t, err)

	claim, err := utils.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claim.ID)
	assert.Equal(t, "org-a", claim.OrganizationId)
	assert.Equal(t, "portfolio_manager", claim.Role)

	_, err = utils.JwtGenerate(42, "", "Ann", "staff")
	assert.ErrorIs(t, err, utils.ErrorOrganizationRequired)

	_, err = utils.ParseClaims(token + "tampered")
	assert.Error(t, err)
}
