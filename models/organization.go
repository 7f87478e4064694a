package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/ttacon/libphonenumber"
)

type Organization struct {
	ID              string    `gorm:"primary_key;size:36" json:"id"`
	Name            string    `gorm:"size:200;not null" json:"name"`
	DefaultCurrency string    `gorm:"size:3;not null;default:THB" json:"default_currency"`
	CountryCode     string    `gorm:"size:2;not null;default:TH" json:"country_code"`
	Timezone        string    `gorm:"size:64;not null;default:Asia/Bangkok" json:"timezone"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrganization struct {
	Name            string `json:"name" binding:"required"`
	DefaultCurrency string `json:"default_currency"`
	CountryCode     string `json:"country_code"`
	Timezone        string `json:"timezone"`
}

func (input *NewOrganization) validate() error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.NewInputError("name is required")
	}
	if input.CountryCode != "" && libphonenumber.GetCountryCodeForRegion(strings.ToUpper(input.CountryCode)) == 0 {
		return utils.NewInputError("invalid country code")
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return utils.NewInputError("invalid timezone")
		}
	}
	return nil
}

func CreateOrganization(ctx context.Context, input *NewOrganization) (*Organization, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	org := Organization{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(input.Name),
		DefaultCurrency: strings.ToUpper(utils.DereferencePtr(utils.NilIfEmpty(input.DefaultCurrency), "THB")),
		CountryCode:     strings.ToUpper(utils.DereferencePtr(utils.NilIfEmpty(input.CountryCode), config.DefaultCountryCode())),
		Timezone:        utils.DereferencePtr(utils.NilIfEmpty(input.Timezone), "Asia/Bangkok"),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganization reads through the redis cache.
func GetOrganization(ctx context.Context, organizationId string) (*Organization, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	cacheKey := "Organization:" + organizationId
	var org Organization
	exists, err := config.GetRedisObject(cacheKey, &org)
	if err != nil {
		return nil, err
	}
	if exists {
		return &org, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", organizationId).Take(&org).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := config.SetRedisObject(cacheKey, &org, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return &org, nil
}

// organizationCountryCode falls back to DEFAULT_COUNTRY_CODE when the
// organization is unknown or has no country.
func organizationCountryCode(ctx context.Context, organizationId string) string {
	org, err := GetOrganization(ctx, organizationId)
	if err != nil || org.CountryCode == "" {
		return config.DefaultCountryCode()
	}
	return org.CountryCode
}

// defaultCurrency returns currency upper-cased, or the organization default when empty.
func defaultCurrency(ctx context.Context, organizationId string, currency string) string {
	if currency != "" {
		return strings.ToUpper(currency)
	}
	org, err := GetOrganization(ctx, organizationId)
	if err != nil || org.DefaultCurrency == "" {
		return "THB"
	}
	return org.DefaultCurrency
}

// ListOrganizations is for batch jobs that fan out per tenant.
func ListOrganizations(ctx context.Context) ([]*Organization, error) {
	db := config.GetDB()
	results := make([]*Organization, 0)
	if err := db.WithContext(ctx).Order("created_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
