package models

import (
	"context"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

type Property struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"size:36;index;not null" json:"organization_id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Address        *string         `gorm:"size:500" json:"address"`
	Bedrooms       int             `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms      int             `gorm:"not null;default:0" json:"bathrooms"`
	MaxGuests      int             `gorm:"not null;default:0" json:"max_guests"`
	PricePerNight  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_per_night"`
	Currency       string          `gorm:"size:3;not null;default:THB" json:"currency"`
	Status         PropertyStatus  `gorm:"size:20;not null;default:active" json:"status"`
	OwnerId        *int            `json:"owner_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Property) TableName() string { return propertiesTable }

func (p Property) GetOrganizationId() string { return p.OrganizationId }

type NewProperty struct {
	Name          string          `json:"name" binding:"required"`
	Address       *string         `json:"address"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	MaxGuests     int             `json:"max_guests"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Currency      string          `json:"currency"`
	OwnerId       *int            `json:"owner_id"`
}

type PropertyUpdate struct {
	Name          *string          `json:"name"`
	Address       *string          `json:"address"`
	Bedrooms      *int             `json:"bedrooms"`
	Bathrooms     *int             `json:"bathrooms"`
	MaxGuests     *int             `json:"max_guests"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
	Currency      *string          `json:"currency"`
	Status        *PropertyStatus  `json:"status"`
	OwnerId       *int             `json:"owner_id"`
}

type PropertyFilter struct {
	Status *PropertyStatus
	Search *string
}

func (input *NewProperty) validate(ctx context.Context, organizationId string) error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.NewInputError("name is required")
	}
	if input.Bedrooms < 0 || input.Bathrooms < 0 || input.MaxGuests < 0 {
		return utils.NewInputError("room counts cannot be negative")
	}
	if err := validateNonNegative(input.PricePerNight); err != nil {
		return err
	}
	return validateRef[User](ctx, organizationId, input.OwnerId, "owner")
}

func CreateProperty(ctx context.Context, organizationId string, input *NewProperty) (*Property, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}
	property := Property{
		OrganizationId: organizationId,
		Name:           strings.TrimSpace(input.Name),
		Address:        input.Address,
		Bedrooms:       input.Bedrooms,
		Bathrooms:      input.Bathrooms,
		MaxGuests:      input.MaxGuests,
		PricePerNight:  input.PricePerNight,
		Currency:       utils.DereferencePtr(utils.NilIfEmpty(input.Currency), "THB"),
		Status:         PropertyStatusActive,
		OwnerId:        input.OwnerId,
	}
	return createScoped(ctx, &property)
}

func UpdateProperty(ctx context.Context, organizationId string, id int, input *PropertyUpdate) (*Property, error) {
	if _, err := utils.FetchModel[Property](ctx, organizationId, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": now()}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, utils.NewInputError("name is required")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Bedrooms != nil {
		updates["bedrooms"] = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		updates["bathrooms"] = *input.Bathrooms
	}
	if input.MaxGuests != nil {
		updates["max_guests"] = *input.MaxGuests
	}
	if input.PricePerNight != nil {
		if err := validateNonNegative(*input.PricePerNight); err != nil {
			return nil, err
		}
		updates["price_per_night"] = *input.PricePerNight
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.Status != nil {
		if *input.Status != PropertyStatusActive && *input.Status != PropertyStatusInactive {
			return nil, errInvalidPropertyStatus
		}
		updates["status"] = *input.Status
	}
	if input.OwnerId != nil {
		if err := validateRef[User](ctx, organizationId, input.OwnerId, "owner"); err != nil {
			return nil, err
		}
		updates["owner_id"] = *input.OwnerId
	}

	if err := utils.UpdateScoped[Property](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Property](organizationId, id); err != nil {
		config.LogError(config.GetLogger(), "property.go", "UpdateProperty", "RemoveRedisItem", id, err)
	}
	return utils.FetchModel[Property](ctx, organizationId, id)
}

// GetProperty reads through the redis cache.
func GetProperty(ctx context.Context, organizationId string, id int) (*Property, error) {
	return GetResource[Property](ctx, organizationId, id)
}

func ListProperties(ctx context.Context, organizationId string, filter PropertyFilter) ([]*Property, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = propertiesTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "status", filter.Status),
		utils.OptionalLike(t, filter.Search, "name", "address"),
	)
	return listScoped[Property](ctx, preds, utils.OrderAsc(t, "name"))
}
