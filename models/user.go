package models

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

type User struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId string    `gorm:"size:36;index;not null" json:"organization_id"`
	Username       string    `gorm:"size:100;not null;unique" json:"username"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          *string   `gorm:"size:100" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Role           UserRole  `gorm:"size:30;not null;default:staff" json:"role"`
	IsActive       *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u User) GetOrganizationId() string { return u.OrganizationId }

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    *string  `json:"email"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}

func (input *NewUser) validate(ctx context.Context) error {
	if !input.Role.IsValid() {
		return errInvalidRole
	}
	if len(input.Password) < 8 {
		return utils.NewInputError("password must be at least 8 characters")
	}
	var count int64
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.NewInputError("duplicate username")
	}
	return nil
}

func CreateUser(ctx context.Context, organizationId string, input *NewUser) (*User, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	input.Username = html.EscapeString(strings.TrimSpace(input.Username))
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		OrganizationId: organizationId,
		Username:       input.Username,
		Name:           input.Name,
		Email:          input.Email,
		Password:       hashed,
		Role:           input.Role,
		IsActive:       utils.NewTrue(),
	}
	return createScoped(ctx, &user)
}

// GetUserByUsername is used by the seed tool; usernames are global.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}
