// seed-admin creates an organization with its first admin user and prints a
// bearer token for it.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin -org "Sunset Villas"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
)

func main() {
	orgName := flag.String("org", "", "organization name")
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (min 8 characters)")
	currency := flag.String("currency", "THB", "organization default currency")
	country := flag.String("country", "", "organization country code, e.g. TH")
	flag.Parse()

	if *orgName == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-org and -password are required")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.AutoMigrate(config.GetDB()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	if _, err := models.GetUserByUsername(ctx, *username); err == nil {
		fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
		os.Exit(2)
	}

	org, err := models.CreateOrganization(ctx, &models.NewOrganization{
		Name:            *orgName,
		DefaultCurrency: *currency,
		CountryCode:     *country,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create organization: %v\n", err)
		os.Exit(1)
	}

	ctx = utils.SetOrganizationIdInContext(ctx, org.ID)
	ctx = utils.SetUserNameInContext(ctx, "Seed")
	user, err := models.CreateUser(ctx, org.ID, &models.NewUser{
		Username: *username,
		Name:     "Administrator",
		Password: *password,
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
		os.Exit(1)
	}

	token, err := utils.JwtGenerate(user.ID, org.ID, user.Name, string(user.Role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("organization_id=%s\nuser_id=%d\ntoken=%s\n", org.ID, user.ID, token)
}
