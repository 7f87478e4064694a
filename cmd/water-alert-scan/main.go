// water-alert-scan raises missing-bill alerts for every organization. It is
// the batch counterpart of the /pubsub/water-bill-scan push endpoint and is
// meant for a daily scheduler.
//
// Usage (from backend directory):
//
//	go run ./cmd/water-alert-scan [-org <organization id>]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	only := flag.String("org", "", "scan a single organization")
	flag.Parse()

	logger := config.GetLogger()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}
	defer config.ClosePubSub()

	orgs, err := models.ListOrganizations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list organizations: %v\n", err)
		os.Exit(1)
	}

	at := time.Now().UTC()
	failed := 0
	for _, org := range orgs {
		if *only != "" && org.ID != *only {
			continue
		}
		orgCtx := utils.SetOrganizationIdInContext(ctx, org.ID)
		orgCtx = utils.SetUserNameInContext(orgCtx, "System")

		release := utils.OrganizationLock(orgCtx, org.ID, "water-bill-scan", 5*time.Minute)
		alerts, err := models.ScanMissingWaterBills(orgCtx, org.ID, at)
		release()
		if err != nil {
			failed++
			config.LogError(logger, "water-alert-scan", "main", "ScanMissingWaterBills", org.ID, err)
			continue
		}
		logger.WithFields(logrus.Fields{
			"organization_id": org.ID,
			"alerts":          len(alerts),
		}).Info("water bill scan finished")
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d organization(s) failed\n", failed)
		os.Exit(1)
	}
}
