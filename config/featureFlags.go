package config

import (
	"os"
	"strings"
)

// AutoRefillFrequencyAlerts turns on the refill frequency check after each new refill.
// Enabled unless explicitly switched off.
//
// Set via env:
// - AUTO_REFILL_FREQUENCY_ALERTS=false
func AutoRefillFrequencyAlerts() bool {
	return flagEnabled("AUTO_REFILL_FREQUENCY_ALERTS")
}

// flagEnabled reads a default-on boolean env flag.
func flagEnabled(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AutoWaterConsumptionAlerts runs the consumption alert checks after each new
// consumption entry. Enabled unless explicitly switched off.
//
// Set via env:
// - AUTO_WATER_CONSUMPTION_ALERTS=false
func AutoWaterConsumptionAlerts() bool {
	return flagEnabled("AUTO_WATER_CONSUMPTION_ALERTS")
}

// DefaultCountryCode is the region used to parse phone numbers when an
// organization has no country of its own.
//
// Set via env:
// - DEFAULT_COUNTRY_CODE=TH
func DefaultCountryCode() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_COUNTRY_CODE")))
	if v == "" {
		return "TH"
	}
	return v
}

// AlertsTopic is the Pub/Sub topic for alert notifications; empty disables publishing.
func AlertsTopic() string {
	return strings.TrimSpace(os.Getenv("ALERTS_PUBSUB_TOPIC"))
}
