package models

import (
	"log"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"gorm.io/gorm"
)

func tables() []interface{} {
	return []interface{}{
		&Organization{}, &User{}, &Property{},
		&EmergencyWaterDelivery{}, &WaterUtilitySource{}, &WaterUtilityBill{}, &WaterUtilityAlert{}, &PropertyWaterSetting{},
		&WaterRefill{}, &WaterRefillAlert{}, &WaterRefillBill{}, &WaterSupplier{},
		&BookingRevenue{}, &BookingRevenueCommission{}, &OtaPlatformSetting{},
		&YearOnYearPerformance{}, &HolidayEvent{}, &PriceDeviation{}, &BookingGap{}, &SmartPricingAlert{},
		&AiPerformanceSummary{}, &DirectBookingOptimization{}, &HistoricalBookingPattern{}, &HolidayHeatmapDay{},
		&RevenueTarget{}, &UpgradeItem{}, &TargetSuggestion{}, &TargetProgress{},
		&WaterConsumptionEntry{}, &WaterConsumptionAlert{},
		&PropertyUtility{}, &UtilityBill{}, &UtilityAccessPermission{}, &UtilityNotification{},
		&AiNotification{}, &AiNotificationHistory{}, &AiReminderSetting{},
	}
}

// AutoMigrate creates or alters every table the storage layer owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(tables()...)
}

func MigrateTable() {
	if err := AutoMigrate(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}
