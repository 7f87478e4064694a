package models

import "github.com/hostpilotpro/hostpilot_backend/utils"

type UserRole string

const (
	UserRoleAdmin            UserRole = "admin"
	UserRolePortfolioManager UserRole = "portfolio_manager"
	UserRoleStaff            UserRole = "staff"
	UserRoleOwner            UserRole = "owner"
	UserRoleAgent            UserRole = "agent"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRolePortfolioManager, UserRoleStaff, UserRoleOwner, UserRoleAgent:
		return true
	}
	return false
}

// CanManage reports roles allowed to approve and dismiss.
func (r UserRole) CanManage() bool {
	return r == UserRoleAdmin || r == UserRolePortfolioManager
}

type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

/* water */

type WaterSourceType string

const (
	WaterSourceGovernment     WaterSourceType = "government_water"
	WaterSourceDeepwell       WaterSourceType = "deepwell"
	WaterSourceEmergencyTruck WaterSourceType = "emergency_truck"
)

func (t WaterSourceType) IsValid() bool {
	switch t {
	case WaterSourceGovernment, WaterSourceDeepwell, WaterSourceEmergencyTruck:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryTypePlanned     DeliveryType = "planned"
	DeliveryTypeUnexpected  DeliveryType = "unexpected"
	DeliveryTypePreventable DeliveryType = "preventable"
)

func (t DeliveryType) IsValid() bool {
	switch t {
	case DeliveryTypePlanned, DeliveryTypeUnexpected, DeliveryTypePreventable:
		return true
	}
	return false
}

type BillingType string

const (
	BillingTypeOwnerBillable  BillingType = "owner_billable"
	BillingTypeCompanyExpense BillingType = "company_expense"
	BillingTypeGuestBillable  BillingType = "guest_billable"
)

func (t BillingType) IsValid() bool {
	switch t {
	case BillingTypeOwnerBillable, BillingTypeCompanyExpense, BillingTypeGuestBillable:
		return true
	}
	return false
}

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusCompleted DeliveryStatus = "completed"
)

func (s DeliveryStatus) IsValid() bool {
	return s == DeliveryStatusPending || s == DeliveryStatusCompleted
}

type WaterBillType string

const (
	WaterBillTypeRegular           WaterBillType = "regular_bill"
	WaterBillTypeEmergencyDelivery WaterBillType = "emergency_delivery"
)

func (t WaterBillType) IsValid() bool {
	return t == WaterBillTypeRegular || t == WaterBillTypeEmergencyDelivery
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	// read-time only, never stored
	PaymentStatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

type WaterAlertType string

const (
	WaterAlertEmergencyPrompt WaterAlertType = "emergency_prompt"
	WaterAlertOverduePayment  WaterAlertType = "overdue_payment"
	WaterAlertMissingBill     WaterAlertType = "missing_bill"
)

func (t WaterAlertType) IsValid() bool {
	switch t {
	case WaterAlertEmergencyPrompt, WaterAlertOverduePayment, WaterAlertMissingBill:
		return true
	}
	return false
}

type RefillStatus string

const (
	RefillStatusPending   RefillStatus = "pending"
	RefillStatusCompleted RefillStatus = "completed"
	RefillStatusCancelled RefillStatus = "cancelled"
)

func (s RefillStatus) IsValid() bool {
	switch s {
	case RefillStatusPending, RefillStatusCompleted, RefillStatusCancelled:
		return true
	}
	return false
}

type ConsumptionEntryType string

const (
	ConsumptionEntryBill              ConsumptionEntryType = "bill"
	ConsumptionEntryEmergencyDelivery ConsumptionEntryType = "emergency_delivery"
	ConsumptionEntryRefill            ConsumptionEntryType = "refill"
)

func (t ConsumptionEntryType) IsValid() bool {
	switch t {
	case ConsumptionEntryBill, ConsumptionEntryEmergencyDelivery, ConsumptionEntryRefill:
		return true
	}
	return false
}

type PaidBy string

const (
	PaidByOwner      PaidBy = "owner"
	PaidByManagement PaidBy = "management"
	PaidByGuest      PaidBy = "guest"
	PaidByCustom     PaidBy = "custom"
)

func (p PaidBy) IsValid() bool {
	switch p {
	case PaidByOwner, PaidByManagement, PaidByGuest, PaidByCustom:
		return true
	}
	return false
}

type ConsumptionAlertType string

const (
	ConsumptionAlertFrequentEmergency ConsumptionAlertType = "frequent_emergency"
	ConsumptionAlertNoEntry           ConsumptionAlertType = "no_entry_dry_season"
	ConsumptionAlertOverdueBill       ConsumptionAlertType = "overdue_bill"
)

func (t ConsumptionAlertType) IsValid() bool {
	switch t {
	case ConsumptionAlertFrequentEmergency, ConsumptionAlertNoEntry, ConsumptionAlertOverdueBill:
		return true
	}
	return false
}

type RefillAlertType string

const (
	RefillAlertFrequency RefillAlertType = "frequency_alert"
	RefillAlertCost      RefillAlertType = "cost_alert"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

/* revenue */

type BookingType string

const (
	BookingTypeOTA    BookingType = "ota"
	BookingTypeDirect BookingType = "direct"
	BookingTypeOwner  BookingType = "owner"
)

func (t BookingType) IsValid() bool {
	switch t {
	case BookingTypeOTA, BookingTypeDirect, BookingTypeOwner:
		return true
	}
	return false
}

type BookingPaymentStatus string

const (
	BookingPaymentPending  BookingPaymentStatus = "pending"
	BookingPaymentPartial  BookingPaymentStatus = "partial"
	BookingPaymentPaid     BookingPaymentStatus = "paid"
	BookingPaymentRefunded BookingPaymentStatus = "refunded"
)

func (s BookingPaymentStatus) IsValid() bool {
	switch s {
	case BookingPaymentPending, BookingPaymentPartial, BookingPaymentPaid, BookingPaymentRefunded:
		return true
	}
	return false
}

type UpgradeStatus string

const (
	UpgradeStatusPlanned   UpgradeStatus = "planned"
	UpgradeStatusConfirmed UpgradeStatus = "confirmed"
	UpgradeStatusCompleted UpgradeStatus = "completed"
	UpgradeStatusCancelled UpgradeStatus = "cancelled"
)

func (s UpgradeStatus) IsValid() bool {
	switch s {
	case UpgradeStatusPlanned, UpgradeStatusConfirmed, UpgradeStatusCompleted, UpgradeStatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

/* utilities */

type UtilityType string

const (
	UtilityElectricity UtilityType = "electricity"
	UtilityWater       UtilityType = "water"
	UtilityInternet    UtilityType = "internet"
	UtilityGas         UtilityType = "gas"
	UtilityCableTv     UtilityType = "cable_tv"
	UtilityOther       UtilityType = "other"
)

func (t UtilityType) IsValid() bool {
	switch t {
	case UtilityElectricity, UtilityWater, UtilityInternet, UtilityGas, UtilityCableTv, UtilityOther:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotificationActive    NotificationStatus = "active"
	NotificationSnoozed   NotificationStatus = "snoozed"
	NotificationResolved  NotificationStatus = "resolved"
	NotificationDismissed NotificationStatus = "dismissed"
)

func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationActive, NotificationSnoozed, NotificationResolved, NotificationDismissed:
		return true
	}
	return false
}

/* pricing insights */

type PeriodType string

const (
	PeriodWeekly    PeriodType = "weekly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

func (p PeriodType) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodQuarterly
}

type DemandLevel string

const (
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
	DemandPeak   DemandLevel = "peak"
)

func (d DemandLevel) IsValid() bool {
	switch d {
	case DemandLow, DemandMedium, DemandHigh, DemandPeak:
		return true
	}
	return false
}

// ColorCode is the heatmap color shown for a demand level.
func (d DemandLevel) ColorCode() string {
	switch d {
	case DemandPeak:
		return "red"
	case DemandHigh:
		return "orange"
	case DemandMedium:
		return "yellow"
	}
	return "green"
}

var (
	errInvalidPropertyStatus = utils.NewInputError("invalid property status")
	errInvalidRole           = utils.NewInputError("invalid role")
	errInvalidDeliveryType   = utils.NewInputError("invalid delivery type")
	errInvalidBillingType    = utils.NewInputError("invalid billing type")
	errInvalidStatus         = utils.NewInputError("invalid status")
	errInvalidBillType       = utils.NewInputError("invalid bill type")
	errInvalidPaymentStatus  = utils.NewInputError("invalid payment status")
	errInvalidAlertType      = utils.NewInputError("invalid alert type")
	errInvalidSourceType     = utils.NewInputError("invalid source type")
	errInvalidSeverity       = utils.NewInputError("invalid severity")
	errInvalidBookingType    = utils.NewInputError("invalid booking type")
	errInvalidPriority       = utils.NewInputError("invalid priority")
	errInvalidEntryType      = utils.NewInputError("invalid entry type")
	errInvalidPaidBy         = utils.NewInputError("invalid paid by")
	errInvalidUtilityType    = utils.NewInputError("invalid utility type")
	errInvalidPeriodType     = utils.NewInputError("invalid period type")
	errInvalidDemandLevel    = utils.NewInputError("invalid demand level")
	errNegativeAmount        = utils.NewInputError("amount cannot be negative")
)
