package models

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

const (
	utilityBillsTable = "utility_bills"

	arrivalHistoryMonths = 6
	defaultArrivalDay    = 15
)

type UtilityBill struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	OrganizationId      string          `gorm:"size:36;index;not null" json:"organization_id"`
	UtilityId           int             `gorm:"index;not null" json:"utility_id"`
	PropertyId          int             `gorm:"index;not null" json:"property_id"`
	BillingMonth        string          `gorm:"size:7;not null" json:"billing_month"`
	BillingPeriodStart  time.Time       `gorm:"type:date;not null" json:"billing_period_start"`
	BillingPeriodEnd    *time.Time      `gorm:"type:date" json:"billing_period_end"`
	Amount              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Currency            string          `gorm:"size:3;not null;default:THB" json:"currency"`
	IsPaid              *bool           `gorm:"not null;default:false" json:"is_paid"`
	PaidDate            *time.Time      `gorm:"type:date" json:"paid_date"`
	ReceiptFileUrl      *string         `gorm:"size:500" json:"receipt_file_url"`
	ReceiptFileName     *string         `gorm:"size:255" json:"receipt_file_name"`
	DueDate             *time.Time      `gorm:"type:date" json:"due_date"`
	ExpectedArrivalDate *time.Time      `gorm:"type:date" json:"expected_arrival_date"`
	IsLate              *bool           `gorm:"not null;default:false" json:"is_late"`
	LateReason          *string         `gorm:"size:500" json:"late_reason"`
	UploadedBy          *int            `json:"uploaded_by"`
	UploadedAt          *time.Time      `json:"uploaded_at"`
	Notes               *string         `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UtilityBill) TableName() string { return utilityBillsTable }

type UtilityBillWithUtility struct {
	UtilityBill
	UtilityType  *UtilityType `json:"utility_type"`
	ProviderName *string      `json:"provider_name"`
}

type NewUtilityBill struct {
	UtilityId           int             `json:"utility_id" binding:"required"`
	BillingPeriodStart  time.Time       `json:"billing_period_start" binding:"required"`
	BillingPeriodEnd    *time.Time      `json:"billing_period_end"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	ReceiptFileUrl      *string         `json:"receipt_file_url"`
	ReceiptFileName     *string         `json:"receipt_file_name"`
	DueDate             *time.Time      `json:"due_date"`
	ExpectedArrivalDate *time.Time      `json:"expected_arrival_date"`
	IsLate              *bool           `json:"is_late"`
	LateReason          *string         `json:"late_reason"`
	Notes               *string         `json:"notes"`
}

type UtilityBillUpdate struct {
	BillingPeriodEnd    *time.Time       `json:"billing_period_end"`
	Amount              *decimal.Decimal `json:"amount"`
	ReceiptFileUrl      *string          `json:"receipt_file_url"`
	ReceiptFileName     *string          `json:"receipt_file_name"`
	DueDate             *time.Time       `json:"due_date"`
	ExpectedArrivalDate *time.Time       `json:"expected_arrival_date"`
	IsLate              *bool            `json:"is_late"`
	LateReason          *string          `json:"late_reason"`
	Notes               *string          `json:"notes"`
}

type UtilityBillFilter struct {
	UtilityId    *int
	PropertyId   *int
	BillingMonth *string
	IsPaid       *bool
	IsLate       *bool
	// bills whose period started within this many months of now
	MonthsBack *int
}

func ListUtilityBills(ctx context.Context, organizationId string, filter UtilityBillFilter) ([]*UtilityBillWithUtility, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = utilityBillsTable
	const u = propertyUtilitiesTable
	var since *time.Time
	if filter.MonthsBack != nil {
		since = utils.Ptr(dateOnly(now()).AddDate(0, -*filter.MonthsBack, 0))
	}
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "utility_id", filter.UtilityId),
		utils.OptionalEq(t, "property_id", filter.PropertyId),
		utils.OptionalEq(t, "billing_month", filter.BillingMonth),
		utils.OptionalEq(t, "is_paid", filter.IsPaid),
		utils.OptionalEq(t, "is_late", filter.IsLate),
		utils.OptionalGte(t, "billing_period_start", since),
	)
	db := config.GetDB()
	results := make([]*UtilityBillWithUtility, 0)
	err := db.WithContext(ctx).Model(&UtilityBill{}).
		Select(t+".*, "+u+".utility_type AS utility_type, "+u+".provider_name AS provider_name").
		Joins("LEFT JOIN "+u+" ON "+u+".id = "+t+".utility_id AND "+u+".organization_id = "+t+".organization_id").
		Clauses(preds.Where(), clause.OrderBy{Columns: []clause.OrderByColumn{
			utils.OrderDesc(t, "billing_period_start"), utils.OrderDesc(t, "id"),
		}}).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetUtilityBill(ctx context.Context, organizationId string, id int) (*UtilityBill, error) {
	return utils.FetchModel[UtilityBill](ctx, organizationId, id)
}

// CreateUtilityBill files a bill against a utility; the property and billing
// month come from the utility and the period start.
func CreateUtilityBill(ctx context.Context, organizationId string, input *NewUtilityBill) (*UtilityBill, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	if err := validateNonNegative(input.Amount); err != nil {
		return nil, err
	}
	utility, err := utils.FetchModel[PropertyUtility](ctx, organizationId, input.UtilityId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewInputError("utility not found")
		}
		return nil, err
	}
	start := dateOnly(input.BillingPeriodStart)
	bill := UtilityBill{
		OrganizationId:      organizationId,
		UtilityId:           utility.ID,
		PropertyId:          utility.PropertyId,
		BillingMonth:        utils.MonthKey(start),
		BillingPeriodStart:  start,
		BillingPeriodEnd:    input.BillingPeriodEnd,
		Amount:              input.Amount,
		Currency:            utils.DereferencePtr(utils.NilIfEmpty(strings.ToUpper(strings.TrimSpace(input.Currency))), "THB"),
		IsPaid:              utils.NewFalse(),
		ReceiptFileUrl:      input.ReceiptFileUrl,
		ReceiptFileName:     input.ReceiptFileName,
		DueDate:             input.DueDate,
		ExpectedArrivalDate: input.ExpectedArrivalDate,
		IsLate:              utils.Ptr(utils.DereferencePtr(input.IsLate)),
		LateReason:          input.LateReason,
		UploadedBy:          utils.GetActorIdFromContext(ctx),
		UploadedAt:          utils.Ptr(now()),
		Notes:               input.Notes,
	}
	return createScoped(ctx, &bill)
}

func UpdateUtilityBill(ctx context.Context, organizationId string, id int, input *UtilityBillUpdate) (*UtilityBill, error) {
	if _, err := utils.FetchModel[UtilityBill](ctx, organizationId, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"updated_at": now()}
	if input.BillingPeriodEnd != nil {
		updates["billing_period_end"] = *input.BillingPeriodEnd
	}
	if input.Amount != nil {
		if err := validateNonNegative(*input.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *input.Amount
	}
	if input.ReceiptFileUrl != nil {
		updates["receipt_file_url"] = *input.ReceiptFileUrl
	}
	if input.ReceiptFileName != nil {
		updates["receipt_file_name"] = *input.ReceiptFileName
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.ExpectedArrivalDate != nil {
		updates["expected_arrival_date"] = *input.ExpectedArrivalDate
	}
	if input.IsLate != nil {
		updates["is_late"] = *input.IsLate
	}
	if input.LateReason != nil {
		updates["late_reason"] = *input.LateReason
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := utils.UpdateScoped[UtilityBill](ctx, organizationId, id, updates); err != nil {
		return nil, err
	}
	return utils.FetchModel[UtilityBill](ctx, organizationId, id)
}

// MarkUtilityBillPaid sets the paid flag once; a second call keeps the first paid date.
func MarkUtilityBillPaid(ctx context.Context, organizationId string, id int, paidDate *time.Time) (*UtilityBill, error) {
	existing, err := utils.FetchModel[UtilityBill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsPaid) {
		return existing, nil
	}
	updates := map[string]interface{}{
		"is_paid":    true,
		"paid_date":  dateOnly(utils.DereferencePtr(paidDate, now())),
		"updated_at": now(),
	}
	guard := utils.NotEqualOrNull(utilityBillsTable, "is_paid", true)
	if _, err := utils.TransitionScoped[UtilityBill](ctx, organizationId, id, updates, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[UtilityBill](ctx, organizationId, id)
}

func DeleteUtilityBill(ctx context.Context, organizationId string, id int) (*UtilityBill, error) {
	existing, err := utils.FetchModel[UtilityBill](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if err := utils.DeleteScoped[UtilityBill](ctx, organizationId, id); err != nil {
		return nil, err
	}
	return existing, nil
}

type BillArrivalPrediction struct {
	UtilityId         int             `json:"utilityId"`
	PredictedDate     time.Time       `json:"predictedDate"`
	ConfidenceScore   decimal.Decimal `json:"confidenceScore"`
	AverageArrivalDay int             `json:"averageArrivalDay"`
	BillsConsidered   int             `json:"billsConsidered"`
}

// PredictUtilityBillArrival estimates next month's arrival day from the upload
// days of the last six months of bills. Confidence falls with the variance of
// those days and stays within [0.1, 1]; without history it is 0.3 on the 15th.
func PredictUtilityBillArrival(ctx context.Context, organizationId string, utilityId int, at time.Time) (*BillArrivalPrediction, error) {
	if _, err := utils.FetchModel[PropertyUtility](ctx, organizationId, utilityId); err != nil {
		return nil, err
	}
	since := dateOnly(at).AddDate(0, -arrivalHistoryMonths, 0)
	bills, err := listScoped[UtilityBill](ctx, utils.TenantScope(utilityBillsTable, organizationId).With(
		utils.OptionalEq(utilityBillsTable, "utility_id", &utilityId),
		utils.OptionalGte(utilityBillsTable, "billing_period_start", &since),
	))
	if err != nil {
		return nil, err
	}
	days := make([]int, 0, len(bills))
	for _, b := range bills {
		if b.UploadedAt != nil {
			days = append(days, b.UploadedAt.UTC().Day())
		}
	}

	day, confidence := defaultArrivalDay, 0.3
	if len(days) > 0 {
		sum := 0
		for _, d := range days {
			sum += d
		}
		mean := float64(sum) / float64(len(days))
		day = int(math.Round(mean))
		variance := 0.0
		for _, d := range days {
			variance += math.Pow(float64(d)-mean, 2)
		}
		variance /= float64(len(days))
		confidence = math.Max(0.1, math.Min(1, 1-variance/100))
	}

	next := dateOnly(at).AddDate(0, 0, 1-at.UTC().Day()).AddDate(0, 1, 0)
	lastDay := next.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return &BillArrivalPrediction{
		UtilityId:         utilityId,
		PredictedDate:     next.AddDate(0, 0, day-1),
		ConfidenceScore:   decimal.NewFromFloat(confidence).Round(2),
		AverageArrivalDay: day,
		BillsConsidered:   len(bills),
	}, nil
}
