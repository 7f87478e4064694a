package models

import (
	"context"
	"errors"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const bookingCommissionsTable = "booking_revenue_commissions"

type BookingRevenueCommission struct {
	ID                               int             `gorm:"primary_key" json:"id"`
	OrganizationId                   string          `gorm:"size:36;index;not null" json:"organization_id"`
	BookingRevenueId                 int             `gorm:"index;not null" json:"booking_revenue_id"`
	ManagementCommissionAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"management_commission_amount"`
	PortfolioManagerCommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"portfolio_manager_commission_amount"`
	ReferralAgentCommissionAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"referral_agent_commission_amount"`
	OwnerNetAmount                   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"owner_net_amount"`
	OwnerId                          *int            `json:"owner_id"`
	CalculatedBy                     *int            `json:"calculated_by"`
	CalculationDate                  time.Time       `gorm:"not null" json:"calculation_date"`
	IsFinalized                      *bool           `gorm:"not null;default:false" json:"is_finalized"`
	CreatedAt                        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (BookingRevenueCommission) TableName() string { return bookingCommissionsTable }

// CommissionSplit is the breakdown of one booking's final payout.
type CommissionSplit struct {
	Management       decimal.Decimal
	PortfolioManager decimal.Decimal
	ReferralAgent    decimal.Decimal
	OwnerNet         decimal.Decimal
}

// SplitPayout computes commissions on the final payout only. Portfolio manager and
// referral agent shares are not configured and stay zero.
func SplitPayout(payout decimal.Decimal, managementRate decimal.Decimal) CommissionSplit {
	management := utils.PercentOf(payout, managementRate)
	pm := decimal.Zero
	referral := decimal.Zero
	return CommissionSplit{
		Management:       utils.RoundMoney(management),
		PortfolioManager: utils.RoundMoney(pm),
		ReferralAgent:    utils.RoundMoney(referral),
		OwnerNet:         utils.RoundMoney(payout.Sub(management).Sub(pm).Sub(referral)),
	}
}

// CalculateBookingCommissions stores a new, unfinalized commission row for a booking.
// The booking's creator stands in as owner until owners are linked to bookings.
func CalculateBookingCommissions(ctx context.Context, organizationId string, bookingRevenueId int, calculatedBy *int) (*BookingRevenueCommission, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	booking, err := utils.FetchModel[BookingRevenue](ctx, organizationId, bookingRevenueId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.NewInputError("booking revenue not found")
		}
		return nil, err
	}
	if calculatedBy == nil {
		calculatedBy = utils.GetActorIdFromContext(ctx)
	}
	split := SplitPayout(booking.FinalPayoutAmount, booking.ManagementCommissionRate)
	commission := BookingRevenueCommission{
		OrganizationId:                   organizationId,
		BookingRevenueId:                 booking.ID,
		ManagementCommissionAmount:       split.Management,
		PortfolioManagerCommissionAmount: split.PortfolioManager,
		ReferralAgentCommissionAmount:    split.ReferralAgent,
		OwnerNetAmount:                   split.OwnerNet,
		OwnerId:                          booking.CreatedBy,
		CalculatedBy:                     calculatedBy,
		CalculationDate:                  now(),
		IsFinalized:                      utils.NewFalse(),
	}
	return createScoped(ctx, &commission)
}

func ListBookingCommissions(ctx context.Context, organizationId string, bookingRevenueId *int) ([]*BookingRevenueCommission, error) {
	if err := utils.RequireOrganization(organizationId); err != nil {
		return nil, err
	}
	const t = bookingCommissionsTable
	preds := utils.TenantScope(t, organizationId).With(
		utils.OptionalEq(t, "booking_revenue_id", bookingRevenueId),
	)
	return listScoped[BookingRevenueCommission](ctx, preds, utils.OrderDesc(t, "calculation_date"), utils.OrderDesc(t, "id"))
}

// FinalizeBookingCommission locks a commission row. Finalizing twice is a no-op.
func FinalizeBookingCommission(ctx context.Context, organizationId string, id int) (*BookingRevenueCommission, error) {
	existing, err := utils.FetchModel[BookingRevenueCommission](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(existing.IsFinalized) {
		return existing, nil
	}
	guard := utils.NotEqualOrNull(bookingCommissionsTable, "is_finalized", true)
	if _, err := utils.TransitionScoped[BookingRevenueCommission](ctx, organizationId, id, map[string]interface{}{"is_finalized": true}, guard); err != nil {
		return nil, err
	}
	return utils.FetchModel[BookingRevenueCommission](ctx, organizationId, id)
}
