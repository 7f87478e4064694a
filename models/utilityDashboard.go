package models

import (
	"context"
	"sort"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	upcomingBillDays      = 7
	utilitySpendingMonths = 6
)

type UtilityTypeCount struct {
	UtilityType UtilityType `json:"utilityType"`
	Count       int         `json:"count"`
}

type UtilityMonthSpend struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type UtilityDashboard struct {
	TotalUtilities       int                  `json:"totalUtilities"`
	OverdueBills         int                  `json:"overdueBills"`
	UpcomingBills        int                  `json:"upcomingBills"`
	UnpaidBills          int                  `json:"unpaidBills"`
	TotalUnpaidAmount    decimal.Decimal      `json:"totalUnpaidAmount"`
	UnreadNotifications  int                  `json:"unreadNotifications"`
	CriticalAlerts       int                  `json:"criticalAlerts"`
	UtilityTypeBreakdown []*UtilityTypeCount  `json:"utilityTypeBreakdown"`
	MonthlySpending      []*UtilityMonthSpend `json:"monthlySpending"`
}

// GetUtilityDashboard summarizes active utilities and their bills. Overdue means
// flagged late and unpaid; upcoming means unpaid and expected within seven days.
// Spending covers bills whose period started in the last six months, newest first.
func GetUtilityDashboard(ctx context.Context, organizationId string, at time.Time) (*UtilityDashboard, error) {
	utilities, err := ListPropertyUtilities(ctx, organizationId, nil)
	if err != nil {
		return nil, err
	}
	bills, err := listScoped[UtilityBill](ctx, utils.TenantScope(utilityBillsTable, organizationId))
	if err != nil {
		return nil, err
	}
	unread, err := ListUtilityNotifications(ctx, organizationId, UtilityNotificationFilter{IsRead: utils.NewFalse()})
	if err != nil {
		return nil, err
	}

	result := UtilityDashboard{
		TotalUtilities:       len(utilities),
		TotalUnpaidAmount:    decimal.Zero,
		UnreadNotifications:  len(unread),
		UtilityTypeBreakdown: make([]*UtilityTypeCount, 0),
		MonthlySpending:      make([]*UtilityMonthSpend, 0),
	}
	for _, n := range unread {
		if n.Severity == SeverityCritical {
			result.CriticalAlerts++
		}
	}

	types := make(map[UtilityType]*UtilityTypeCount)
	for _, u := range utilities {
		c, ok := types[u.UtilityType]
		if !ok {
			c = &UtilityTypeCount{UtilityType: u.UtilityType}
			types[u.UtilityType] = c
		}
		c.Count++
	}
	for _, c := range types {
		result.UtilityTypeBreakdown = append(result.UtilityTypeBreakdown, c)
	}
	sort.Slice(result.UtilityTypeBreakdown, func(i, j int) bool {
		return result.UtilityTypeBreakdown[i].UtilityType < result.UtilityTypeBreakdown[j].UtilityType
	})

	today := dateOnly(at)
	upcomingUntil := today.AddDate(0, 0, upcomingBillDays)
	spendSince := today.AddDate(0, -utilitySpendingMonths, 0)
	months := make(map[string]*UtilityMonthSpend)
	for _, b := range bills {
		paid := utils.DereferencePtr(b.IsPaid)
		if !paid {
			result.UnpaidBills++
			result.TotalUnpaidAmount = result.TotalUnpaidAmount.Add(b.Amount)
			if utils.DereferencePtr(b.IsLate) {
				result.OverdueBills++
			}
			if b.ExpectedArrivalDate != nil && !b.ExpectedArrivalDate.Before(today) && !b.ExpectedArrivalDate.After(upcomingUntil) {
				result.UpcomingBills++
			}
		}
		if b.BillingPeriodStart.Before(spendSince) {
			continue
		}
		m, ok := months[b.BillingMonth]
		if !ok {
			m = &UtilityMonthSpend{Month: b.BillingMonth, Amount: decimal.Zero}
			months[b.BillingMonth] = m
		}
		m.Amount = m.Amount.Add(b.Amount)
	}
	for _, m := range months {
		result.MonthlySpending = append(result.MonthlySpending, m)
	}
	sort.Slice(result.MonthlySpending, func(i, j int) bool {
		return result.MonthlySpending[i].Month > result.MonthlySpending[j].Month
	})
	return &result, nil
}
