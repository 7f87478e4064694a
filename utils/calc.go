package utils

import "github.com/shopspring/decimal"

const (
	unitCostPlaces = 6
	moneyPlaces    = 2
)

var hundred = decimal.NewFromInt(100)

// UnitCost is cost divided by quantity, or zero when quantity is not positive.
func UnitCost(cost decimal.Decimal, quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return cost.DivRound(quantity, unitCostPlaces)
}

// UnitCostInt is UnitCost for integral quantities such as liters.
func UnitCostInt(cost decimal.Decimal, quantity int) decimal.Decimal {
	return UnitCost(cost, decimal.NewFromInt(int64(quantity)))
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// PercentOf returns rate percent of amount, e.g. PercentOf(1000, 15) = 150.
func PercentOf(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Ratio returns part/whole as a percentage, zero when whole is zero.
func Ratio(part decimal.Decimal, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, moneyPlaces)
}

func SumDecimals(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
