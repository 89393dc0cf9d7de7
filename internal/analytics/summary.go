package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/verte-zerg/salesdash/internal/model"
)

// Summarize computes total amount, total quantity and order count. Missing amounts
// contribute nothing to the total but still count as orders.
func Summarize(records []model.Record) model.Summary {
	sum := model.Summary{Amount: decimal.Zero}
	for _, r := range records {
		if r.Amount.Valid {
			sum.Amount = sum.Amount.Add(r.Amount.Decimal)
		}
		sum.Quantity += r.Quantity
		sum.Orders++
	}
	return sum
}
