// Package pricing resolves delivery fees and order totals. All amounts are
// whole KES.
package pricing

import (
	"errors"
	"math"

	"bitesquicky/internal/models"
)

// ErrAmountOutOfRange means a line or order amount is negative or does not fit
// in an int64.
var ErrAmountOutOfRange = errors.New("pricing: amount out of range")

type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
}

// ResolveDeliveryFee returns the fee of the first tier, in the order given,
// whose range contains subtotal. Overlapping tiers are settled by that order
// and a subtotal that falls in a gap pays nothing.
func ResolveDeliveryFee(tiers []models.DeliveryFeeTier, subtotal int64) int64 {
	for _, tier := range tiers {
		if tier.Contains(subtotal) {
			return tier.Fee
		}
	}
	return 0
}

func Subtotal(lines []models.CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}
	return subtotal
}

func ComputeOrderTotals(lines []models.CartLine, tiers []models.DeliveryFeeTier) Totals {
	subtotal := Subtotal(lines)
	fee := ResolveDeliveryFee(tiers, subtotal)
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}

// CheckedTotals is ComputeOrderTotals for lines that have not been bounded
// yet. It fails instead of wrapping when a line, the subtotal or the total
// leaves the range [0, MaxInt64].
func CheckedTotals(lines []models.CartLine, tiers []models.DeliveryFeeTier) (Totals, error) {
	var subtotal int64
	for _, line := range lines {
		amount, err := LineTotal(line)
		if err != nil {
			return Totals{}, err
		}
		if subtotal > math.MaxInt64-amount {
			return Totals{}, ErrAmountOutOfRange
		}
		subtotal += amount
	}
	fee := ResolveDeliveryFee(tiers, subtotal)
	if fee < 0 || subtotal > math.MaxInt64-fee {
		return Totals{}, ErrAmountOutOfRange
	}
	return Totals{Subtotal: subtotal, DeliveryFee: fee, Total: subtotal + fee}, nil
}

// LineTotal returns unitPrice x quantity for a non-negative line.
func LineTotal(line models.CartLine) (int64, error) {
	if line.UnitPrice < 0 || line.Quantity < 0 {
		return 0, ErrAmountOutOfRange
	}
	qty := int64(line.Quantity)
	if qty != 0 && line.UnitPrice > math.MaxInt64/qty {
		return 0, ErrAmountOutOfRange
	}
	return line.UnitPrice * qty, nil
}
