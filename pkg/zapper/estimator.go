package zapper

import "math/big"

const (
	// networkFeeAtomic is the base-layer transaction fee, effectively
	// negligible at 7-decimal scale.
	networkFeeAtomic = 100

	// Venue fee approximation. The real fee is embedded in the quote's
	// pricing curve and not separately reported, so 0.3% of the input is
	// shown as a line item.
	swapFeeNum = 3
	swapFeeDen = 1000
)

// EstimateCost derives the user-facing cost breakdown for a payment quote.
// Pure arithmetic shown before committing; the authoritative amount debited
// is always the executed swap's actual input.
func EstimateCost(q PaymentQuote) CostEstimate {
	swapFee := mulDiv(q.TokenInAmount, swapFeeNum, swapFeeDen)
	return CostEstimate{
		TokenInAmount:       q.TokenInAmount,
		EstimatedNetworkFee: networkFeeAtomic,
		EstimatedSwapFee:    swapFee,
		TotalCost:           q.TokenInAmount + networkFeeAtomic + swapFee,
	}
}

// mulDiv computes a*num/den without intermediate int64 overflow.
func mulDiv(a, num, den int64) int64 {
	r := new(big.Int).Mul(big.NewInt(a), big.NewInt(num))
	r.Quo(r, big.NewInt(den))
	return r.Int64()
}
