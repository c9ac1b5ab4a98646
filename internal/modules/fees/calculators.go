// Package fees provides stateless fee and revenue-split calculators.
// Each calculator is pure arithmetic: inputs in, structured breakdown out,
// with money conserved across every breakdown.
package fees

// Processing fee constants applied to registration payments.
const (
	// PercentageFeeRate is the card processing percentage (2.9%)
	PercentageFeeRate = 0.029
	// ACHFlatFee is the flat ACH transfer fee per registration
	ACHFlatFee = 1.60
)

// Revenue split between creator and platform.
const (
	CreatorShareRate  = 0.70
	PlatformShareRate = 0.30
)

// RegistrationBreakdown describes who pays the processing fees on a
// registration. Invariant: FeesPassedThrough + FeesAbsorbed always equals
// the total fees charged, and CustomerPays - CreatorReceives equals the
// same total.
type RegistrationBreakdown struct {
	BaseFee           float64 `json:"base_fee"`
	PercentageFee     float64 `json:"percentage_fee"`
	ACHFee            float64 `json:"ach_fee"`
	TotalFees         float64 `json:"total_fees"`
	CustomerPays      float64 `json:"customer_pays"`
	CreatorReceives   float64 `json:"creator_receives"`
	FeesPassedThrough float64 `json:"fees_passed_through"`
	FeesAbsorbed      float64 `json:"fees_absorbed"`
}

// RegistrationFees computes the fee breakdown for a registration of the
// given base fee. When passOn is true the customer pays the fees on top;
// otherwise the creator absorbs them out of the base fee.
func RegistrationFees(baseFee float64, passOn bool) RegistrationBreakdown {
	percentageFee := baseFee * PercentageFeeRate
	totalFees := percentageFee + ACHFlatFee

	b := RegistrationBreakdown{
		BaseFee:       baseFee,
		PercentageFee: percentageFee,
		ACHFee:        ACHFlatFee,
		TotalFees:     totalFees,
	}

	if passOn {
		b.CustomerPays = baseFee + totalFees
		b.CreatorReceives = baseFee
		b.FeesPassedThrough = totalFees
	} else {
		b.CustomerPays = baseFee
		b.CreatorReceives = baseFee - totalFees
		b.FeesAbsorbed = totalFees
	}

	return b
}

// SplitBreakdown is a creator/platform revenue split.
type SplitBreakdown struct {
	Gross         float64 `json:"gross"`
	CreatorShare  float64 `json:"creator_share"`
	PlatformShare float64 `json:"platform_share"`
}

// RevenueSplit splits a gross amount 70/30 between creator and platform.
// The platform share is computed as the remainder so the parts always sum
// back to the gross amount exactly.
func RevenueSplit(gross float64) SplitBreakdown {
	creator := gross * CreatorShareRate
	return SplitBreakdown{
		Gross:         gross,
		CreatorShare:  creator,
		PlatformShare: gross - creator,
	}
}

// CPMRevenue estimates ad revenue for a number of impressions at the given
// CPM rate (revenue per thousand impressions).
func CPMRevenue(impressions int64, cpmRate float64) float64 {
	return float64(impressions) / 1000.0 * cpmRate
}
