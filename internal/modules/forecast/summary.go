package forecast

import "gonum.org/v1/gonum/stat"

// Summary holds descriptive statistics over a forecast series. These are
// dashboard aids derived from the simulation output; they carry no
// simulation semantics of their own.
type Summary struct {
	MeanNetCashFlow     float64 `json:"mean_net_cash_flow"`
	StdDevNetCashFlow   float64 `json:"stddev_net_cash_flow"`
	MinEndingCash       float64 `json:"min_ending_cash"`
	MinEndingCashMonth  int     `json:"min_ending_cash_month"` // 1-based; 0 when forecast is empty
	TotalCapitalInflows float64 `json:"total_capital_inflows"`
}

// Summarize computes descriptive statistics for a forecast series.
// An empty series yields a zero-valued summary.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	netFlows := make([]float64, len(points))
	totalInflows := 0.0
	minCash := points[0].EndingCash
	minMonth := points[0].Month

	for i, pt := range points {
		netFlows[i] = pt.NetCashFlow
		totalInflows += pt.CapitalInflows
		if pt.EndingCash < minCash {
			minCash = pt.EndingCash
			minMonth = pt.Month
		}
	}

	mean, std := stat.MeanStdDev(netFlows, nil)
	if len(points) == 1 {
		// MeanStdDev returns NaN for a single sample
		std = 0
	}

	return Summary{
		MeanNetCashFlow:     mean,
		StdDevNetCashFlow:   std,
		MinEndingCash:       minCash,
		MinEndingCashMonth:  minMonth,
		TotalCapitalInflows: totalInflows,
	}
}
