// Package forecast implements the month-by-month runway simulation.
//
// The simulator is a pure function: it takes the current cash position and a
// snapshot of ledger events as plain data and returns a fresh result each
// call. It performs no I/O and holds no state, so it is safe to call
// concurrently.
package forecast

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultGrowthRate is the monthly revenue growth rate used when the
	// caller does not override it (5% compounding monthly).
	DefaultGrowthRate = 0.05

	// DefaultHorizonMonths is the default simulation horizon.
	DefaultHorizonMonths = 36
)

// Event is a dated capital inflow as seen by the simulator. The quarter key
// (quarter, year) is the only join key used to decide which simulated month
// receives the inflow; everything else about a ledger event is irrelevant
// here.
type Event struct {
	Quarter string  // "Q1".."Q4"
	Year    int     // Four-digit year
	Amount  float64 // Signed; positive increases cash
}

// Params holds the simulation inputs. Now seeds the calendar walk for
// quarter-key derivation; callers pass time.Now(), tests pass fixed dates.
type Params struct {
	CurrentCash       float64
	MonthlyBurnRate   float64
	MonthlyRevenue    float64
	RevenueGrowthRate float64
	HorizonMonths     int
	Events            []Event
	Now               time.Time
}

// Point is one simulated month of the forecast. Points are transient
// computation results; they are cached for dashboard reads but never form
// part of the persistent ledger.
type Point struct {
	Month          int     `json:"month" msgpack:"month"` // 1-based index into the horizon
	Quarter        string  `json:"quarter" msgpack:"quarter"`
	Year           int     `json:"year" msgpack:"year"`
	StartingCash   float64 `json:"starting_cash" msgpack:"starting_cash"`
	Revenue        float64 `json:"revenue" msgpack:"revenue"`
	Expenses       float64 `json:"expenses" msgpack:"expenses"`
	CapitalInflows float64 `json:"capital_inflows" msgpack:"capital_inflows"`
	NetCashFlow    float64 `json:"net_cash_flow" msgpack:"net_cash_flow"`
	EndingCash     float64 `json:"ending_cash" msgpack:"ending_cash"`
	RunwayMonths   int     `json:"runway_months" msgpack:"runway_months"`
	IsBreakEven    bool    `json:"is_break_even" msgpack:"is_break_even"`
}

// Result is the output of a simulation run.
type Result struct {
	RunwayMonths   int     `json:"runway_months" msgpack:"runway_months"`
	BreakEvenMonth *int    `json:"break_even_month" msgpack:"break_even_month"`
	Forecast       []Point `json:"forecast" msgpack:"forecast"`
}

// QuarterKey formats a (quarter, year) pair as the canonical period key,
// e.g. "Q1-2026".
func QuarterKey(quarter string, year int) string {
	return fmt.Sprintf("%s-%d", quarter, year)
}

// Simulate walks the cash position forward month by month, applying revenue
// growth, fixed burn, and quarter-aligned capital inflows.
//
// Capital for a quarter lands as a lump sum in the first calendar month of
// that quarter. This is a deliberate modeling simplification carried over
// from the original tool: if the first simulated month is not itself a
// quarter start, that quarter's capital is skipped for the run rather than
// applied retroactively.
//
// The loop exits early once the running cash balance is exhausted. The
// recorded ending cash is floored at zero for display, but the running
// balance is not, so later months accumulate from the true (possibly
// negative) total.
//
// Simulate never returns an error: degenerate inputs (zero burn, empty
// ledger, zero horizon) degrade to well-defined sentinel outputs.
func Simulate(p Params) Result {
	// Pre-index quarterly inflow totals by period key.
	inflows := make(map[string]float64, len(p.Events))
	for _, ev := range p.Events {
		inflows[QuarterKey(ev.Quarter, ev.Year)] += ev.Amount
	}

	cash := p.CurrentCash
	revenue := p.MonthlyRevenue

	var breakEvenMonth *int
	forecast := make([]Point, 0, p.HorizonMonths)

	baseYear := p.Now.Year()
	baseMonth := int(p.Now.Month()) - 1 // zero-based calendar month

	for month := 1; month <= p.HorizonMonths; month++ {
		// Project the calendar month without day-of-month normalization
		// quirks (adding months to e.g. Jan 31 must not skip February).
		total := baseMonth + month
		year := baseYear + total/12
		calMonth := total % 12

		quarter := fmt.Sprintf("Q%d", calMonth/3+1)
		quarterKey := QuarterKey(quarter, year)

		// Quarterly lump sum, applied only on the quarter-start month.
		capitalThisMonth := 0.0
		if calMonth%3 == 0 {
			capitalThisMonth = inflows[quarterKey]
		}

		startingCash := cash
		netCashFlow := revenue - p.MonthlyBurnRate + capitalThisMonth
		cash += netCashFlow

		if revenue >= p.MonthlyBurnRate && breakEvenMonth == nil {
			m := month
			breakEvenMonth = &m
		}

		forecast = append(forecast, Point{
			Month:          month,
			Quarter:        quarterKey,
			Year:           year,
			StartingCash:   startingCash,
			Revenue:        revenue,
			Expenses:       p.MonthlyBurnRate,
			CapitalInflows: capitalThisMonth,
			NetCashFlow:    netCashFlow,
			EndingCash:     math.Max(0, cash),
			RunwayMonths:   runwayAtPoint(cash, p.MonthlyBurnRate, p.HorizonMonths),
			IsBreakEven:    revenue >= p.MonthlyBurnRate,
		})

		revenue *= 1 + p.RevenueGrowthRate

		if cash <= 0 {
			break
		}
	}

	return Result{
		RunwayMonths:   overallRunway(forecast, p.HorizonMonths),
		BreakEvenMonth: breakEvenMonth,
		Forecast:       forecast,
	}
}

// runwayAtPoint computes the remaining runway at a forecast point, biased
// upward via ceil so the number never understates how long the cash lasts.
// Positive cash with zero burn is treated as "infinite runway", represented
// by the horizon length.
func runwayAtPoint(cash, burnRate float64, horizon int) int {
	if cash <= 0 {
		return 0
	}
	if burnRate <= 0 {
		return horizon
	}
	return int(math.Ceil(cash / burnRate))
}

// overallRunway is the zero-based index of the first depleted forecast
// point, or the full horizon when cash survives the whole run.
func overallRunway(forecast []Point, horizon int) int {
	for i, pt := range forecast {
		if pt.EndingCash <= 0 {
			return i
		}
	}
	return horizon
}
