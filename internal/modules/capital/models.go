// Package capital provides the capital event ledger and cash position
// snapshot that feed the runway simulation.
package capital

import (
	"math"
	"time"

	"github.com/Seeksy-app/runway/internal/domain"
)

// Capital event types. The type categorizes the inflow for reporting; it
// does not change the simulation math beyond the event's sign and magnitude.
const (
	EventInvestment       = "investment"
	EventLoan             = "loan"
	EventGrant            = "grant"
	EventRevenueMilestone = "revenue_milestone"
	EventExpenseReduction = "expense_reduction"
)

// quarterNumbers maps quarter labels to their ordinal, used for ledger
// ordering and validation.
var quarterNumbers = map[string]int{
	"Q1": 1,
	"Q2": 2,
	"Q3": 3,
	"Q4": 4,
}

// CapitalEvent is a discrete, dated inflow (or reduction) of cash from
// financing, grants, or one-off revenue milestones. Events are soft-deleted:
// deactivation preserves the historical audit trail and keeps past forecasts
// reproducible.
type CapitalEvent struct {
	ID            string  `json:"id"`
	EventType     string  `json:"event_type"`
	Amount        float64 `json:"amount"`         // Signed; positive increases cash
	TimingQuarter string  `json:"timing_quarter"` // "Q1".."Q4"
	TimingYear    int     `json:"timing_year"`    // Four-digit year

	// Intended use of funds, informational only. Must round-trip unchanged;
	// the simulator never reads these.
	AllocationRunway         float64 `json:"allocation_runway"`
	AllocationCac            float64 `json:"allocation_cac"`
	AllocationHiring         float64 `json:"allocation_hiring"`
	AllocationInfrastructure float64 `json:"allocation_infrastructure"`

	Label    *string `json:"label,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	IsActive bool    `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuarterNumber returns the ordinal of the event's quarter (1..4), or 0 for
// an invalid quarter label.
func (e *CapitalEvent) QuarterNumber() int {
	return quarterNumbers[e.TimingQuarter]
}

// Validate verifies the fields required by the ledger invariant: a finite
// amount, a known event type, and exactly one valid (quarter, year) pair.
func (e *CapitalEvent) Validate() error {
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return domain.ValidationError{Field: "amount", Message: "must be a finite number"}
	}

	switch e.EventType {
	case EventInvestment, EventLoan, EventGrant, EventRevenueMilestone, EventExpenseReduction:
	default:
		return domain.ValidationError{Field: "event_type", Message: "unknown event type: " + e.EventType}
	}

	if _, ok := quarterNumbers[e.TimingQuarter]; !ok {
		return domain.ValidationError{Field: "timing_quarter", Message: "must be one of Q1..Q4"}
	}

	if e.TimingYear < 1000 || e.TimingYear > 9999 {
		return domain.ValidationError{Field: "timing_year", Message: "must be a four-digit year"}
	}

	return nil
}

// EventPatch is a partial update to a capital event. Nil fields are left
// unchanged.
type EventPatch struct {
	EventType                *string  `json:"event_type,omitempty"`
	Amount                   *float64 `json:"amount,omitempty"`
	TimingQuarter            *string  `json:"timing_quarter,omitempty"`
	TimingYear               *int     `json:"timing_year,omitempty"`
	AllocationRunway         *float64 `json:"allocation_runway,omitempty"`
	AllocationCac            *float64 `json:"allocation_cac,omitempty"`
	AllocationHiring         *float64 `json:"allocation_hiring,omitempty"`
	AllocationInfrastructure *float64 `json:"allocation_infrastructure,omitempty"`
	Label                    *string  `json:"label,omitempty"`
	Notes                    *string  `json:"notes,omitempty"`
}

// DefaultCurrentCash seeds a lazily created cash position, matching the
// original tool's starting assumption for a new workspace.
const DefaultCurrentCash = 250000.0

// CashPosition is the singleton "where we are today" record. It supplies the
// simulator's initial conditions and absorbs the summary scalars the
// recalculation path writes back.
type CashPosition struct {
	CurrentCash      float64    `json:"current_cash"`
	MonthlyBurnRate  float64    `json:"monthly_burn_rate"`
	CashRunwayMonths int        `json:"cash_runway_months"` // Last computed
	BreakEvenMonth   *int       `json:"break_even_month"`
	LastCalculatedAt *time.Time `json:"last_calculated_at"`
}

// PositionPatch is a partial update to the cash position. Nil fields are
// left unchanged.
type PositionPatch struct {
	CurrentCash      *float64 `json:"current_cash,omitempty"`
	MonthlyBurnRate  *float64 `json:"monthly_burn_rate,omitempty"`
	CashRunwayMonths *int     `json:"cash_runway_months,omitempty"`
	BreakEvenMonth   *int     `json:"break_even_month,omitempty"`
}
