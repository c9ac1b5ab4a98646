package capital

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/database"
)

// PositionRepository handles the singleton cash position record in
// finance.db. The position is created lazily with defaults on first read,
// so Get never reports NotFound. Writes follow last-writer-wins semantics;
// there is no optimistic-lock version field.
type PositionRepository struct {
	financeDB *sql.DB        // finance.db - cash_position table
	log       zerolog.Logger // Structured logger
}

// NewPositionRepository creates a new cash position repository.
//
// Parameters:
//   - financeDB: Database connection to finance.db
//   - log: Structured logger
//
// Returns:
//   - *PositionRepository: Initialized repository instance
func NewPositionRepository(financeDB *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		financeDB: financeDB,
		log:       log.With().Str("repo", "cash_position").Logger(),
	}
}

const positionQuery = `
	SELECT current_cash, monthly_burn_rate, cash_runway_months, break_even_month, last_calculated_at
	FROM cash_position WHERE id = 1
`

const defaultPositionInsert = `
	INSERT INTO cash_position (id, current_cash, monthly_burn_rate, cash_runway_months, break_even_month, last_calculated_at)
	VALUES (1, ?, 0, 0, NULL, NULL)
	ON CONFLICT(id) DO NOTHING
`

// scanPosition reads a cash position row, mapping NULLable columns to nil
// pointers
func scanPosition(row *sql.Row) (*CashPosition, error) {
	var pos CashPosition
	var breakEven sql.NullInt64
	var lastCalculated sql.NullInt64

	err := row.Scan(
		&pos.CurrentCash,
		&pos.MonthlyBurnRate,
		&pos.CashRunwayMonths,
		&breakEven,
		&lastCalculated,
	)
	if err != nil {
		return nil, err
	}

	if breakEven.Valid {
		month := int(breakEven.Int64)
		pos.BreakEvenMonth = &month
	}
	if lastCalculated.Valid {
		ts := time.Unix(lastCalculated.Int64, 0).UTC()
		pos.LastCalculatedAt = &ts
	}

	return &pos, nil
}

// Get returns the stored cash position, or a default-constructed one if
// none exists yet. The default is persisted so subsequent reads and writes
// target a real row.
//
// Returns:
//   - *CashPosition: Current position (never nil)
//   - error: Error if query fails
func (r *PositionRepository) Get() (*CashPosition, error) {
	pos, err := scanPosition(r.financeDB.QueryRow(positionQuery))
	if err == sql.ErrNoRows {
		return r.createDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash position: %w", err)
	}

	return pos, nil
}

// createDefault inserts and returns the default cash position
func (r *PositionRepository) createDefault() (*CashPosition, error) {
	pos := &CashPosition{
		CurrentCash:     DefaultCurrentCash,
		MonthlyBurnRate: 0,
	}

	_, err := r.financeDB.Exec(defaultPositionInsert, DefaultCurrentCash)
	if err != nil {
		return nil, fmt.Errorf("failed to create default cash position: %w", err)
	}

	r.log.Info().Float64("current_cash", DefaultCurrentCash).Msg("Created default cash position")
	return pos, nil
}

// Update merges non-nil patch fields into the stored position and stamps
// last_calculated_at with the current time. The read-merge-write runs in a
// single transaction so concurrent patches cannot interleave.
//
// Parameters:
//   - patch: Fields to change; nil fields are left unchanged
//
// Returns:
//   - *CashPosition: Updated position
//   - error: Error if database operation fails
func (r *PositionRepository) Update(patch PositionPatch) (*CashPosition, error) {
	var pos *CashPosition

	err := database.WithTransaction(r.financeDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(defaultPositionInsert, DefaultCurrentCash); err != nil {
			return fmt.Errorf("failed to ensure cash position row: %w", err)
		}

		current, err := scanPosition(tx.QueryRow(positionQuery))
		if err != nil {
			return fmt.Errorf("failed to read cash position: %w", err)
		}

		if patch.CurrentCash != nil {
			current.CurrentCash = *patch.CurrentCash
		}
		if patch.MonthlyBurnRate != nil {
			current.MonthlyBurnRate = *patch.MonthlyBurnRate
		}
		if patch.CashRunwayMonths != nil {
			current.CashRunwayMonths = *patch.CashRunwayMonths
		}
		if patch.BreakEvenMonth != nil {
			current.BreakEvenMonth = patch.BreakEvenMonth
		}

		now := time.Now().UTC()
		current.LastCalculatedAt = &now

		var breakEven interface{}
		if current.BreakEvenMonth != nil {
			breakEven = *current.BreakEvenMonth
		}

		_, err = tx.Exec(
			`UPDATE cash_position SET
				current_cash = ?, monthly_burn_rate = ?, cash_runway_months = ?,
				break_even_month = ?, last_calculated_at = ?
			 WHERE id = 1`,
			current.CurrentCash,
			current.MonthlyBurnRate,
			current.CashRunwayMonths,
			breakEven,
			now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to update cash position: %w", err)
		}

		pos = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Float64("current_cash", pos.CurrentCash).
		Float64("monthly_burn_rate", pos.MonthlyBurnRate).
		Int("cash_runway_months", pos.CashRunwayMonths).
		Msg("Updated cash position")

	return pos, nil
}

// SetForecastSummary overwrites the runway and breakeven scalars with a
// simulation's output and stamps last_calculated_at. Unlike Update, a nil
// breakEvenMonth is written through as NULL: "no breakeven within the
// horizon" is a result, not an absent field.
//
// Parameters:
//   - runwayMonths: Overall runway from the simulation
//   - breakEvenMonth: First breakeven month, or nil when none was reached
//
// Returns:
//   - *CashPosition: Position after the write-back
//   - error: Error if database operation fails
func (r *PositionRepository) SetForecastSummary(runwayMonths int, breakEvenMonth *int) (*CashPosition, error) {
	pos, err := r.Get()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var breakEven interface{}
	if breakEvenMonth != nil {
		breakEven = *breakEvenMonth
	}

	_, err = r.financeDB.Exec(
		`UPDATE cash_position SET
			cash_runway_months = ?, break_even_month = ?, last_calculated_at = ?
		 WHERE id = 1`,
		runwayMonths,
		breakEven,
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write forecast summary: %w", err)
	}

	pos.CashRunwayMonths = runwayMonths
	pos.BreakEvenMonth = breakEvenMonth
	pos.LastCalculatedAt = &now

	r.log.Debug().
		Int("cash_runway_months", runwayMonths).
		Msg("Wrote forecast summary")

	return pos, nil
}
