package capital

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupFinanceDB creates an in-memory finance database with the tables the
// position repository and forecast cache need
func setupFinanceDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE cash_position (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current_cash REAL NOT NULL,
		monthly_burn_rate REAL NOT NULL,
		cash_runway_months INTEGER NOT NULL DEFAULT 0,
		break_even_month INTEGER,
		last_calculated_at INTEGER
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE forecast_cache (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		generated_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	return db
}

func TestPositionRepository_GetCreatesDefault(t *testing.T) {
	repo := NewPositionRepository(setupFinanceDB(t), zerolog.Nop())

	pos, err := repo.Get()
	require.NoError(t, err)

	assert.Equal(t, DefaultCurrentCash, pos.CurrentCash)
	assert.Zero(t, pos.MonthlyBurnRate)
	assert.Zero(t, pos.CashRunwayMonths)
	assert.Nil(t, pos.BreakEvenMonth)
	assert.Nil(t, pos.LastCalculatedAt)

	// Second read hits the persisted row, not another default
	again, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, pos.CurrentCash, again.CurrentCash)
}

func TestPositionRepository_UpdateMergesAndStamps(t *testing.T) {
	repo := NewPositionRepository(setupFinanceDB(t), zerolog.Nop())

	cash := 300000.0
	pos, err := repo.Update(PositionPatch{CurrentCash: &cash})
	require.NoError(t, err)
	assert.Equal(t, 300000.0, pos.CurrentCash)
	assert.Zero(t, pos.MonthlyBurnRate, "Unpatched fields keep their values")
	require.NotNil(t, pos.LastCalculatedAt, "Updates stamp last_calculated_at")

	burn := 25000.0
	runway := 12
	breakEven := 7
	pos, err = repo.Update(PositionPatch{
		MonthlyBurnRate:  &burn,
		CashRunwayMonths: &runway,
		BreakEvenMonth:   &breakEven,
	})
	require.NoError(t, err)
	assert.Equal(t, 300000.0, pos.CurrentCash, "Earlier patch survives")
	assert.Equal(t, 25000.0, pos.MonthlyBurnRate)
	assert.Equal(t, 12, pos.CashRunwayMonths)
	require.NotNil(t, pos.BreakEvenMonth)
	assert.Equal(t, 7, *pos.BreakEvenMonth)

	// Round-trip through a fresh read
	got, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 25000.0, got.MonthlyBurnRate)
	require.NotNil(t, got.BreakEvenMonth)
	assert.Equal(t, 7, *got.BreakEvenMonth)
	require.NotNil(t, got.LastCalculatedAt)
}

func TestPositionRepository_SetForecastSummaryClearsBreakeven(t *testing.T) {
	repo := NewPositionRepository(setupFinanceDB(t), zerolog.Nop())

	breakEven := 3
	pos, err := repo.SetForecastSummary(9, &breakEven)
	require.NoError(t, err)
	assert.Equal(t, 9, pos.CashRunwayMonths)
	require.NotNil(t, pos.BreakEvenMonth)
	assert.Equal(t, 3, *pos.BreakEvenMonth)
	require.NotNil(t, pos.LastCalculatedAt)

	// A nil breakeven overwrites the stored month with NULL
	pos, err = repo.SetForecastSummary(4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, pos.CashRunwayMonths)
	assert.Nil(t, pos.BreakEvenMonth)

	got, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, got.CashRunwayMonths)
	assert.Nil(t, got.BreakEvenMonth)
}

func TestPositionRepository_SetForecastSummaryKeepsCashFields(t *testing.T) {
	repo := NewPositionRepository(setupFinanceDB(t), zerolog.Nop())

	cash := 80000.0
	burn := 15000.0
	_, err := repo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	_, err = repo.SetForecastSummary(5, nil)
	require.NoError(t, err)

	got, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, 80000.0, got.CurrentCash)
	assert.Equal(t, 15000.0, got.MonthlyBurnRate)
	assert.Equal(t, 5, got.CashRunwayMonths)
}
