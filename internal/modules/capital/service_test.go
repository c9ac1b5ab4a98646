package capital

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Seeksy-app/runway/internal/events"
)

// mockBurnSource implements BurnRateSource for testing
type mockBurnSource struct {
	total float64
	err   error
}

func (m *mockBurnSource) MonthlyBurnTotal() (float64, error) {
	return m.total, m.err
}

// setupService wires a service over in-memory databases with a fixed clock
// (mid-December 2025, so simulation month 1 is January 2026, a quarter start).
func setupService(t *testing.T, burnSource BurnRateSource) (*Service, *EventRepository, *PositionRepository) {
	t.Helper()

	log := zerolog.Nop()
	eventRepo := NewEventRepository(setupLedgerDB(t), log)
	financeDB := setupFinanceDB(t)
	positionRepo := NewPositionRepository(financeDB, log)
	cache := NewForecastCache(financeDB, log)

	svc := NewService(eventRepo, positionRepo, cache, burnSource, events.NewBus(log), 0.05, 36, log)
	svc.now = func() time.Time {
		return time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)
	}

	return svc, eventRepo, positionRepo
}

func TestService_RecalculatePersistsSummary(t *testing.T) {
	svc, _, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	pos, result, err := svc.Recalculate(0)
	require.NoError(t, err)

	assert.Equal(t, 4, result.RunwayMonths)
	assert.Len(t, result.Forecast, 5)
	assert.Nil(t, result.BreakEvenMonth)

	// Summary scalars were written back
	assert.Equal(t, 4, pos.CashRunwayMonths)
	require.NotNil(t, pos.LastCalculatedAt)

	stored, err := positionRepo.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, stored.CashRunwayMonths)
}

func TestService_RecalculateAppliesLedger(t *testing.T) {
	svc, eventRepo, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	// January 2026 is simulation month 1 and a quarter start
	_, err = eventRepo.Create(newTestEvent("Q1", 2026, 60000))
	require.NoError(t, err)

	_, result, err := svc.Recalculate(0)
	require.NoError(t, err)

	assert.Equal(t, 7, result.RunwayMonths, "60k at 20k burn buys three extra months")
	assert.Equal(t, 60000.0, result.Forecast[0].CapitalInflows)
}

func TestService_RecalculateEmitsEvent(t *testing.T) {
	svc, _, _ := setupService(t, nil)

	var received []*events.Event
	svc.eventBus.Subscribe(func(e *events.Event) {
		received = append(received, e)
	})

	_, _, err := svc.Recalculate(0)
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, events.RunwayRecalculated, received[0].Type)
	assert.Equal(t, "capital", received[0].Module)
}

func TestService_CachedOrFresh(t *testing.T) {
	svc, _, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	// First read computes and caches
	first, err := svc.CachedOrFresh()
	require.NoError(t, err)
	require.Len(t, first.Forecast, 5)

	// Position changes do not affect the cached read until invalidation
	newBurn := 50000.0
	_, err = positionRepo.Update(PositionPatch{MonthlyBurnRate: &newBurn})
	require.NoError(t, err)

	second, err := svc.CachedOrFresh()
	require.NoError(t, err)
	assert.Equal(t, len(first.Forecast), len(second.Forecast))

	// Recalculate refreshes the cache
	_, _, err = svc.Recalculate(0)
	require.NoError(t, err)

	third, err := svc.CachedOrFresh()
	require.NoError(t, err)
	assert.Len(t, third.Forecast, 2, "100k at 50k burn depletes in month 2")
}

func TestService_ForecastWithOverrides(t *testing.T) {
	svc, _, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	horizon := 3
	growth := 0.0
	result, err := svc.Forecast(0, &growth, &horizon)
	require.NoError(t, err)
	assert.Len(t, result.Forecast, 3, "Horizon override caps the walk")
	assert.Equal(t, 3, result.RunwayMonths, "Cash survives the shortened horizon")

	// Ad-hoc forecasts never persist
	pos, err := positionRepo.Get()
	require.NoError(t, err)
	assert.Zero(t, pos.CashRunwayMonths)
}

func TestService_SyncBurnRate(t *testing.T) {
	svc, _, positionRepo := setupService(t, &mockBurnSource{total: 42000})

	pos, err := svc.SyncBurnRate()
	require.NoError(t, err)
	assert.Equal(t, 42000.0, pos.MonthlyBurnRate)

	stored, err := positionRepo.Get()
	require.NoError(t, err)
	assert.Equal(t, 42000.0, stored.MonthlyBurnRate)
}

func TestService_SyncBurnRateWithoutSource(t *testing.T) {
	svc, _, _ := setupService(t, nil)

	pos, err := svc.SyncBurnRate()
	require.NoError(t, err)
	assert.Zero(t, pos.MonthlyBurnRate, "No source means the burn rate is left alone")
}

func TestService_RecalculateClearsStaleBreakeven(t *testing.T) {
	svc, _, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	// Revenue above burn from month one: breakeven persists as month 1
	pos, result, err := svc.Recalculate(25000)
	require.NoError(t, err)
	require.NotNil(t, result.BreakEvenMonth)
	assert.Equal(t, 1, *result.BreakEvenMonth)
	require.NotNil(t, pos.BreakEvenMonth)
	assert.Equal(t, 1, *pos.BreakEvenMonth)

	// Zero revenue finds no breakeven; the stored month must be cleared,
	// not left over from the previous run
	pos, result, err = svc.Recalculate(0)
	require.NoError(t, err)
	assert.Nil(t, result.BreakEvenMonth)
	assert.Nil(t, pos.BreakEvenMonth)

	stored, err := positionRepo.Get()
	require.NoError(t, err)
	assert.Nil(t, stored.BreakEvenMonth)
	assert.Equal(t, 4, stored.CashRunwayMonths)
}

func TestService_LedgerMutationsEmitAndInvalidate(t *testing.T) {
	svc, _, positionRepo := setupService(t, nil)

	cash := 100000.0
	burn := 20000.0
	_, err := positionRepo.Update(PositionPatch{CurrentCash: &cash, MonthlyBurnRate: &burn})
	require.NoError(t, err)

	var received []*events.Event
	svc.eventBus.Subscribe(func(e *events.Event) {
		received = append(received, e)
	})

	// Seed the cache with the event-free series
	baseline, err := svc.CachedOrFresh()
	require.NoError(t, err)
	require.Len(t, baseline.Forecast, 5)

	created, err := svc.CreateEvent(newTestEvent("Q1", 2026, 60000))
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, events.LedgerChanged, received[0].Type)
	assert.Equal(t, "created", received[0].Data["action"])
	assert.Equal(t, created.ID, received[0].Data["event_id"])

	// The mutation dropped the cache, so the next read sees the inflow
	refreshed, err := svc.CachedOrFresh()
	require.NoError(t, err)
	assert.Len(t, refreshed.Forecast, 8, "60k at 20k burn buys three extra months")

	newAmount := 20000.0
	_, err = svc.UpdateEvent(created.ID, EventPatch{Amount: &newAmount})
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, "updated", received[1].Data["action"])

	err = svc.DeactivateEvent(created.ID)
	require.NoError(t, err)
	require.Len(t, received, 3)
	assert.Equal(t, "deactivated", received[2].Data["action"])

	// Back to the event-free series
	final, err := svc.CachedOrFresh()
	require.NoError(t, err)
	assert.Len(t, final.Forecast, 5)
}

func TestService_DeactivateUnknownEventDoesNotEmit(t *testing.T) {
	svc, _, _ := setupService(t, nil)

	var received []*events.Event
	svc.eventBus.Subscribe(func(e *events.Event) {
		received = append(received, e)
	})

	err := svc.DeactivateEvent("missing-id")
	require.Error(t, err)
	assert.Empty(t, received)
}
