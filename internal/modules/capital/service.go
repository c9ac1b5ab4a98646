package capital

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/events"
	"github.com/Seeksy-app/runway/internal/modules/forecast"
	"github.com/Seeksy-app/runway/internal/utils"
)

// BurnRateSource supplies a monthly burn estimate derived from somewhere
// other than the cash position itself (the recurring expense register).
type BurnRateSource interface {
	MonthlyBurnTotal() (float64, error)
}

// Service orchestrates the recalculate-and-persist cycle: load the ledger
// and cash position, run the pure simulation, write the summary scalars
// back to the position row, cache the full series, and notify subscribers.
//
// The simulator itself never writes; all persistence decisions live here.
type Service struct {
	eventRepo    *EventRepository
	positionRepo *PositionRepository
	cache        *ForecastCache
	burnSource   BurnRateSource // optional; nil disables burn sync
	eventBus     *events.Bus
	log          zerolog.Logger

	// Simulation defaults, from configuration
	growthRate float64
	horizon    int

	// now is injectable for tests; defaults to time.Now
	now func() time.Time
}

// NewService creates a new capital service.
func NewService(
	eventRepo *EventRepository,
	positionRepo *PositionRepository,
	cache *ForecastCache,
	burnSource BurnRateSource,
	eventBus *events.Bus,
	growthRate float64,
	horizon int,
	log zerolog.Logger,
) *Service {
	return &Service{
		eventRepo:    eventRepo,
		positionRepo: positionRepo,
		cache:        cache,
		burnSource:   burnSource,
		eventBus:     eventBus,
		growthRate:   growthRate,
		horizon:      horizon,
		log:          log.With().Str("service", "capital").Logger(),
		now:          time.Now,
	}
}

// simulationEvents converts active ledger events into the simulator's input
// shape. Only the (quarter, year) key and the amount cross the boundary.
func simulationEvents(ledger []CapitalEvent) []forecast.Event {
	evs := make([]forecast.Event, 0, len(ledger))
	for _, e := range ledger {
		evs = append(evs, forecast.Event{
			Quarter: e.TimingQuarter,
			Year:    e.TimingYear,
			Amount:  e.Amount,
		})
	}
	return evs
}

// Forecast runs an ad-hoc simulation from the current ledger and position
// without persisting anything. monthlyRevenue, growthRate, and horizon
// override the stored/configured values when non-negative (growthRate) or
// positive (horizon).
func (s *Service) Forecast(monthlyRevenue float64, growthRate *float64, horizon *int) (forecast.Result, error) {
	ledger, err := s.eventRepo.ListActive()
	if err != nil {
		return forecast.Result{}, err
	}

	pos, err := s.positionRepo.Get()
	if err != nil {
		return forecast.Result{}, err
	}

	growth := s.growthRate
	if growthRate != nil {
		growth = *growthRate
	}
	months := s.horizon
	if horizon != nil {
		months = *horizon
	}

	return forecast.Simulate(forecast.Params{
		CurrentCash:       pos.CurrentCash,
		MonthlyBurnRate:   pos.MonthlyBurnRate,
		MonthlyRevenue:    monthlyRevenue,
		RevenueGrowthRate: growth,
		HorizonMonths:     months,
		Events:            simulationEvents(ledger),
		Now:               s.now(),
	}), nil
}

// Recalculate runs the simulation against the stored position and ledger,
// persists the derived runway and breakeven scalars back to the position,
// caches the forecast series, and emits a RunwayRecalculated event.
//
// Parameters:
//   - monthlyRevenue: Current monthly revenue used to seed the simulation
//
// Returns:
//   - *CashPosition: Position after the summary write-back
//   - forecast.Result: The full simulation result
//   - error: Error if any persistence step fails
func (s *Service) Recalculate(monthlyRevenue float64) (*CashPosition, forecast.Result, error) {
	timer := utils.NewTimer("recalculate_runway", s.log)
	defer timer.Stop()

	result, err := s.Forecast(monthlyRevenue, nil, nil)
	if err != nil {
		return nil, forecast.Result{}, err
	}

	// SetForecastSummary rather than a patch: a nil BreakEvenMonth must
	// clear the stored month, not leave a stale one behind
	pos, err := s.positionRepo.SetForecastSummary(result.RunwayMonths, result.BreakEvenMonth)
	if err != nil {
		return nil, forecast.Result{}, err
	}

	if err := s.cache.Put(result); err != nil {
		// Cache failure degrades reads, it does not invalidate the recalculation
		s.log.Warn().Err(err).Msg("Failed to cache forecast")
	}

	if s.eventBus != nil {
		s.eventBus.Emit(events.RunwayRecalculated, "capital", map[string]interface{}{
			"runway_months":    result.RunwayMonths,
			"break_even_month": result.BreakEvenMonth,
			"forecast_points":  len(result.Forecast),
		})
	}

	s.log.Info().
		Int("runway_months", result.RunwayMonths).
		Int("forecast_points", len(result.Forecast)).
		Msg("Recalculated runway")

	return pos, result, nil
}

// CachedOrFresh returns the cached forecast when present, otherwise runs a
// fresh simulation with stored values (without persisting) and caches it.
func (s *Service) CachedOrFresh() (forecast.Result, error) {
	if cached, err := s.cache.Get(); err != nil {
		s.log.Warn().Err(err).Msg("Forecast cache read failed, recomputing")
	} else if cached != nil {
		return cached.Result, nil
	}

	result, err := s.Forecast(0, nil, nil)
	if err != nil {
		return forecast.Result{}, err
	}

	if err := s.cache.Put(result); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache forecast")
	}

	return result, nil
}

// SyncBurnRate replaces the position's monthly burn rate with the total of
// active recurring expenses, then invalidates the cached forecast.
func (s *Service) SyncBurnRate() (*CashPosition, error) {
	if s.burnSource == nil {
		return s.positionRepo.Get()
	}

	burn, err := s.burnSource.MonthlyBurnTotal()
	if err != nil {
		return nil, err
	}

	pos, err := s.positionRepo.Update(PositionPatch{MonthlyBurnRate: &burn})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate forecast cache")
	}

	return pos, nil
}

// CreateEvent records a new capital event, invalidates the cached forecast,
// and emits a LedgerChanged event.
func (s *Service) CreateEvent(event *CapitalEvent) (*CapitalEvent, error) {
	created, err := s.eventRepo.Create(event)
	if err != nil {
		return nil, err
	}

	s.afterLedgerChange("created", created.ID)
	return created, nil
}

// UpdateEvent applies a partial update to a capital event, invalidates the
// cached forecast, and emits a LedgerChanged event.
func (s *Service) UpdateEvent(id string, patch EventPatch) (*CapitalEvent, error) {
	updated, err := s.eventRepo.Update(id, patch)
	if err != nil {
		return nil, err
	}

	s.afterLedgerChange("updated", id)
	return updated, nil
}

// DeactivateEvent soft-deletes a capital event, invalidates the cached
// forecast, and emits a LedgerChanged event.
func (s *Service) DeactivateEvent(id string) error {
	if err := s.eventRepo.Deactivate(id); err != nil {
		return err
	}

	s.afterLedgerChange("deactivated", id)
	return nil
}

// afterLedgerChange runs the shared post-mutation steps: the cached series
// was computed from a ledger that no longer exists, so drop it, then notify
// subscribers.
func (s *Service) afterLedgerChange(action, id string) {
	if err := s.cache.Invalidate(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate forecast cache")
	}

	if s.eventBus != nil {
		s.eventBus.Emit(events.LedgerChanged, "capital", map[string]interface{}{
			"action":   action,
			"event_id": id,
		})
	}
}
