package capital

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Seeksy-app/runway/internal/modules/forecast"
)

// forecastCacheKey is the row key for the persisted forecast. The cache is
// single-tenant: one deployment, one forecast.
const forecastCacheKey = "runway_forecast"

// ForecastCache persists the last computed forecast series in finance.db so
// dashboard reads do not re-run the simulation. Entries are msgpack-encoded
// blobs; the cache is a pure derivative of ledger + position state and can
// be dropped at any time.
type ForecastCache struct {
	financeDB *sql.DB
	log       zerolog.Logger
}

// CachedForecast is a forecast result with its generation timestamp.
type CachedForecast struct {
	Result      forecast.Result `msgpack:"result"`
	GeneratedAt time.Time       `msgpack:"generated_at"`
}

// NewForecastCache creates a new forecast cache over finance.db.
func NewForecastCache(financeDB *sql.DB, log zerolog.Logger) *ForecastCache {
	return &ForecastCache{
		financeDB: financeDB,
		log:       log.With().Str("repo", "forecast_cache").Logger(),
	}
}

// Put stores a forecast result, replacing any previous entry.
func (c *ForecastCache) Put(result forecast.Result) error {
	entry := CachedForecast{
		Result:      result,
		GeneratedAt: time.Now().UTC(),
	}

	payload, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}

	_, err = c.financeDB.Exec(
		`INSERT INTO forecast_cache (key, payload, generated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			generated_at = excluded.generated_at`,
		forecastCacheKey, payload, entry.GeneratedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store forecast cache entry: %w", err)
	}

	c.log.Debug().Int("points", len(result.Forecast)).Msg("Cached forecast")
	return nil
}

// Get returns the cached forecast, or nil when no entry exists.
func (c *ForecastCache) Get() (*CachedForecast, error) {
	var payload []byte
	err := c.financeDB.QueryRow(
		"SELECT payload FROM forecast_cache WHERE key = ?",
		forecastCacheKey,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast cache: %w", err)
	}

	var entry CachedForecast
	if err := msgpack.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode forecast cache entry: %w", err)
	}

	return &entry, nil
}

// Invalidate removes the cached forecast. Idempotent.
func (c *ForecastCache) Invalidate() error {
	if _, err := c.financeDB.Exec("DELETE FROM forecast_cache WHERE key = ?", forecastCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate forecast cache: %w", err)
	}
	return nil
}
