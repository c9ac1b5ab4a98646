package capital

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Seeksy-app/runway/internal/modules/forecast"
)

func TestForecastCache_RoundTrip(t *testing.T) {
	cache := NewForecastCache(setupFinanceDB(t), zerolog.Nop())

	// Empty cache reads as nil, not an error
	entry, err := cache.Get()
	require.NoError(t, err)
	assert.Nil(t, entry)

	breakEven := 3
	result := forecast.Result{
		RunwayMonths:   12,
		BreakEvenMonth: &breakEven,
		Forecast: []forecast.Point{
			{Month: 1, Quarter: "Q1-2026", Year: 2026, EndingCash: 80000, RunwayMonths: 4},
		},
	}
	require.NoError(t, cache.Put(result))

	entry, err = cache.Get()
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 12, entry.Result.RunwayMonths)
	require.NotNil(t, entry.Result.BreakEvenMonth)
	assert.Equal(t, 3, *entry.Result.BreakEvenMonth)
	require.Len(t, entry.Result.Forecast, 1)
	assert.Equal(t, "Q1-2026", entry.Result.Forecast[0].Quarter)
	assert.False(t, entry.GeneratedAt.IsZero())

	// Put replaces the previous entry
	result.RunwayMonths = 20
	require.NoError(t, cache.Put(result))
	entry, err = cache.Get()
	require.NoError(t, err)
	assert.Equal(t, 20, entry.Result.RunwayMonths)

	// Invalidate is idempotent
	require.NoError(t, cache.Invalidate())
	require.NoError(t, cache.Invalidate())
	entry, err = cache.Get()
	require.NoError(t, err)
	assert.Nil(t, entry)
}
