package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitReachesSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(func(e *Event) {
		received = append(received, e)
	})

	bus.Emit(RunwayRecalculated, "capital", map[string]interface{}{"runway_months": 12})

	require.Len(t, received, 1)
	assert.Equal(t, RunwayRecalculated, received[0].Type)
	assert.Equal(t, "capital", received[0].Module)
	assert.Equal(t, 12, received[0].Data["runway_months"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	count := 0
	unsubscribe := bus.Subscribe(func(e *Event) { count++ })

	bus.Emit(LedgerChanged, "capital", nil)
	unsubscribe()
	bus.Emit(LedgerChanged, "capital", nil)

	assert.Equal(t, 1, count)
}

func TestEmitWithNoSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	// Must not panic
	bus.Emit(BackupCompleted, "reliability", nil)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	first, second := 0, 0
	bus.Subscribe(func(e *Event) { first++ })
	bus.Subscribe(func(e *Event) { second++ })

	bus.Emit(RunwayRecalculated, "capital", nil)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
