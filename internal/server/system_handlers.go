package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Seeksy-app/runway/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	ledgerDB    *database.DB
	financeDB   *database.DB
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, ledgerDB, financeDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		ledgerDB:    ledgerDB,
		financeDB:   financeDB,
	}
}

// HandleHealth handles GET /health - a cheap liveness probe
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := h.ledgerDB.QuickCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Ledger database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := h.financeDB.QuickCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Finance database ping failed")
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.startupTime).Seconds()),
	})
}

// HandleSystemHealth handles GET /api/system/health - host and database
// metrics for the operations dashboard
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startupTime).Seconds()),
		"timestamp":      time.Now().Format(time.RFC3339),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		response["memory"] = map[string]interface{}{
			"total_mb":     vm.Total / 1024 / 1024,
			"used_mb":      vm.Used / 1024 / 1024,
			"used_percent": vm.UsedPercent,
		}
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory stats")
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		response["cpu_percent"] = percents[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU stats")
	}

	databases := make(map[string]interface{})
	for _, db := range []*database.DB{h.ledgerDB, h.financeDB} {
		entry := map[string]interface{}{"healthy": true}
		if err := db.QuickCheck(r.Context()); err != nil {
			entry["healthy"] = false
			entry["error"] = err.Error()
		}
		if stats, err := db.GetStats(); err == nil {
			entry["size_bytes"] = stats.SizeBytes
			entry["wal_size_bytes"] = stats.WALSizeBytes
			entry["page_count"] = stats.PageCount
		}
		databases[db.Name()] = entry
	}
	response["databases"] = databases

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
