package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/Seeksy-app/runway/internal/database"
	"github.com/Seeksy-app/runway/internal/modules/capital"
)

// RecalculateForecastJob refreshes the persisted runway figures overnight so
// the position row and forecast cache track the expense register even when no
// API traffic triggers a recalculation.
type RecalculateForecastJob struct {
	service *capital.Service
	log     zerolog.Logger
}

// NewRecalculateForecastJob creates a new forecast recalculation job
func NewRecalculateForecastJob(service *capital.Service, log zerolog.Logger) *RecalculateForecastJob {
	return &RecalculateForecastJob{
		service: service,
		log:     log.With().Str("job", "recalculate_forecast").Logger(),
	}
}

// Run syncs the burn rate from the expense register, then recalculates.
// Revenue is not tracked by a register, so the scheduled run projects at zero
// revenue; callers supplying a revenue figure use the recalculate endpoint.
func (j *RecalculateForecastJob) Run() error {
	if _, err := j.service.SyncBurnRate(); err != nil {
		return err
	}

	pos, result, err := j.service.Recalculate(0)
	if err != nil {
		return err
	}

	j.log.Info().
		Int("runway_months", result.RunwayMonths).
		Float64("monthly_burn", pos.MonthlyBurnRate).
		Msg("Nightly forecast recalculated")

	return nil
}

// Name returns the job name for scheduler
func (j *RecalculateForecastJob) Name() string {
	return "recalculate_forecast"
}

// WALCheckpointJob truncates the WAL files of all managed databases to keep
// them from growing unbounded between backups.
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Run checkpoints each database, continuing past individual failures
func (j *WALCheckpointJob) Run() error {
	for name, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().
				Str("database", name).
				Err(err).
				Msg("WAL checkpoint failed")
			// Not critical, the next checkpoint will catch up
			continue
		}

		j.log.Debug().Str("database", name).Msg("WAL checkpoint completed")
	}

	return nil
}

// Name returns the job name for scheduler
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}
