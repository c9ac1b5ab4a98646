// Package scheduler runs the service's background jobs on cron schedules.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work. Run does the work; Name identifies the
// job in logs.
type Job interface {
	Run() error
	Name() string
}

// Scheduler wraps a cron runner and logs every job execution
type Scheduler struct {
	cron *cron.Cron
	jobs int
	log  zerolog.Logger
}

// New creates a scheduler. Schedules use the six-field cron format with a
// leading seconds column.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins executing registered jobs on their schedules
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.jobs).Msg("Scheduler started")
}

// Stop halts scheduling and blocks until in-flight jobs finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job against a cron expression, for example
// "0 0 3 * * *" for 3 AM daily or "0 0 4 * * SUN" for Sunday 4 AM.
// Job errors are logged, never fatal; the schedule keeps firing.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Job starting")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
			return
		}

		s.log.Debug().Str("job", job.Name()).Msg("Job finished")
	})
	if err != nil {
		return err
	}

	s.jobs++
	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job on demand")
	return job.Run()
}
