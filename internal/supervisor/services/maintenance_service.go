// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Job is one scheduled maintenance task.
type Job struct {
	Name     string
	Schedule string // standard cron spec or descriptor such as "@every 1m"
	Run      func(ctx context.Context) error
}

// MaintenanceService runs jobs on their cron schedules. Runs of the same
// job never overlap; a run that is still going when the next tick fires
// is skipped.
type MaintenanceService struct {
	jobs   []Job
	parser cron.Parser
}

// NewMaintenanceService validates every schedule. Jobs with an empty
// schedule are dropped.
func NewMaintenanceService(jobs ...Job) (*MaintenanceService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	kept := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Schedule == "" {
			continue
		}
		if _, err := parser.Parse(job.Schedule); err != nil {
			return nil, fmt.Errorf("maintenance job %s: invalid schedule %q: %w", job.Name, job.Schedule, err)
		}
		kept = append(kept, job)
	}
	return &MaintenanceService{jobs: kept, parser: parser}, nil
}

// Jobs returns the scheduled job names.
func (m *MaintenanceService) Jobs() []string {
	out := make([]string, len(m.jobs))
	for i, job := range m.jobs {
		out[i] = job.Name
	}
	return out
}

// Serve implements suture.Service. It waits for running jobs before
// returning.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	logger := cronLogger{log: logging.WithComponent("maintenance")}
	c := cron.New(
		cron.WithParser(m.parser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	for _, job := range m.jobs {
		if _, err := c.AddFunc(job.Schedule, func() { m.run(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (m *MaintenanceService) run(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	err := job.Run(ctx)
	metrics.RecordMaintenance(job.Name, err)
	if err != nil {
		logging.Warn().Err(err).Str("job", job.Name).Msg("Maintenance job failed")
		return
	}
	logging.Debug().Str("job", job.Name).Msg("Maintenance job finished")
}

func (m *MaintenanceService) String() string {
	return "maintenance"
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
