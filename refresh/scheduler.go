// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the refresh once a day at midnight.
const DefaultSchedule = "@daily"

// DefaultRunTimeout bounds a single scheduled run.
const DefaultRunTimeout = time.Hour

// Runner is anything the scheduler can run. *Job satisfies it.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler runs a Runner on a cron schedule. A run that is still going
// when the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	schedule string
	timeout  time.Duration
	entry    cron.EntryID
	logger   *slog.Logger
}

// NewScheduler parses schedule (standard cron syntax or descriptors such as
// @daily and @every 1h) and registers runner. An empty schedule selects
// DefaultSchedule and a non-positive timeout DefaultRunTimeout.
func NewScheduler(runner Runner, schedule string, timeout time.Duration) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}

	logger := slog.Default().With("component", "scheduler")
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:   runner,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}

	entry, err := s.cron.AddFunc(schedule, s.run)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, schedule, err)
	}
	s.entry = entry
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled refresh failed", "err", err)
		return
	}
	s.logger.Info("scheduled refresh finished",
		"fetched", result.Fetched, "unchanged", result.Unchanged, "stored", result.Stored,
		"next", s.Next())
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("refresh scheduled", "schedule", s.schedule, "next", s.Next())
}

// Next returns the time of the next scheduled run, or the zero time if the
// scheduler is not running.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop stops scheduling new runs and waits for a running one to finish or
// for ctx to end, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("timeout waiting for refresh to finish")
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger. Cron's routine info messages are
// logged at debug level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
