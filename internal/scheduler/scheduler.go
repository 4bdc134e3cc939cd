// SPDX-License-Identifier: MIT
// Package scheduler runs the sync job on a cron-style five-field schedule.
// It polls the clock instead of computing next-fire times, so a laptop
// waking from sleep simply misses the markers that passed while it was
// down rather than firing a burst of catch-up runs.
package scheduler

import (
	"context"
	"time"

	"github.com/dynacylabs/github-fork-syncer/internal/schedule"
)

// DefaultPollInterval is how often the scheduler checks whether the
// current minute matches the schedule.
const DefaultPollInterval = 60 * time.Second

// Job is the work the scheduler fires. A returned error marks the run
// failed in the state file but never stops the loop.
type Job func(ctx context.Context) error

// Scheduler fires a Job at most once per matching minute.
type Scheduler struct {
	Spec         *schedule.Spec
	Job          Job
	PollInterval time.Duration
	StatePath    string
	RunOnStartup bool
	Logf         func(format string, args ...any)

	// now is swapped out in tests.
	now       func() time.Time
	lastFired time.Time
	state     State
}

// New builds a Scheduler with the default poll interval.
func New(spec *schedule.Spec, job Job) *Scheduler {
	return &Scheduler{
		Spec:         spec,
		Job:          job,
		PollInterval: DefaultPollInterval,
		now:          time.Now,
	}
}

// Run polls until the context is cancelled. It fires once immediately
// when RunOnStartup is set, then settles into the poll loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.now == nil {
		s.now = time.Now
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s.restoreState()

	if s.RunOnStartup {
		s.fire(ctx, s.now())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick evaluates the schedule against the given instant and fires the job
// if its minute marker is due and has not fired yet. The marker is taken
// once per tick, so a job that runs past the minute boundary cannot
// double-fire.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	marker := now.Truncate(time.Minute)
	if !s.Spec.IsDue(now) {
		return false
	}
	if marker.Equal(s.lastFired) {
		return false
	}
	s.fireAt(ctx, marker)
	return true
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	s.fireAt(ctx, now.Truncate(time.Minute))
}

// fireAt runs the job and only then records the marker, so a crash
// mid-run retries on the next matching minute.
func (s *Scheduler) fireAt(ctx context.Context, marker time.Time) {
	s.logf("scheduler: firing sync run for %s", marker.Format(time.RFC3339))
	err := s.Job(ctx)
	if err != nil {
		s.logf("scheduler: run failed: %v", err)
	}
	s.lastFired = marker
	s.state.RecordRun(marker, err)
	s.persistState()
}

func (s *Scheduler) restoreState() {
	if s.StatePath == "" {
		return
	}
	st, err := LoadState(s.StatePath)
	if err != nil {
		return
	}
	s.state = *st
	s.lastFired = st.LastFire
}

func (s *Scheduler) persistState() {
	if s.StatePath == "" {
		return
	}
	if err := SaveState(&s.state, s.StatePath); err != nil {
		s.logf("scheduler: could not write state file %s: %v", s.StatePath, err)
	}
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
