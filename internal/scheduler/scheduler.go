// Package scheduler sends each user's digest on their configured schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsly/internal/core"
	"newsly/internal/email"
	"newsly/internal/logger"
	"newsly/internal/pipeline"
	"newsly/internal/prefs"
	"newsly/internal/store"

	"github.com/robfig/cron/v3"
)

// Scheduler registers one cron entry per user, firing daily at the user's
// sendTime in the user's timezone.
type Scheduler struct {
	cron     *cron.Cron
	store    *store.Store
	pipeline *pipeline.Pipeline
	mailer   *email.Mailer
	log      *slog.Logger
}

// New creates a Scheduler. Jobs are registered by Start.
func New(st *store.Store, pl *pipeline.Pipeline, mailer *email.Mailer) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		store:    st,
		pipeline: pl,
		mailer:   mailer,
		log:      logger.Get(),
	}
}

// Start loads all users, registers a send job for each one with a daily
// frequency, and starts the cron loop. Users whose spec cannot be parsed or
// whose frequency is not daily are skipped with a warning.
func (s *Scheduler) Start(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users for scheduling: %w", err)
	}

	for _, user := range users {
		user := user

		spec, err := prefs.Parse(user.Spec)
		if err != nil {
			s.log.Warn("Skipping user with unparseable spec", "user_id", user.ID, "error", err)
			continue
		}

		expr, err := CronSpec(spec)
		if err != nil {
			s.log.Warn("Skipping user", "user_id", user.ID, "email", user.Email, "reason", err)
			continue
		}

		if _, err := s.cron.AddFunc(expr, func() { s.send(user) }); err != nil {
			s.log.Warn("Failed to schedule user", "user_id", user.ID, "cron", expr, "error", err)
			continue
		}

		s.log.Info("Scheduled daily digest", "user_id", user.ID, "email", user.Email, "cron", expr)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron loop and returns a context that is done once all
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("Stopping scheduler")
	return s.cron.Stop()
}

// Jobs reports how many send jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// send generates, records, and delivers one user's digest.
func (s *Scheduler) send(user core.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	content, err := s.pipeline.Generate(ctx, user.Spec)
	if err != nil {
		s.log.Error("Scheduled generation failed", "user_id", user.ID, "error", err)
		return
	}

	if _, err := s.store.SaveNewsletter(ctx, user.ID, content); err != nil {
		s.log.Error("Failed to record scheduled digest", "user_id", user.ID, "error", err)
	}

	if err := s.mailer.SendNewsletter(user.Email, content); err != nil {
		s.log.Error("Failed to deliver scheduled digest", "user_id", user.ID, "email", user.Email, "error", err)
		return
	}

	s.log.Info("Scheduled digest sent", "user_id", user.ID, "email", user.Email)
}

// CronSpec builds the cron expression for a preference spec: daily at
// sendTime, evaluated in the spec's timezone. Only daily frequency is
// schedulable.
func CronSpec(spec prefs.Spec) (string, error) {
	if spec.Frequency != "daily" {
		return "", fmt.Errorf("frequency %q is not schedulable", spec.Frequency)
	}

	at, err := time.Parse("15:04", spec.SendTime)
	if err != nil {
		return "", fmt.Errorf("invalid sendTime %q: %w", spec.SendTime, err)
	}

	if _, err := time.LoadLocation(spec.Timezone); err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", spec.Timezone, err)
	}

	return fmt.Sprintf("CRON_TZ=%s %d %d * * *", spec.Timezone, at.Minute(), at.Hour()), nil
}
