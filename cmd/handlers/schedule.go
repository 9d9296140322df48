package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"newsly/internal/logger"
	"newsly/internal/scheduler"

	"github.com/spf13/cobra"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the send scheduler in the foreground",
		Long: `Run scheduled daily sends without the HTTP server.

Each subscriber with a daily frequency gets a send job at their
configured sendTime in their configured timezone. The process runs
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context())
		},
	}
}

func runSchedule(ctx context.Context) error {
	log := logger.Get()

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.store, a.pipeline, a.mailer)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if sched.Jobs() == 0 {
		log.Warn("No schedulable subscribers found")
	}
	fmt.Printf("Scheduler running with %d job(s). Press Ctrl+C to stop.\n", sched.Jobs())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown

	log.Info("Scheduler shutdown initiated", "signal", sig.String())
	<-sched.Stop().Done()
	log.Info("Scheduler stopped")
	return nil
}
