package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/infrastructure/events"
	"course-marketplace/internal/infrastructure/scheduler"
	"course-marketplace/pkg/logger"

	"github.com/spf13/cobra"
)

var runReconcileOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume domain events and run scheduled jobs",
	Long: `Run the audit consumer against the configured event transport and the
occupancy reconcile job when jobs.reconcile_schedule is set.
Use --reconcile-once to recount occupancy a single time and exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWorker()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().BoolVar(&runReconcileOnce, "reconcile-once", false, "Reconcile course occupancy once and exit")
}

func runWorker() {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close resources: %v", err)
		}
	}()

	if runReconcileOnce {
		if err := app.reconcileJob().Run(ctx); err != nil {
			logger.Error("Reconcile failed: %v", err)
		}
		return
	}

	var jobs *scheduler.Scheduler
	if cfg.Jobs.ReconcileSchedule != "" {
		jobs = scheduler.New()
		if err := jobs.Add(app.reconcileJob()); err != nil {
			logger.Fatal("Failed to schedule reconcile job: %v", err)
		}
		jobs.Start()
	}

	if app.bus.Subscriber() != nil {
		logger.Info("Starting audit consumer on %s transport", cfg.Events.Driver)
		if err := events.RunAudit(ctx, app.bus, &events.AuditHandler{}); err != nil {
			logger.Error("Audit consumer stopped: %v", err)
		}
	} else {
		logger.Info("No event subscriber configured, running scheduled jobs only")
		<-ctx.Done()
	}

	if jobs != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		jobs.Stop(stopCtx)
	}
	logger.Info("Worker exited")
}
