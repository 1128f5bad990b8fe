package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/infrastructure/events"
	"course-marketplace/internal/infrastructure/scheduler"
	"course-marketplace/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	port string
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the HTTP server",
	Long: `Start the HTTP API server.
With events.driver=gochannel the audit consumer runs in-process, and when
jobs.reconcile_schedule is set the occupancy reconcile job is scheduled.`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVarP(&port, "port", "p", "", "Port for the server to listen on (overrides server.port)")
}

func startServer() {
	cfg := config.Get()
	if port != "" {
		cfg.Server.Port = port
	}

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

	app.warmCourseCache(ctx)

	if cfg.Events.Driver == events.DriverGoChannel || cfg.Events.Driver == "" {
		go func() {
			if err := events.RunAudit(ctx, app.bus, &events.AuditHandler{}); err != nil {
				logger.Error("Audit consumer stopped: %v", err)
			}
		}()
	}

	var jobs *scheduler.Scheduler
	if cfg.Jobs.ReconcileSchedule != "" {
		jobs = scheduler.New()
		if err := jobs.Add(app.reconcileJob()); err != nil {
			logger.Fatal("Failed to schedule reconcile job: %v", err)
		}
		jobs.Start()
	}

	srv := &http.Server{
		Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:        app.router(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("Starting server on %s (database=%s, events=%s)", srv.Addr, cfg.Database.Driver, cfg.Events.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}

	logger.Info("Server exited")
}

