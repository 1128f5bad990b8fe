package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/infrastructure/database"
	"course-marketplace/internal/infrastructure/mongodb"
	"course-marketplace/pkg/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long:  "Manage the schema of the configured database driver",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run pending migrations",
	Long: `Apply the schema for the configured driver:
SQL migrations on postgres, AutoMigrate on sqlite and index creation on mongodb.`,
	Run: runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  "Display the status of all SQL migrations (postgres only)",
	Run:   runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) {
	cfg := config.Get()

	switch cfg.Database.Driver {
	case "memory":
		fmt.Println("The memory driver has no schema to migrate.")
		return

	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		mongoCfg := mongodb.Config{URI: cfg.Database.MongoURI, Database: cfg.Database.Name}
		client, err := mongodb.Connect(ctx, mongoCfg)
		if err != nil {
			logger.Error("Failed to connect to mongodb: %v", err)
			os.Exit(1)
		}
		gateway := mongodb.NewGateway(client, mongoCfg)
		defer gateway.Close()

		if err := gateway.EnsureIndexes(ctx); err != nil {
			logger.Error("Index creation failed: %v", err)
			os.Exit(1)
		}
		fmt.Println("Indexes created successfully!")
		return
	}

	db, err := database.NewConnection(sqlConfig(cfg))
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("Migrations completed successfully!")
}

func runMigrateStatus(cmd *cobra.Command, args []string) {
	cfg := config.Get()

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "" {
		fmt.Printf("Migration status is tracked for postgres only (driver: %s)\n", cfg.Database.Driver)
		return
	}

	db, err := database.NewConnection(sqlConfig(cfg))
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	migrationRunner := database.NewMigrationRunner(db, database.EmbeddedMigrations())
	migrations, err := migrationRunner.GetMigrationStatus()
	if err != nil {
		logger.Error("Failed to get migration status: %v", err)
		os.Exit(1)
	}

	fmt.Println("Migration Status:")
	fmt.Println("================")
	for _, migration := range migrations {
		status := "Pending"
		if migration.AppliedAt != nil {
			status = fmt.Sprintf("Applied at %s", migration.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%s - %s [%s]\n", migration.ID, migration.Description, status)
	}
}
