package database

import (
	"fmt"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	Path       string
	LogQueries bool
}

// Models lists every table owned by the relational gateway.
var Models = []any{
	&domain.User{},
	&domain.Course{},
	&domain.Instructor{},
	&domain.School{},
	&domain.Registration{},
}

func NewConnection(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s connect_timeout=10",
			config.Host, config.User, config.Password, config.DBName, config.Port, config.SSLMode)
		logger.Debug("Connecting to postgres at %s:%d/%s", config.Host, config.Port, config.DBName)
		dialector = postgres.Open(dsn)
	case "sqlite":
		logger.Debug("Opening sqlite database at %s", config.Path)
		dialector = sqlite.Open(config.Path)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", config.Driver)
	}

	logLevel := gormlogger.Warn
	if config.LogQueries {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if config.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// RunMigrations applies the embedded SQL migrations on postgres and falls
// back to AutoMigrate for sqlite.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("Auto-migrating sqlite schema...")
		if err := db.AutoMigrate(Models...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	logger.Info("Running SQL migrations...")
	if err := NewMigrationRunner(db, EmbeddedMigrations()).RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
