package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-marketplace/internal/api/handlers"
	"course-marketplace/internal/api/router"
	"course-marketplace/internal/config"
	"course-marketplace/internal/domain"
	"course-marketplace/internal/infrastructure/cache"
	"course-marketplace/internal/infrastructure/database"
	"course-marketplace/internal/infrastructure/events"
	"course-marketplace/internal/infrastructure/export"
	"course-marketplace/internal/infrastructure/mongodb"
	"course-marketplace/internal/infrastructure/repository"
	"course-marketplace/internal/infrastructure/scheduler"
	"course-marketplace/internal/infrastructure/security"
	"course-marketplace/internal/infrastructure/storage"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/internal/service"
	"course-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// application holds the wired dependencies shared by server, worker and seed.
type application struct {
	cfg         *config.Config
	gateway     interfaces.Gateway
	redis       *redis.Client
	courseCache interfaces.CourseCache
	bus         *events.Bus
	tokens      *security.JWTService

	users         serviceInterfaces.UserService
	courses       *service.CourseService
	instructors   *service.InstructorService
	schools       *service.SchoolService
	registrations *service.RegistrationService
	uploads       *service.UploadService
	idempotency   serviceInterfaces.IdempotencyService
}

func openGateway(ctx context.Context, cfg *config.Config) (interfaces.Gateway, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory gateway; data is lost on exit")
		return repository.NewMemoryGateway(), nil

	case "mongodb":
		mongoCfg := mongodb.Config{
			URI:          cfg.Database.MongoURI,
			Database:     cfg.Database.Name,
			Transactions: cfg.Database.MongoTransactions,
		}
		client, err := mongodb.Connect(ctx, mongoCfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewGateway(client, mongoCfg), nil

	default:
		db, err := database.NewConnection(sqlConfig(cfg))
		if err != nil {
			return nil, err
		}
		if cfg.Database.Driver == "sqlite" {
			if err := database.RunMigrations(db); err != nil {
				return nil, err
			}
		}
		return repository.NewGormGateway(db), nil
	}
}

func sqlConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:     cfg.Database.Driver,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.Username,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.Name,
		SSLMode:    cfg.Database.SSLMode,
		Path:       cfg.Database.Path,
		LogQueries: cfg.Database.LogQueries,
	}
}

// openRedis returns nil when the cache is disabled or unreachable; the
// course cache and idempotency store are then switched off.
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Cache.Type != "redis" {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Cache.Host, cfg.Cache.Port)
	client := cache.NewRedisClient(addr, cfg.Cache.Password, cfg.Cache.DB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis at %s unavailable, running without cache: %v", addr, err)
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to redis at %s", addr)
	return client
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	gateway, err := openGateway(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s gateway: %w", cfg.Database.Driver, err)
	}

	bus, err := events.NewBus(events.Config{
		Driver:        cfg.Events.Driver,
		Brokers:       cfg.Events.Brokers,
		ConsumerGroup: cfg.Events.ConsumerGroup,
	})
	if err != nil {
		_ = gateway.Close()
		return nil, err
	}

	app := &application{
		cfg:     cfg,
		gateway: gateway,
		bus:     bus,
		redis:   openRedis(ctx, cfg),
		tokens:  security.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute, cfg.App.Name),
	}

	if app.redis != nil {
		app.courseCache = cache.NewRedisCache(app.redis)
		if cfg.Idempotency.Enabled {
			ttl := time.Duration(cfg.Idempotency.TTLHours) * time.Hour
			app.idempotency = service.NewIdempotencyService(repository.NewRedisIdempotencyRepository(app.redis, ttl), ttl)
		}
	}

	var objectStorage interfaces.ObjectStorage
	if cfg.Storage.SupabaseURL != "" {
		s, err := storage.NewSupabaseStorage(storage.SupabaseConfig{
			URL:    cfg.Storage.SupabaseURL,
			Key:    cfg.Storage.SupabaseKey,
			Bucket: cfg.Storage.Bucket,
			Folder: cfg.Storage.Folder,
		})
		if err != nil {
			logger.Warn("Object storage disabled: %v", err)
		} else {
			objectStorage = s
		}
	}

	app.users = service.NewUserService(gateway, security.NewBcryptHasher(cfg.Auth.BcryptCost), app.tokens)
	app.courses = service.NewCourseService(gateway, bus, app.courseCache)
	app.instructors = service.NewInstructorService(gateway)
	app.schools = service.NewSchoolService(gateway)
	app.registrations = service.NewRegistrationService(gateway, bus, export.NewExcelRoster(), app.courseCache)
	app.uploads = service.NewUploadService(objectStorage)

	return app, nil
}

func (a *application) router() *gin.Engine {
	checks := map[string]handlers.HealthCheckFunc{
		"database": a.gateway.Ping,
	}
	if a.redis != nil {
		checks["cache"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}

	return router.NewRouter(router.Components{
		Version:         a.cfg.App.Version,
		MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
		Tokens:          a.tokens,
		Users:           a.users,
		Courses:         a.courses,
		Instructors:     a.instructors,
		Schools:         a.schools,
		Registration:    a.registrations,
		Upload:          a.uploads,
		Idempotency:     a.idempotency,
		HealthChecks:    checks,
		ReadinessChecks: []string{"database"},
	})
}

// reconcileJob recounts course occupancy on the configured schedule.
func (a *application) reconcileJob() scheduler.Job {
	return scheduler.Job{
		Name:     "reconcile_occupancy",
		Schedule: a.cfg.Jobs.ReconcileSchedule,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) error {
			report, err := a.courses.ReconcileOccupancy(ctx)
			if err != nil {
				return err
			}
			logger.Info("Reconciled %d courses, corrected %d", report.Checked, len(report.Corrected))
			return nil
		},
	}
}

// warmCourseCache preloads the details of active courses.
func (a *application) warmCourseCache(ctx context.Context) {
	if a.courseCache == nil {
		return
	}

	start := time.Now()
	courses, err := a.gateway.Courses().Find(ctx, interfaces.CourseFilter{Status: domain.StatusActive})
	if err != nil {
		logger.Warn("Failed to warm course cache: %v", err)
		return
	}

	cached := 0
	for _, course := range courses {
		if err := a.courseCache.SetCourse(ctx, course, service.CourseDetailsTTL); err != nil {
			logger.Warn("Failed to cache course %s: %v", course.ID, err)
			continue
		}
		cached++
	}
	logger.Info("Cached %d active courses in %v", cached, time.Since(start))
}

func (a *application) Close() error {
	var errs []error
	if err := a.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if err := a.gateway.Close(); err != nil {
		errs = append(errs, fmt.Errorf("gateway: %w", err))
	}
	return errors.Join(errs...)
}
