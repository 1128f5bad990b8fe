package router

import (
	"course-marketplace/internal/api/handlers"
	"course-marketplace/internal/api/middleware"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Components carries everything the HTTP surface is wired from.
// Idempotency and Upload may be nil.
type Components struct {
	Version        string
	MaxUploadBytes int64

	Tokens       interfaces.TokenService
	Users        serviceInterfaces.UserService
	Courses      serviceInterfaces.CourseService
	Instructors  serviceInterfaces.InstructorService
	Schools      serviceInterfaces.SchoolService
	Registration serviceInterfaces.RegistrationService
	Upload       serviceInterfaces.UploadService
	Idempotency  serviceInterfaces.IdempotencyService

	HealthChecks map[string]handlers.HealthCheckFunc
	// ReadinessChecks names the HealthChecks that gate /ready.
	ReadinessChecks []string
}

func NewRouter(c Components) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(cors.New(corsConfig()))
	r.Use(gin.Recovery())

	userHandler := handlers.NewUserHandler(c.Users)
	courseHandler := handlers.NewCourseHandler(c.Courses, c.Registration)
	instructorHandler := handlers.NewInstructorHandler(c.Instructors)
	schoolHandler := handlers.NewSchoolHandler(c.Schools)
	registrationHandler := handlers.NewRegistrationHandler(c.Registration)
	uploadHandler := handlers.NewUploadHandler(c.Upload, c.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(c.Version, c.HealthChecks, c.ReadinessChecks...)

	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/ready", healthHandler.ReadinessCheck)
	r.GET("/live", healthHandler.LivenessCheck)

	authed := middleware.RequireAuth()
	admin := middleware.RequireAdmin()

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(c.Tokens, c.Users))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.PUT("/password", authed, userHandler.ChangePassword)
		}

		users := v1.Group("/users")
		{
			users.GET("", admin, userHandler.ListUsers)
			users.GET("/:id", authed, userHandler.GetUser)
			users.PUT("/:id", authed, userHandler.UpdateUser)
			users.DELETE("/:id", admin, userHandler.DeleteUser)
			users.PATCH("/:id/role", admin, userHandler.ChangeRole)
		}

		courses := v1.Group("/courses")
		{
			courses.GET("", courseHandler.ListCourses)
			courses.GET("/:id", courseHandler.GetCourse)
			courses.POST("", authed, courseHandler.CreateCourse)
			courses.PUT("/reset", admin, courseHandler.ResetCourses)
			courses.PUT("/:id", authed, courseHandler.UpdateCourse)
			courses.DELETE("/:id", authed, courseHandler.DeleteCourse)
			courses.GET("/:id/registrations", authed, courseHandler.GetCourseRegistrations)
			courses.GET("/:id/registrations/export", admin, courseHandler.ExportRoster)
		}

		instructors := v1.Group("/instructors")
		{
			instructors.GET("", instructorHandler.ListInstructors)
			instructors.GET("/:id", instructorHandler.GetInstructor)
			instructors.GET("/by-user/:userId", instructorHandler.GetInstructorByUser)
			instructors.POST("", authed, instructorHandler.CreateInstructor)
			instructors.PUT("/:id", authed, instructorHandler.UpdateInstructor)
			instructors.DELETE("/:id", authed, instructorHandler.DeleteInstructor)
		}

		schools := v1.Group("/schools")
		{
			schools.GET("", schoolHandler.ListSchools)
			schools.GET("/:id", schoolHandler.GetSchool)
			schools.GET("/by-owner/:ownerId", schoolHandler.GetSchoolByOwner)
			schools.POST("", authed, schoolHandler.CreateSchool)
			schools.PUT("/:id", authed, schoolHandler.UpdateSchool)
			schools.DELETE("/:id", authed, schoolHandler.DeleteSchool)
		}

		registrations := v1.Group("/registrations", authed)
		{
			registrations.POST("", middleware.Idempotency(c.Idempotency), registrationHandler.CreateRegistration)
			registrations.GET("/student/:studentId", registrationHandler.GetStudentRegistrations)
			registrations.PATCH("/:id/status", registrationHandler.UpdateRegistrationStatus)
			registrations.DELETE("/:id", registrationHandler.DeleteRegistration)
		}

		v1.POST("/uploads", authed, uploadHandler.UploadImage)
	}

	return r
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.IdempotencyKeyHeader, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader, middleware.ReplayedHeader}
	return cfg
}
