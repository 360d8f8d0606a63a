package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/audit"
	"github.com/orthoflow/clinic-api/internal/config"
	"github.com/orthoflow/clinic-api/internal/handlers"
	"github.com/orthoflow/clinic-api/internal/infra/repository"
	"github.com/orthoflow/clinic-api/internal/mailer"
	"github.com/orthoflow/clinic-api/internal/metrics"
	"github.com/orthoflow/clinic-api/internal/middleware"
	ucappointment "github.com/orthoflow/clinic-api/internal/usecase/appointment"
	"github.com/orthoflow/clinic-api/internal/usecase/passwordreset"
)

// Setup wires repositories, use cases and handlers onto the engine.
func Setup(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	col *metrics.Collector,
	log *zap.Logger,
) {
	dispatcher := audit.NewDispatcher(audit.New(db), log)

	appointmentRepo := repository.NewAppointmentGormRepository(db)
	resetStore := repository.NewResetTokenGormStore(db)

	book := ucappointment.NewBookAppointment(appointmentRepo, dispatcher)
	update := ucappointment.NewUpdateAppointment(appointmentRepo, dispatcher)
	resets := passwordreset.NewManager(resetStore)

	mail := mailer.New(cfg.SMTP, cfg.FrontendURL, log)

	authHandler := handlers.NewAuthHandler(db, cfg, resets, mail, col, log)
	patientHandler := handlers.NewPatientHandler(db, dispatcher)
	doctorHandler := handlers.NewDoctorHandler(db, dispatcher)
	appointmentHandler := handlers.NewAppointmentHandler(db, book, update, dispatcher, col)
	roomHandler := handlers.NewClinicRoomHandler(db, dispatcher)
	typeHandler := handlers.NewAppointmentTypeHandler(db, dispatcher)
	planHandler := handlers.NewInsurancePlanHandler(db, dispatcher)
	auditHandler := handlers.NewAuditLogsHandler(db)

	api := r.Group("/api")

	// ======================================================
	// PUBLIC
	// ======================================================
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/validate-reset-token", authHandler.ValidateResetToken)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// ======================================================
	// AUTHENTICATED
	// ======================================================
	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(cfg))
	{
		secured.GET("/auth/me", authHandler.Me)
		secured.POST("/auth/refresh", authHandler.Refresh)

		patients := secured.Group("/patients")
		{
			patients.GET("", patientHandler.List)
			patients.POST("", patientHandler.Create)
			patients.GET("/search/cpf/:cpf", patientHandler.SearchByCPF)
			patients.GET("/:id", patientHandler.Get)
			patients.PUT("/:id", patientHandler.Update)
			patients.DELETE("/:id", patientHandler.Delete)
		}

		doctors := secured.Group("/doctors")
		{
			doctors.GET("", doctorHandler.List)
			doctors.POST("", doctorHandler.Create)
			doctors.GET("/search/license/:license", doctorHandler.SearchByLicense)
			doctors.GET("/specialty/:specialty", doctorHandler.ListBySpecialty)
			doctors.GET("/:id", doctorHandler.Get)
			doctors.PUT("/:id", doctorHandler.Update)
			doctors.DELETE("/:id", doctorHandler.Delete)
		}

		appointments := secured.Group("/appointments")
		{
			appointments.GET("", appointmentHandler.List)
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("/doctor/:doctorId/date/:date", appointmentHandler.DoctorAppointmentsByDate)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PUT("/:id", appointmentHandler.Update)
			appointments.PATCH("/:id/status", appointmentHandler.UpdateStatus)
			appointments.DELETE("/:id", appointmentHandler.Cancel)
		}

		rooms := secured.Group("/clinic-rooms")
		{
			rooms.GET("", roomHandler.List)
			rooms.POST("", roomHandler.Create)
			rooms.GET("/available/by-date/:date", roomHandler.AvailableByDate)
			rooms.GET("/:id", roomHandler.Get)
			rooms.PUT("/:id", roomHandler.Update)
			rooms.PATCH("/:id/availability", roomHandler.ToggleAvailability)
			rooms.DELETE("/:id", roomHandler.Delete)
		}

		types := secured.Group("/appointment-types")
		{
			types.GET("", typeHandler.List)
			types.POST("", typeHandler.Create)
			types.GET("/search/by-name/:name", typeHandler.SearchByName)
			types.GET("/:id", typeHandler.Get)
			types.PUT("/:id", typeHandler.Update)
			types.PATCH("/:id/status", typeHandler.ToggleStatus)
			types.DELETE("/:id", typeHandler.Delete)
		}

		plans := secured.Group("/insurance-plans")
		{
			plans.GET("", planHandler.List)
			plans.POST("", planHandler.Create)
			plans.GET("/active", planHandler.ListActive)
			plans.GET("/search/by-name/:name", planHandler.SearchByName)
			plans.GET("/:id", planHandler.Get)
			plans.PUT("/:id", planHandler.Update)
			plans.PATCH("/:id/status", planHandler.ToggleStatus)
			plans.DELETE("/:id", planHandler.Delete)
		}

		secured.GET("/audit-logs", auditHandler.List)
	}
}
