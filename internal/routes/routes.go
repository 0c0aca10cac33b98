package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/ai"
	"healthmate-server/internal/config"
	"healthmate-server/internal/events"
	"healthmate-server/internal/handlers"
	"healthmate-server/internal/meetings"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, broadcaster *events.Broadcaster) {
	aiClient := ai.NewClient(cfg.AI)
	meetingProvider := meetings.NewStaticProvider(cfg.Meeting)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	slotHandler := handlers.NewSlotHandler(db, broadcaster)
	appointmentHandler := handlers.NewAppointmentHandler(db, broadcaster, meetingProvider)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db, broadcaster)
	vitalHandler := handlers.NewVitalHandler(db, broadcaster)
	prescriptionHandler := handlers.NewPrescriptionHandler(db, broadcaster)
	notificationHandler := handlers.NewNotificationHandler(db)
	assistantHandler := handlers.NewAssistantHandler(db, aiClient)
	dashboardHandler := handlers.NewDashboardHandler(db)
	auditLogHandler := handlers.NewAuditLogHandler(db)
	eventsHandler := handlers.NewEventsHandler(broadcaster)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Doctor listing with open-slot counts - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Patients of the calling doctor
			userRoutes.GET("/doctor-patients", middleware.RoleAuthMiddleware(models.RoleDoctor), userHandler.GetDoctorPatients)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeactivateUser)
			}
		}

		// Slot routes
		slotRoutes := private.Group("/slots")
		{
			slotRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), slotHandler.CreateSlot)
			slotRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleDoctor), slotHandler.GetMySlots)
			slotRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor), slotHandler.DeleteSlot)

			// Open slots of one doctor, for the booking dialog
			slotRoutes.GET("/doctor/:doctorId", slotHandler.GetDoctorSlots)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("/book", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}

		// Medical record routes
		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.POST("", medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.GET("/patient/:patientId", medicalRecordHandler.GetMedicalRecordsForPatient)
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)
			medicalRecordRoutes.POST("/:id/attachments", medicalRecordHandler.UploadMedicalRecordAttachment)

			// Attachment ids are globally unique, so this sits outside /:id
			private.GET("/medical-records/attachments/:attachmentId", medicalRecordHandler.GetMedicalRecordAttachment)
		}

		// Vitals routes (patient-owned)
		vitalRoutes := private.Group("/vitals")
		vitalRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			vitalRoutes.POST("", vitalHandler.CreateVital)
			vitalRoutes.GET("", vitalHandler.GetVitals)
			vitalRoutes.GET("/latest", vitalHandler.GetLatestVitals)
		}

		// Prescription routes
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptionsForUser)
			prescriptionRoutes.PATCH("/:id/deactivate", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), prescriptionHandler.DeactivatePrescription)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
			notificationRoutes.POST("/read-all", notificationHandler.MarkAllNotificationsRead)
		}

		// Assistant routes (completion API wrapper)
		assistantRoutes := private.Group("/assistant")
		{
			assistantRoutes.POST("/symptom-check", assistantHandler.CheckSymptoms)
			assistantRoutes.POST("/mental-health", assistantHandler.MentalHealthChat)
			assistantRoutes.POST("/education", assistantHandler.GenerateEducation)
			assistantRoutes.POST("/triage", middleware.RoleAuthMiddleware(models.RolePatient), assistantHandler.Triage)
			assistantRoutes.POST("/consultation-summary", middleware.RoleAuthMiddleware(models.RoleDoctor), assistantHandler.SummarizeConsultation)
		}

		// Role-branched dashboard payload
		private.GET("/dashboard", dashboardHandler.GetDashboard)

		// Admin audit log view
		private.GET("/admin/logs", middleware.RoleAuthMiddleware(models.RoleAdmin), auditLogHandler.GetAuditLogs)

		// Per-user change-notification stream
		private.GET("/events", eventsHandler.Stream)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
