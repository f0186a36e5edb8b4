package routes

import (
	"platform/backend/config"
	"platform/backend/controllers"
	"platform/backend/middleware"
	"platform/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authMiddleware := middleware.AuthMiddleware(cfg)
	staffOnly := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

	// Certificate verification is the one public surface: anyone holding a
	// code may check authenticity.
	certificateController := controllers.NewCertificateController(db, cfg)
	app.Get("/api/certificates/verify/:code", certificateController.VerifyCertificate)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(db, cfg)
	app.Post("/api/enrollments", authMiddleware, enrollmentController.Enroll)
	app.Get("/api/enrollments", authMiddleware, enrollmentController.GetEnrollments)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Post("/:id/heartbeat", progressController.SyncHeartbeat)
	lessons.Post("/:id/complete", progressController.MarkComplete)
	lessons.Get("/:id/progress", progressController.GetLessonProgress)
	app.Get("/api/progress/:scopeType/:scopeId", authMiddleware, progressController.GetCompletionPercent)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Post("/:id/submit", quizController.SubmitQuiz)
	quizzes.Get("/:id/results", quizController.GetResults)
	quizzes.Get("/:id/analytics", staffOnly, quizController.GetQuizAnalytics)

	// Gamification routes
	gamificationController := controllers.NewGamificationController(db, cfg)
	app.Get("/api/gamification", authMiddleware, gamificationController.GetSnapshot)
	app.Post("/api/activity", authMiddleware, gamificationController.ReportActivity)
	app.Get("/api/leaderboard", authMiddleware, gamificationController.GetLeaderboard)

	// Certificate routes
	app.Post("/api/certificates", authMiddleware, certificateController.IssueCertificate)
	app.Get("/api/certificates", authMiddleware, certificateController.GetCertificates)
}
