package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Subodhrana390/tracker-app/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Post("/api/auth/forgot-password", handlers.ForgotPassword)
	r.Post("/api/auth/reset-password", handlers.ResetPassword)

	// Profile routes
	r.Get("/api/user/profile", handlers.GetProfile)
	r.Post("/api/user/profile", handlers.UpdateProfile)
	r.Post("/api/user/upload", handlers.UploadProfilePicture)

	// Daily diary routes
	r.Get("/api/diary", handlers.GetDiaries)
	r.Post("/api/diary", handlers.UpsertDiary)
	r.Get("/api/diary/{day}", handlers.GetDiaryByDay)

	// Project routes
	r.Get("/api/project", handlers.GetProjects)
	r.Post("/api/project", handlers.CreateProject)
	r.Put("/api/project", handlers.UpdateProject)
	r.Delete("/api/project", handlers.DeleteProject)

	// Final report routes
	r.Get("/api/finalreport", handlers.GetFinalReports)
	r.Get("/api/finalreport/status", handlers.FinalReportStatus)
	r.Post("/api/finalreport", handlers.SubmitFinalReport)

	// Certificate routes
	r.Get("/api/certificate", handlers.GetCertificate)
	r.Post("/api/certificate", handlers.UploadCertificate)
}
