package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nivedhr/assessment_portal/handlers"
	"github.com/nivedhr/assessment_portal/middleware"
)

func PortalRoutes(app *fiber.App, h *handlers.PortalHandler, video *handlers.VideoHandler, store *session.Store) {
	app.Get("/", h.ShowRegister)
	app.Post("/", h.SubmitRegistration)

	registered := middleware.CandidateRequired(store)
	app.Get("/test", registered, h.ShowTest)
	app.Post("/test", registered, h.SubmitTest)

	app.Get("/completed", h.Completed)
	app.Post("/tab-switch", h.TabSwitch)
	app.Post("/upload-video", video.Upload)

	debug := app.Group("/debug")
	debug.Get("/db", h.DebugDB)
	debug.Get("/candidate-history/:email", h.DebugCandidateHistory)
}
