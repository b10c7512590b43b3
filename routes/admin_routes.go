package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nivedhr/assessment_portal/handlers"
	"github.com/nivedhr/assessment_portal/middleware"
)

func AdminRoutes(app *fiber.App, h *handlers.AdminHandler, store *session.Store) {
	app.Get("/", h.ShowLogin)
	app.Post("/", h.Login)
	app.Get("/logout", h.Logout)

	loggedIn := middleware.AdminRequired(store)
	app.Get("/dashboard", loggedIn, h.Dashboard)
	app.Get("/view_candidates", loggedIn, h.ViewCandidates)
	app.Get("/download_candidates_csv", loggedIn, h.DownloadCandidatesCSV)
	app.Get("/view_scores", loggedIn, h.ViewScores)
	app.Get("/view_scores_by_set", loggedIn, h.ViewScoresBySet)
	app.Post("/view_scores_by_set", loggedIn, h.ViewScoresBySet)
	app.Get("/view_answers/:scoreId", loggedIn, h.ViewAnswers)
	app.Get("/view_answers_by_set/:scoreId", loggedIn, h.ViewAnswersBySet)
}
