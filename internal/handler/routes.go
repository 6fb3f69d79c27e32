package handler

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes mounts the API on app. limit runs in front of the
// recommendation routes, admin in front of the admin routes.
func RegisterRoutes(app *fiber.App, h *DiscoveryHandler, limit, admin fiber.Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Get("/health", h.Health)

	recs := api.Group("/recommendations", limit)
	recs.Post("/quiz", h.QuizRecommendations)
	recs.Post("/prompt", h.PromptRecommendations)

	api.Get("/search", h.Search)
	api.Get("/titles/:type/:id", h.GetTitle)
	api.Get("/genres", h.ListGenres)
	api.Get("/quiz", h.Quiz)

	api.Post("/admin/genres/sync", admin, h.SyncGenres)
}
