package handler

import (
	"codexplain/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every endpoint on the app root.
func RegisterRoutes(app *fiber.App, assistSvc *service.AssistService, retriever service.Retriever) {
	app.Get("/", root)

	NewAssistHandler(assistSvc).Register(app)
	NewRetrievalHandler(retriever).Register(app)
	NewCacheHandler(assistSvc).Register(app)
}

// root handles GET / with a service banner and endpoint map.
func root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "AI Code Explainer",
		"status":  "running",
		"endpoints": fiber.Map{
			"health":         "/health",
			"explain":        "/explain",
			"generate_tests": "/generate-tests",
			"refactor":       "/refactor",
			"cache_stats":    "/cache/stats",
			"cache_clear":    "/cache/clear",
			"debug":          "/debug-retrieval",
		},
	})
}
