package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/matcher/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, authMW fiber.Handler, auth *handlers.AuthHandler, health *handlers.HealthHandler, analyze *handlers.AnalyzeHandler, history *handlers.HistoryHandler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)

	protected := v1.Group("", authMW)
	protected.Post("/analyze", analyze.Analyze)
	protected.Post("/analyze/file", analyze.AnalyzeFile)
	protected.Post("/analyze/gap", analyze.Gap)
	protected.Get("/history", history.List)

	admin := protected.Group("/admin")
	admin.Get("/history", history.AdminList)
	admin.Get("/stats", history.AdminStats)
}
