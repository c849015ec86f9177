package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/http/handlers"
	"github.com/spec-kit/inventory-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Products *handlers.ProductsHandler
	Alerts   *handlers.AlertsHandler
	Resolver *auth.Resolver
}

// RegisterRoutes wires HTTP routes. The identity resolver runs on
// every route; role checks happen inside the service operations, so no
// route is gated at the router level.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Resolver.Middleware())

	app.Post("/auth/login", cfg.Auth.Login)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Patch("/:id/stock", cfg.Products.UpdateStock)
	products.Delete("/:id", cfg.Products.Delete)

	app.Get("/stock-changes", cfg.Products.StockChanges)
	app.Get("/protected", cfg.Products.Protected)

	app.Get("/alerts", cfg.Alerts.Upgrade, cfg.Alerts.Handle())
}
