package http

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts the shell's routes on app
func (hdl *HTTPHandler) Register(app fiber.Router) {
	app.Get("/health", hdl.HealthCheck)
	app.Get("/", hdl.Home)
	app.Post("/logout", hdl.Logout)

	signedIn := app.Group("/app", hdl.RequireAuthenticated)
	{
		signedIn.Get("/", hdl.App)
		signedIn.Get("/*", hdl.App)
	}

	magnolia := app.Group("/v1/api")
	{
		magnolia.Get("/session", hdl.GetSession)
		magnolia.Post("/session/refresh", hdl.RefreshSession)
		magnolia.Get("/diagnostics", hdl.ListDiagnostics)
	}
}
