package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"acervo/internal/http/middleware"
	"acervo/internal/service"
)

// Services groups everything the HTTP surface depends on.
type Services struct {
	Documents service.DocumentService
	Users     service.UserService
	Auth      service.AuthService
	Stats     service.StatsService
}

// Options carries the route-level settings.
type Options struct {
	SessionCookie string
	SessionTTL    time.Duration
	PageSize      int
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services, opts Options) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Readiness: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Session endpoints
	auth := app.Group("/auth")
	auth.Post("/login", Login(svcs.Auth, opts.SessionCookie, opts.SessionTTL))
	auth.Post("/register", Register(svcs.Auth))
	auth.Post("/logout", Logout(opts.SessionCookie))
	auth.Get("/me", middleware.Auth(svcs.Auth, opts.SessionCookie), Me())

	// Everything under /api requires a session
	api := app.Group("/api", middleware.Auth(svcs.Auth, opts.SessionCookie))

	docs := api.Group("/documents")
	docs.Get("/", ListDocuments(svcs.Documents, opts.PageSize))
	docs.Get("/filters", DocumentFilters(svcs.Documents))
	docs.Post("/", UploadDocument(svcs.Documents))
	docs.Get("/:id", GetDocument(svcs.Documents))
	docs.Get("/:id/download", DownloadDocument(svcs.Documents))
	docs.Put("/:id", middleware.AdminOnly(), UpdateDocument(svcs.Documents))
	docs.Delete("/:id", middleware.AdminOnly(), DeleteDocument(svcs.Documents))

	users := api.Group("/users", middleware.AdminOnly())
	users.Get("/", ListUsers(svcs.Users, opts.PageSize))
	users.Put("/:id", UpdateUserRole(svcs.Users))

	api.Get("/admin/stats", middleware.AdminOnly(), AdminStats(svcs.Stats))
}
