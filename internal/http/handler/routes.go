package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/auth"
	"docsearch/internal/config"
	"docsearch/internal/http/middleware"
	"docsearch/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, resolver auth.Resolver, authCfg config.AuthConfig) {
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

	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Backward-compatible simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Every /api route requires the anon API key.
	api := app.Group("/api", middleware.APIKey(authCfg.AnonKey))

	// Text extraction does not need a user session: it is also used
	// internally by the upload workflow over loopback.
	api.Post("/extract-docx", ExtractDocx())

	// Session-scoped routes: ownership comes from the resolved session.
	sessioned := api.Group("", middleware.Session(resolver))
	sessioned.Post("/upload-index", UploadIndex(docSvc))
	sessioned.Get("/search", SearchDocuments(docSvc))
	sessioned.Get("/documents", ListDocuments(docSvc))
	sessioned.Get("/documents/:id", GetDocument(docSvc))

	// Administrative delete requires the service role key instead of a session.
	api.Post("/deleteFile", middleware.ServiceRole(authCfg.ServiceRoleKey), DeleteFile(docSvc))
}
