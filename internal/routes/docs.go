package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/GymDeskBack/internal/config"
)

type docEndpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   string `json:"auth"`
	Notes  string `json:"notes,omitempty"`
}

var apiReference = []docEndpoint{
	{Method: "POST", Path: "/api/auth/register", Auth: "public"},
	{Method: "POST", Path: "/api/auth/login", Auth: "public"},
	{Method: "GET", Path: "/api/auth/me", Auth: "bearer"},
	{Method: "GET", Path: "/api/admin/stats", Auth: "admin", Notes: "counts cached, invalidated on writes"},
	{Method: "GET", Path: "/api/admin/members", Auth: "admin"},
	{Method: "POST", Path: "/api/admin/members", Auth: "admin"},
	{Method: "PUT", Path: "/api/admin/members/:id", Auth: "admin"},
	{Method: "DELETE", Path: "/api/admin/members/:id", Auth: "admin"},
	{Method: "GET", Path: "/api/admin/classes", Auth: "admin", Notes: "includes enrolled member roster"},
	{Method: "POST", Path: "/api/admin/classes", Auth: "admin"},
	{Method: "PUT", Path: "/api/admin/classes/:id", Auth: "admin"},
	{Method: "DELETE", Path: "/api/admin/classes/:id", Auth: "admin"},
	{Method: "GET", Path: "/api/admin/workout-plans", Auth: "admin"},
	{Method: "POST", Path: "/api/admin/workout-plans", Auth: "admin", Notes: "multipart, single PDF 'file' field"},
	{Method: "PUT", Path: "/api/admin/workout-plans/:id", Auth: "admin", Notes: "multipart, optional file replacement"},
	{Method: "DELETE", Path: "/api/admin/workout-plans/:id", Auth: "admin"},
	{Method: "GET", Path: "/api/admin/workout-plans/:id/download", Auth: "admin", Notes: "signed URL"},
	{Method: "GET", Path: "/api/member/classes", Auth: "member"},
	{Method: "GET", Path: "/api/member/my-classes", Auth: "member"},
	{Method: "PUT", Path: "/api/member/classes/:id/enroll", Auth: "member"},
	{Method: "DELETE", Path: "/api/member/classes/:id/enroll", Auth: "member"},
	{Method: "GET", Path: "/api/member/my-plans", Auth: "member"},
	{Method: "GET", Path: "/api/member/workout-plans/:id/download", Auth: "member", Notes: "own plans only"},
}

// registerDocs exposes the API reference in development when enabled.
func registerDocs(api fiber.Router, cfg *config.Config) {
	if !cfg.DocsEnabled() {
		return
	}

	api.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    apiReference,
		})
	})
}
