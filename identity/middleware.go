// server/identity/middleware.go
package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey is where the middleware stashes the resolved Identity on the
// request context.
const LocalsKey = "identity"

// MiddlewareConfig mirrors the provider's route regime: everything is
// protected except the listed public routes, and ignored routes are never
// touched at all (webhook receiver, static assets).
type MiddlewareConfig struct {
	PublicRoutes    []string
	IgnoredPrefixes []string
}

// Middleware resolves the caller's identity for every request. Protected
// routes get 401 when no identity resolves; public routes pass through with
// the identity attached when one is present.
func (s *Service) Middleware(cfg MiddlewareConfig) fiber.Handler {
	public := make(map[string]bool, len(cfg.PublicRoutes))
	for _, route := range cfg.PublicRoutes {
		public[route] = true
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range cfg.IgnoredPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		if token := tokenFromRequest(c); token != "" {
			if ident, err := s.Verify(token); err == nil {
				c.Locals(LocalsKey, ident)
				return c.Next()
			}
		}

		if public[path] {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Cookies("__session")
}

// FromContext returns the identity the middleware resolved, if any.
func FromContext(c *fiber.Ctx) (Identity, bool) {
	ident, ok := c.Locals(LocalsKey).(Identity)
	return ident, ok
}
