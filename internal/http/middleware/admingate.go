package middleware

import "github.com/gofiber/fiber/v2"

// Authorizer answers whether the request comes from an authenticated admin.
// Authentication itself lives outside this service; implementations only
// read whatever evidence the upstream auth layer left on the request.
type Authorizer func(c *fiber.Ctx) bool

// AdminGate guards admin-only routes. Requests the authorizer rejects get a
// 401 through the app's global error handler; the gated handler never runs.
func AdminGate(authorize Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authorize(c) {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}

// TrustedHeaderAuthorizer trusts the upstream auth proxy: a request is an
// admin request iff the proxy stamped a non-empty subject header on it.
func TrustedHeaderAuthorizer(header string) Authorizer {
	return func(c *fiber.Ctx) bool {
		return c.Get(header) != ""
	}
}
