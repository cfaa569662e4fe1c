package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	applog "productos/internal/log"
	"productos/internal/services"
)

// RequireBasicAuth guards the UI with a single bcrypt-checked account.
func RequireBasicAuth(auth *services.AuthService) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm:      "productos",
		Authorizer: auth.Authorize,
		Unauthorized: func(c *fiber.Ctx) error {
			applog.Security(c, "auth.basic.fail", nil)
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="productos"`)
			return c.SendStatus(fiber.StatusUnauthorized)
		},
	})
}
