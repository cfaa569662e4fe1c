package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sidCookie = "sid"

// WithSession makes sure every request carries a sid cookie and exposes it
// as Locals("sid").
func WithSession(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // set true behind HTTPS
		})
	}
	c.Locals("sid", sid)
	return c.Next()
}

func sidOf(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}
