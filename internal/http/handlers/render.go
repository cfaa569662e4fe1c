package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "productos/internal/log"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Token put into Locals by the CSRF middleware; fall back to the cookie so
	// the hidden form field is never empty.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

const friendlyError = "Algo salió mal. Inténtalo de nuevo."

// ErrorHandler logs the error and shows a generic page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, nil)
	msg := friendlyError
	if code == fiber.StatusNotFound {
		msg = "Página no encontrada"
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
