package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "productos/internal/log"
	"productos/internal/services"
)

type ActivityHandler struct {
	Activity *services.ActivityService
}

// GET /actividad
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	entries, err := h.Activity.Latest(50)
	if err != nil {
		applog.Error(c, "activity.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "No se pudo cargar la actividad"})
	}
	return render(c, "activity", fiber.Map{"Entries": entries})
}
