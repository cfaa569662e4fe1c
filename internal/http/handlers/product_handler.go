package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"productos/internal/api"
	applog "productos/internal/log"
	"productos/internal/services"
	"productos/internal/validate"
)

const msgGone = "Este producto ya no está disponible"

type ProductHandler struct {
	Sessions *services.SessionService
	Activity *services.ActivityService
}

func (h *ProductHandler) controller(c *fiber.Ctx) (*services.ProductController, error) {
	return h.Sessions.Controller(sidOf(c))
}

// save persists view state; a failure only costs state across restarts.
func (h *ProductHandler) save(c *fiber.Ctx, ctl *services.ProductController) {
	if err := h.Sessions.Save(sidOf(c), ctl); err != nil {
		applog.Error(c, "session.save.fail", err, nil)
	}
}

func (h *ProductHandler) record(c *fiber.Ctx, action string, id int64, opErr error) {
	if err := h.Activity.Record(sidOf(c), applog.RequestID(c), action, id, opErr); err != nil {
		applog.Error(c, "activity.record.fail", err, map[string]any{"action": action})
	}
}

// upstream adds the status and body of a service rejection to log fields.
func upstream(err error, fields map[string]any) map[string]any {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return fields
	}
	out := map[string]any{"status": se.Code, "body": truncate(se.Body, maxLoggedBody)}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

const maxLoggedBody = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// GET /
// Every page load re-fetches the collection.
func (h *ProductHandler) Index(c *fiber.Ctx) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	if err := ctl.Refresh(); err != nil {
		applog.Error(c, "productos.list.fail", err, upstream(err, nil))
	}
	h.save(c, ctl)
	return render(c, "index", fiber.Map{"V": ctl.View()})
}

// GET /productos/nuevo
func (h *ProductHandler) New(c *fiber.Ctx) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	ctl.BeginCreate()
	h.save(c, ctl)
	return c.Redirect("/")
}

// GET /productos/:id/editar
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
		return notFound(c, msgGone)
	}
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	p, err := ctl.Product(id)
	if err != nil {
		return notFound(c, msgGone)
	}
	ctl.BeginEdit(p)
	h.save(c, ctl)
	return c.Redirect("/")
}

// POST /productos
// The editing id comes from the session draft, never from the form.
func (h *ProductHandler) Submit(c *fiber.Ctx) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	d := ctl.View().Draft
	d.Name = c.FormValue("nombre")
	d.Description = c.FormValue("descripcion")
	d.Price = c.FormValue("precio")
	d.Stock = c.FormValue("stock")

	action, id := "create", int64(0)
	if d.EditingID != nil {
		action, id = "update", *d.EditingID
	}

	saved, opErr := ctl.Submit(d)
	if saved != 0 {
		id = saved
	}
	h.record(c, action, id, opErr)
	fields := map[string]any{"product": id}
	switch {
	case opErr == nil:
		applog.Audit(c, "productos."+action, fields)
	case errors.Is(opErr, services.ErrStale):
		applog.Audit(c, "productos."+action, fields)
		applog.Error(c, "productos.list.fail", opErr, upstream(opErr, nil))
	default:
		applog.Error(c, "productos."+action+".fail", opErr, upstream(opErr, fields))
	}
	h.save(c, ctl)
	return c.Redirect("/")
}

// POST /productos/cancelar
func (h *ProductHandler) Cancel(c *fiber.Ctx) error {
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	ctl.CancelEdit()
	h.save(c, ctl)
	return c.Redirect("/")
}

// GET /productos/:id/eliminar asks before deleting.
func (h *ProductHandler) ConfirmDelete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
		return notFound(c, msgGone)
	}
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	p, err := ctl.Product(id)
	if err != nil {
		return notFound(c, msgGone)
	}
	return render(c, "confirm_delete", fiber.Map{"P": p})
}

// POST /productos/:id/eliminar
// Only confirmar=si deletes.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id", "value": c.Params("id")})
		return c.Status(fiber.StatusBadRequest).SendString("invalid id")
	}
	ctl, err := h.controller(c)
	if err != nil {
		return err
	}
	opErr := ctl.Remove(id, c.FormValue("confirmar") == "si")
	fields := map[string]any{"product": id}
	switch {
	case errors.Is(opErr, services.ErrNotConfirmed):
		applog.Info(c, "productos.delete.declined", fields)
		return c.Redirect("/")
	case opErr == nil:
		applog.Audit(c, "productos.delete", fields)
	case errors.Is(opErr, services.ErrStale):
		applog.Audit(c, "productos.delete", fields)
		applog.Error(c, "productos.list.fail", opErr, upstream(opErr, nil))
	default:
		applog.Error(c, "productos.delete.fail", opErr, upstream(opErr, fields))
	}
	h.record(c, "delete", id, opErr)
	h.save(c, ctl)
	return c.Redirect("/")
}
