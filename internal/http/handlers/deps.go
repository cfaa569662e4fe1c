package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"productos/internal/api"
	"productos/internal/config"
	"productos/internal/repos"
	"productos/internal/services"
)

type Deps struct {
	Sessions        *services.SessionService
	ProductHandler  *ProductHandler
	ActivityHandler *ActivityHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	sessions := services.NewSessionService(repos.NewSessionRepo(db), client)
	sessions.MaxLive = cfg.SessionMaxLive
	sessions.IdleTTL = cfg.SessionIdleTTL
	activity := services.NewActivityService(repos.NewActivityRepo(db))

	return &Deps{
		Sessions:        sessions,
		ProductHandler:  &ProductHandler{Sessions: sessions, Activity: activity},
		ActivityHandler: &ActivityHandler{Activity: activity},
	}
}

// Register mounts the UI routes on r.
func Register(r fiber.Router, d *Deps) {
	r.Use(WithSession)

	r.Get("/", d.ProductHandler.Index)
	r.Get("/productos/nuevo", d.ProductHandler.New)
	r.Post("/productos", d.ProductHandler.Submit)
	r.Post("/productos/cancelar", d.ProductHandler.Cancel)
	r.Get("/productos/:id/editar", d.ProductHandler.Edit)
	r.Get("/productos/:id/eliminar", d.ProductHandler.ConfirmDelete)
	r.Post("/productos/:id/eliminar", d.ProductHandler.Delete)

	r.Get("/actividad", d.ActivityHandler.List)
}
