package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/robfig/cron/v3"

	"productos/internal/config"
	"productos/internal/http/handlers"
	applog "productos/internal/log"
	"productos/internal/repos"
	"productos/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	if cfg.BasicAuth() {
		app.Use(handlers.RequireBasicAuth(&services.AuthService{User: cfg.UIUser, Hash: cfg.UIPassHash}))
	}
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Demasiadas solicitudes. Espera un momento."})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Falló la verificación de seguridad. Recarga la página e inténtalo de nuevo."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", "./web/static")
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	deps := handlers.NewDeps(db, cfg)
	handlers.Register(app, deps)

	// ---------- Jobs ----------
	sched := cron.New()
	if _, err := sched.AddFunc("@every 1m", func() {
		n, err := deps.Sessions.Sweep()
		if err != nil {
			applog.Error(nil, "sessions.sweep.fail", err, nil)
			return
		}
		if n > 0 {
			applog.Info(nil, "sessions.sweep", map[string]any{"dropped": n})
		}
	}); err != nil {
		log.Fatal(err)
	}
	sched.Start()
	defer sched.Stop()

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
