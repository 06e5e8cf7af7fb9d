// Package server assembles the fiber application: middleware, public routes,
// the guarded admin group and static assets.
package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
	"github.com/anuvataru/jewelry-catalog/internal/auth"
	"github.com/anuvataru/jewelry-catalog/internal/config"
	"github.com/anuvataru/jewelry-catalog/internal/contact"
	"github.com/anuvataru/jewelry-catalog/internal/dashboard"
	"github.com/anuvataru/jewelry-catalog/internal/logging"
	"github.com/anuvataru/jewelry-catalog/internal/metrics"
	"github.com/anuvataru/jewelry-catalog/internal/product"
	"github.com/anuvataru/jewelry-catalog/internal/ratelimit"
	"github.com/anuvataru/jewelry-catalog/internal/upload"
	"github.com/anuvataru/jewelry-catalog/internal/user"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config   config.Config
	Users    user.Repository
	Products product.Repository
	Contacts contact.Repository
	Images   upload.Store
	Tokens   *auth.TokenIssuer

	// Metrics is optional; nil leaves /metrics unmounted.
	Metrics *metrics.Metrics
	// LimiterStorage is optional; nil keeps rate-limit counters in memory.
	LimiterStorage fiber.Storage
	// Ping reports store health for /health; nil always reports OK.
	Ping func(ctx context.Context) error
}

// pages maps HTML routes to files under the public directory.
var pages = map[string]string{
	"/":        "index.html",
	"/catalog": "catalog.html",
	"/gallery": "gallery.html",
	"/contact": "contact.html",
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:      "jewelry-catalog",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: apperr.Handler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(logging.Requests())
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}
	app.Use(recover.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use("/api", ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow, d.LimiterStorage))

	app.Get("/health", health(d.Ping))
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	userHandler := user.NewHandler(user.NewService(d.Users), d.Tokens)
	productService := product.NewService(d.Products, d.Images)
	productHandler := product.NewHandler(productService, cfg.UploadMaxBytes)
	contactService := contact.NewService(d.Contacts)
	contactHandler := contact.NewHandler(contactService)

	// public routes come first; login lives under /api/admin and must be
	// matched before the guarded group below
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	contactHandler.RegisterPublicRoutes(app)

	admin := app.Group("/api/admin", d.Tokens.Middleware())
	userHandler.RegisterProtectedRoutes(admin)
	productHandler.RegisterProtectedRoutes(admin)
	contactHandler.RegisterProtectedRoutes(admin)
	dashboard.NewHandler(productService, contactService).RegisterProtectedRoutes(admin)

	if cfg.UploadDriver == config.UploadLocal || cfg.UploadDriver == "" {
		app.Static(upload.PublicPrefix, cfg.UploadDir)
	}
	app.Static("/public", cfg.PublicDir)
	app.Static("/admin", cfg.AdminDir, fiber.Static{Index: "index.html"})
	for route, file := range pages {
		app.Get(route, page(filepath.Join(cfg.PublicDir, file)))
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Route not found"})
	})
	return app
}

func health(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return apperr.Storage("health: ping", err)
			}
		}
		return c.JSON(fiber.Map{"status": "OK", "timestamp": time.Now().UTC()})
	}
}

func page(path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendFile(path)
	}
}
