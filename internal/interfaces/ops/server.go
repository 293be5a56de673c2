// Package ops expone el servidor HTTP de operación: salud del proceso y
// refresco manual del catálogo. No es una superficie de negocio.
package ops

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/pippoche/svbot/internal/application/catalog"
	"github.com/pippoche/svbot/internal/domain"
	"github.com/pippoche/svbot/pkg/logger"
)

// Server es la app fiber de operación.
type Server struct {
	app   *fiber.App
	cache *catalog.Cache
	log   *logger.Logger
}

// New monta las rutas sobre una app nueva.
func New(appName string, cache *catalog.Cache, log *logger.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		log.Debug().Str("request_id", id).Str("path", c.Path()).Msg("petición de operación")
		return c.Next()
	})

	s := &Server{app: app, cache: cache, log: log}

	app.Get("/health", func(c *fiber.Ctx) error {
		snap := cache.Snapshot()
		return c.JSON(fiber.Map{
			"status":       "ok",
			"service":      appName,
			"last_updated": snap.LastUpdated,
			"projects":     len(snap.Projects),
			"employees":    len(snap.Employees),
		})
	})

	app.Post("/admin/refresh", func(c *fiber.Ctx) error {
		if err := cache.Refresh(c.UserContext(), true); err != nil {
			log.Error().Err(err).Msg("refresco por API fallido")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"status":       "refreshed",
			"last_updated": cache.Snapshot().LastUpdated,
		})
	})

	// Las formas web externas entregan el informe final; el enlace se
	// engancha al proyecto por aquí.
	app.Post("/admin/projects/report", func(c *fiber.Ctx) error {
		var req struct {
			Tag string `json:"tag"`
			URL string `json:"url"`
		}
		if err := c.BodyParser(&req); err != nil || req.Tag == "" || req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "se esperan tag y url"})
		}
		if err := cache.SetProjectReportLink(c.UserContext(), req.Tag, req.URL); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			log.Error().Err(err).Str("tag", req.Tag).Msg("no se pudo fijar el enlace de informe")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "updated", "tag": req.Tag})
	})

	return s
}

// Listen bloquea sirviendo en addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown apaga el servidor respetando el contexto.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
