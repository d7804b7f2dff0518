package sync

import (
	"ankisync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/health", h.HandleHealth)
	group.Get("/decks", h.HandleDecks)
	group.Post("/plan", h.HandlePlan)
	group.Post("/run", h.HandleRun)
}

// HandleHealth reports whether the remote store is reachable.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	version, err := h.service.Ping(c.Context())
	if err != nil {
		l.Error("Anki health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unreachable",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "ok", "anki_version": version})
}

// HandleDecks lists the remote deck names.
func (h *Handler) HandleDecks(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	decks, err := h.service.Decks(c.Context())
	if err != nil {
		l.Error("Deck listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"decks": decks})
}

// runRequest is the body of the plan and run endpoints. Paths are resolved
// on the server's filesystem.
type runRequest struct {
	Path        string `json:"path"`
	RootDeck    string `json:"root_deck"`
	DryRun      bool   `json:"dry_run"`
	FromScratch bool   `json:"from_scratch"`
	Limit       int    `json:"limit"`
}

func (r runRequest) options() Options {
	return Options{
		RootDeck:    r.RootDeck,
		DryRun:      r.DryRun,
		FromScratch: r.FromScratch,
		Limit:       r.Limit,
	}
}

// HandlePlan computes the plan for a path without touching Anki or any file.
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	return h.run(c, true)
}

// HandleRun executes the full pipeline for a path.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	return h.run(c, false)
}

func (h *Handler) run(c *fiber.Ctx, forceDryRun bool) error {
	l := logger.WithRayID(h.service.logger, c)

	var req runRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "path is required",
		})
	}

	opts := req.options()
	if forceDryRun {
		opts.DryRun = true
	}

	reports, err := h.service.SyncPath(c.Context(), req.Path, opts)
	if err != nil && len(reports) == 0 {
		l.Error("Sync failed", zap.String("path", req.Path), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"dry_run": opts.DryRun, "reports": reports})
}
