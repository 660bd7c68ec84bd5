package handler

import (
	"context"

	"codexplain/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler reports process liveness, store connectivity, and the
// per-mode cache sizes.
type HealthHandler struct {
	db    *mongo.Client
	svc   *service.AssistService
	model string
}

// NewHealthHandler returns a handler instance. db may be nil when the
// service runs without a vector store attached.
func NewHealthHandler(db *mongo.Client, svc *service.AssistService, model string) *HealthHandler {
	return &HealthHandler{db: db, svc: svc, model: model}
}

// Register mounts GET /health on the given router.
func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"model":       h.model,
		"vector_db":   h.checkDB(),
		"cache_sizes": h.svc.CacheSizes(),
	})
}

func (h *HealthHandler) checkDB() string {
	if h.db == nil {
		return "not_configured"
	}
	if err := h.db.Ping(context.Background(), nil); err != nil {
		return "error"
	}
	return "connected"
}
