package handler

import (
	"log"

	"codexplain/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CacheHandler exposes cache statistics and invalidation.
type CacheHandler struct {
	svc *service.AssistService
}

// NewCacheHandler returns a handler instance.
func NewCacheHandler(svc *service.AssistService) *CacheHandler {
	return &CacheHandler{svc: svc}
}

// Register mounts the cache admin endpoints on the given router.
func (h *CacheHandler) Register(r fiber.Router) {
	r.Get("/cache/stats", h.stats)
	r.Post("/cache/clear", h.clear)
}

// stats handles GET /cache/stats
func (h *CacheHandler) stats(c *fiber.Ctx) error {
	return c.JSON(h.svc.CacheStats())
}

// clear handles POST /cache/clear. Entries are dropped; lifetime hit/miss
// counters are not reset.
func (h *CacheHandler) clear(c *fiber.Ctx) error {
	h.svc.ClearCaches()
	log.Printf("response caches cleared")

	return c.JSON(fiber.Map{
		"status":      "all caches cleared",
		"cache_sizes": h.svc.CacheSizes(),
	})
}
