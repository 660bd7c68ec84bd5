package handler

import (
	"strconv"

	"codexplain/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RetrievalHandler exposes the raw vector search for debugging what the
// knowledge base returns for a query, without involving the model.
type RetrievalHandler struct {
	retriever service.Retriever
}

// NewRetrievalHandler returns a handler instance.
func NewRetrievalHandler(retriever service.Retriever) *RetrievalHandler {
	return &RetrievalHandler{retriever: retriever}
}

// Register mounts GET /debug-retrieval on the given router.
func (h *RetrievalHandler) Register(r fiber.Router) {
	r.Get("/debug-retrieval", h.debugRetrieval)
}

// previewLen bounds the chunk excerpt in debug output.
const previewLen = 350

// debugRetrieval handles GET /debug-retrieval?query=some+text&k=4
func (h *RetrievalHandler) debugRetrieval(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter is required")
	}

	kParam := c.Query("k", "4")
	k, err := strconv.Atoi(kParam)
	if err != nil || k <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "k must be a positive integer")
	}

	chunks, err := h.retriever.Retrieve(c.UserContext(), query, k)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	results := make([]fiber.Map, 0, len(chunks))
	for _, chunk := range chunks {
		preview := chunk.Text
		if len(preview) > previewLen {
			preview = preview[:previewLen]
		}
		results = append(results, fiber.Map{
			"source":  chunk.Source,
			"preview": preview,
			"score":   chunk.Score,
		})
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"results": results,
	})
}
