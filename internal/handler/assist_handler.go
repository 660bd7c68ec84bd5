package handler

import (
	"errors"
	"log"

	"codexplain/internal/guardrail"
	"codexplain/internal/models"
	"codexplain/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AssistHandler wires HTTP → AssistService for the three request modes.
type AssistHandler struct {
	svc *service.AssistService
}

// NewAssistHandler returns a handler instance.
func NewAssistHandler(svc *service.AssistService) *AssistHandler {
	return &AssistHandler{svc: svc}
}

// Register mounts the assist endpoints on the given router.
func (h *AssistHandler) Register(r fiber.Router) {
	r.Post("/explain", h.explain)
	r.Post("/generate-tests", h.generateTests)
	r.Post("/refactor", h.refactor)
}

// explain handles POST /explain { "code": "...", "rag_enabled": true, "k": 4 }
func (h *AssistHandler) explain(c *fiber.Ctx) error {
	var req models.AssistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	resp, err := h.svc.Explain(c.UserContext(), req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(resp)
}

// generateTests handles POST /generate-tests with the same request shape.
func (h *AssistHandler) generateTests(c *fiber.Ctx) error {
	var req models.AssistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	resp, err := h.svc.GenerateTests(c.UserContext(), req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(resp)
}

// refactor handles POST /refactor with the same request shape.
func (h *AssistHandler) refactor(c *fiber.Ctx) error {
	var req models.AssistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	resp, err := h.svc.Refactor(c.UserContext(), req)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(resp)
}

// renderError maps pipeline errors onto the HTTP surface. Guardrail blocks
// are a policy outcome, not a failure: they are delivered as a structured
// 200 body so clients render them without special-casing transport errors.
func (h *AssistHandler) renderError(c *fiber.Ctx, err error) error {
	var blocked *guardrail.BlockedError
	if errors.As(err, &blocked) {
		return c.JSON(fiber.Map{
			"blocked": true,
			"reason":  blocked.Reason,
		})
	}

	switch {
	case errors.Is(err, service.ErrEmptyCode), errors.Is(err, service.ErrCodeTooLong):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmptyModelOutput):
		return fiber.NewError(fiber.StatusBadGateway, "model returned no usable output")
	}

	log.Printf("assist request failed: %v", err)
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
