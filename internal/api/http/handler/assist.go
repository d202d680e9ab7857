package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/fieldcare/internal/service/assist"
)

type AssistHandler struct {
	svc assist.Service
}

func NewAssistHandler(svc assist.Service) *AssistHandler {
	return &AssistHandler{svc: svc}
}

// POST /assist/rewrite
func (h *AssistHandler) Rewrite(c fiber.Ctx) error {
	var req struct {
		Text   string `json:"text"`
		Target string `json:"target"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	target, err := assist.ParseTarget(req.Target)
	if err != nil {
		return fail(c, err)
	}

	text, err := h.svc.Rewrite(c.Context(), req.Text, target)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"text": text})
}

// POST /assist/populate
func (h *AssistHandler) Populate(c fiber.Ctx) error {
	var req struct {
		Source   string        `json:"source"`
		Template string        `json:"template"`
		Image    *assist.Image `json:"image"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	text, err := h.svc.Populate(c.Context(), req.Source, req.Template, req.Image)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"text": text})
}
