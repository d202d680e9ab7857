package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/service/export"
)

// Enqueuer schedules a record for delivery to the spreadsheet endpoint.
type Enqueuer interface {
	Enqueue(record domain.FormData) error
}

type ExportHandler struct {
	queue      Enqueuer
	configured bool
}

func NewExportHandler(queue Enqueuer, configured bool) *ExportHandler {
	return &ExportHandler{queue: queue, configured: configured}
}

// POST /visits/export
func (h *ExportHandler) Export(c fiber.Ctx) error {
	if !h.configured {
		return fail(c, export.ErrNotConfigured)
	}

	var form domain.FormData
	if err := c.Bind().JSON(&form); err != nil || form == nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.queue.Enqueue(form); err != nil {
		return fail(c, err)
	}
	return accepted(c, fiber.Map{"queued": true})
}
