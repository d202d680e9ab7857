package handler

import (
	"bytes"
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/fieldcare/internal/service/importer"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

const (
	templateName = "modelo_importacao.xlsx"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RecordStore is the slice of the record store the database endpoints use.
type RecordStore interface {
	Status(ctx context.Context) (store.Status, error)
	Clear(ctx context.Context) error
}

type DatabaseHandler struct {
	store    RecordStore
	importer importer.Service
}

func NewDatabaseHandler(st RecordStore, imp importer.Service) *DatabaseHandler {
	return &DatabaseHandler{store: st, importer: imp}
}

// GET /database/status
func (h *DatabaseHandler) Status(c fiber.Ctx) error {
	st, err := h.store.Status(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, st)
}

// POST /database/import  (multipart field "file")
func (h *DatabaseHandler) Import(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer f.Close()

	db, err := h.importer.Import(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"patientCount":     db.PatientCount(),
		"generalPatients":  len(db.GeneralPatients),
		"pregnantPatients": len(db.PregnantPatients),
		"chronicPatients":  len(db.ChronicPatients),
	})
}

// GET /database/template
func (h *DatabaseHandler) Template(c fiber.Ctx) error {
	data, err := h.importer.Template()
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxMIME)
	c.Attachment(templateName)
	return c.SendStream(bytes.NewReader(data), len(data))
}

// DELETE /database
func (h *DatabaseHandler) Clear(c fiber.Ctx) error {
	if err := h.store.Clear(c.Context()); err != nil {
		return fail(c, err)
	}
	return noContent(c)
}
