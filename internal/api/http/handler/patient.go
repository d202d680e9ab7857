package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

// GET /pathways
func (h *PatientHandler) Pathways(c fiber.Ctx) error {
	return ok(c, domain.Pathways())
}

// GET /patients?q=
func (h *PatientHandler) Search(c fiber.Ctx) error {
	patients, err := h.svc.Search(c.Context(), c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, patients)
}

// GET /patients/lookup?field=cpf&value=...&pathway=diabetes
func (h *PatientHandler) Lookup(c fiber.Ctx) error {
	var q struct {
		Field      string `query:"field"`
		Value      string `query:"value"`
		Pathway    string `query:"pathway"`
		Collection string `query:"collection"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	if q.Field == "" {
		q.Field = string(domain.FieldCPF)
	}

	field, err := domain.ParseDocumentField(q.Field)
	if err != nil {
		return fail(c, err)
	}

	primary := domain.CollectionGeneral
	switch {
	case q.Pathway != "":
		pw, err := domain.PathwayByID(q.Pathway)
		if err != nil {
			return fail(c, err)
		}
		primary = pw.Collection
	case q.Collection != "":
		if primary, err = domain.ParseCollection(q.Collection); err != nil {
			return fail(c, err)
		}
	}

	p, err := h.svc.Lookup(c.Context(), patient.LookupRequest{Field: field, Value: q.Value, Primary: primary})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, p)
}

// GET /patients/:cpf/visits
func (h *PatientHandler) Visits(c fiber.Ctx) error {
	visits, err := h.svc.PatientVisits(c.Context(), c.Params("cpf"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, visits)
}

// GET /visits
func (h *PatientHandler) History(c fiber.Ctx) error {
	entries, err := h.svc.History(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, entries)
}

// POST /visits
func (h *PatientHandler) SaveVisit(c fiber.Ctx) error {
	var form domain.FormData
	if err := c.Bind().JSON(&form); err != nil || form == nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.svc.SaveVisit(c.Context(), form)
	if err != nil {
		return fail(c, err)
	}
	return created(c, res)
}
