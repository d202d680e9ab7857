package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/service/assist"
	"github.com/Alijeyrad/fieldcare/internal/service/export"
	"github.com/Alijeyrad/fieldcare/internal/service/importer"
	"github.com/Alijeyrad/fieldcare/internal/service/patient"
	"github.com/Alijeyrad/fieldcare/internal/store"
	"github.com/Alijeyrad/fieldcare/pkg/reqctx"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func accepted(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func status(c fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return status(c, fiber.StatusBadRequest, msg)
}

func notFound(c fiber.Ctx, msg string) error {
	return status(c, fiber.StatusNotFound, msg)
}

func internalError(c fiber.Ctx) error {
	return status(c, fiber.StatusInternalServerError, "internal server error")
}

// fail maps a service error onto its HTTP status.
func fail(c fiber.Ctx, err error) error {
	var (
		validation *patient.ValidationError
		imp        *importer.ImportError
		remote     *export.RemoteError
		storage    *store.StorageError
	)
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrUnknownCollection),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrUnknownPathway),
		errors.Is(err, assist.ErrEmptyInput),
		errors.Is(err, assist.ErrInvalidTarget):
		return badRequest(c, err.Error())
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, patient.ErrVisitNotFound),
		errors.Is(err, store.ErrNotFound):
		return notFound(c, err.Error())
	case errors.As(err, &imp):
		return status(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		logFailure(c, err)
		return status(c, fiber.StatusServiceUnavailable, "storage unavailable")
	case errors.As(err, &storage):
		logFailure(c, err)
		return status(c, fiber.StatusServiceUnavailable, "storage error")
	case errors.Is(err, assist.ErrNotConfigured),
		errors.Is(err, export.ErrNotConfigured):
		return status(c, fiber.StatusNotImplemented, err.Error())
	case errors.Is(err, export.ErrQueueFull),
		errors.Is(err, export.ErrQueueStopped):
		return status(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &remote),
		errors.Is(err, assist.ErrUpstream),
		errors.Is(err, assist.ErrEmptyResponse):
		logFailure(c, err)
		return status(c, fiber.StatusBadGateway, err.Error())
	default:
		logFailure(c, err)
		return internalError(c)
	}
}

func logFailure(c fiber.Ctx, err error) {
	reqctx.Logger(c.Context(), slog.Default()).Error("request failed",
		"method", c.Method(), "path", c.Path(), "error", err)
}
