package router

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/api/http/handler"
	"github.com/Alijeyrad/fieldcare/internal/service/assist"
	"github.com/Alijeyrad/fieldcare/internal/service/export"
	"github.com/Alijeyrad/fieldcare/internal/service/importer"
	"github.com/Alijeyrad/fieldcare/internal/service/patient"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg          *config.Config
	Store        *store.Store
	PatientSvc   patient.Service
	ImportSvc    importer.Service
	AssistSvc    assist.Service
	ExportClient *export.Client
	ExportQueue  *export.Queue
}

type Router struct {
	cfg      *config.Config
	ready    func(context.Context) error
	patients *handler.PatientHandler
	exports  *handler.ExportHandler
	database *handler.DatabaseHandler
	assist   *handler.AssistHandler
}

func NewRouter(p Params) *Router {
	return &Router{
		cfg: p.Cfg,
		ready: func(ctx context.Context) error {
			_, err := p.Store.Status(ctx)
			if err == nil || errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		},
		patients: handler.NewPatientHandler(p.PatientSvc),
		exports:  handler.NewExportHandler(p.ExportQueue, p.ExportClient.Configured()),
		database: handler.NewDatabaseHandler(p.Store, p.ImportSvc),
		assist:   handler.NewAssistHandler(p.AssistSvc),
	}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	api := app.Group("/api/v1")

	// 2. Domain routes
	api.Get("/pathways", r.patients.Pathways)

	patients := api.Group("/patients")
	patients.Get("/", r.patients.Search)
	patients.Get("/lookup", r.patients.Lookup)
	patients.Get("/:cpf/visits", r.patients.Visits)

	visits := api.Group("/visits")
	visits.Get("/", r.patients.History)
	visits.Post("/", r.patients.SaveVisit)
	visits.Post("/export", r.exports.Export)

	db := api.Group("/database")
	db.Get("/status", r.database.Status)
	db.Post("/import", r.database.Import)
	db.Get("/template", r.database.Template)
	db.Delete("/", r.database.Clear)

	ai := api.Group("/assist")
	ai.Post("/rewrite", r.assist.Rewrite)
	ai.Post("/populate", r.assist.Populate)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.ready(c.Context()) == nil },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.cfg.Observability.Enabled && r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
