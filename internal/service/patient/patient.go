package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/store"
	"github.com/Alijeyrad/fieldcare/pkg/document"
)

// DefaultName is stored for patients first seen through a visit without a
// name.
const DefaultName = "Nome não informado"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LookupRequest struct {
	Field   domain.DocumentField
	Value   string
	Primary domain.Collection
}

// SaveResult carries the updated aggregate and the patient the visit was
// recorded on.
type SaveResult struct {
	Database *domain.Database `json:"database"`
	Patient  domain.Patient   `json:"patient"`
}

// Repository is the slice of the record store the service needs.
type Repository interface {
	Load(ctx context.Context) (*domain.Database, error)
	Mutate(ctx context.Context, fn func(*domain.Database) error) (*domain.Database, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Search(ctx context.Context, query string) ([]domain.Patient, error)
	Lookup(ctx context.Context, req LookupRequest) (*domain.Patient, error)
	PatientVisits(ctx context.Context, cpf string) ([]domain.Visit, error)
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	SaveVisit(ctx context.Context, form domain.FormData) (*SaveResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Option func(*patientService)

func WithClock(now func() time.Time) Option {
	return func(s *patientService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *patientService) { s.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *patientService) { s.logger = l }
}

type patientService struct {
	repo   Repository
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	saved  metric.Int64Counter
}

func New(repo Repository, opts ...Option) Service {
	s := &patientService{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter("github.com/Alijeyrad/fieldcare/internal/service/patient").
		Int64Counter("visits_saved_total", metric.WithDescription("Visits recorded, by outcome"))
	if err != nil {
		s.logger.Warn("visits counter unavailable", "error", err)
		counter = noop.Int64Counter{}
	}
	s.saved = counter
	return s
}

// load returns the persisted aggregate, or an empty one when nothing has
// been persisted.
func (s *patientService) load(ctx context.Context) (*domain.Database, error) {
	db, err := s.repo.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewDatabase(), nil
	}
	return db, err
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func (s *patientService) Search(ctx context.Context, query string) ([]domain.Patient, error) {
	db, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FindByName(query, db), nil
}

func (s *patientService) Lookup(ctx context.Context, req LookupRequest) (*domain.Patient, error) {
	db, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	p := domain.FindByDocument(req.Field, req.Value, db, req.Primary)
	if p == nil {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (s *patientService) PatientVisits(ctx context.Context, cpf string) ([]domain.Visit, error) {
	db, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := db.ResolveCPF(cpf)
	if !ok {
		return nil, ErrPatientNotFound
	}
	return db.Patient(ref).Visits, nil
}

func (s *patientService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	db, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.AllVisits(db), nil
}

// ---------------------------------------------------------------------------
// Upsert
// ---------------------------------------------------------------------------

// SaveVisit records a visit submission.
//
// The owner is resolved by cpf across chronic, pregnant and general
// patients. A submission carrying visitId edits that visit of the owner;
// otherwise a new visit is appended. Unknown cpfs create a general patient.
// The aggregate is replaced as a whole.
func (s *patientService) SaveVisit(ctx context.Context, form domain.FormData) (*SaveResult, error) {
	cpf := form.String("cpf")
	if document.Normalize(cpf) == "" {
		return nil, &ValidationError{Field: "cpf", Err: ErrDocumentRequired}
	}

	visitID := form.String(domain.VisitIDField)
	data := form.Without(domain.VisitIDField)
	now := s.now().UTC()

	var (
		saved   domain.Patient
		outcome string
	)
	db, err := s.repo.Mutate(ctx, func(db *domain.Database) error {
		ref, ok := db.ResolveCPF(cpf)
		if !ok {
			p := s.newPatient(form, cpf)
			p.Visits = []domain.Visit{{ID: s.newID(), RegisteredAt: now, FormData: data}}
			db.GeneralPatients = append(db.GeneralPatients, p)
			saved, outcome = p, "created"
			return nil
		}

		p := db.Patient(ref)
		if visitID != "" {
			i := p.VisitIndex(visitID)
			if i < 0 {
				return fmt.Errorf("%w: %s", ErrVisitNotFound, visitID)
			}
			p.Visits[i].FormData = data
			p.Visits[i].RegisteredAt = now
			outcome = "updated"
		} else {
			p.Visits = append(p.Visits, domain.Visit{ID: s.newID(), RegisteredAt: now, FormData: data})
			outcome = "appended"
		}
		saved = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.saved.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	s.logger.InfoContext(ctx, "visit saved", "outcome", outcome, "patient_id", saved.ID, "visits", len(saved.Visits))

	return &SaveResult{Database: db, Patient: saved}, nil
}

func (s *patientService) newPatient(form domain.FormData, cpf string) domain.Patient {
	nome := form.String("nome")
	if nome == "" {
		nome = DefaultName
	}
	return domain.Patient{
		ID:             s.newID(),
		Nome:           nome,
		NomeSocial:     form.String("nomeSocial"),
		DataNascimento: form.String("dataNascimento"),
		CPF:            cpf,
		CNS:            form.String("cns"),
		Telefone:       form.String("telefone"),
	}
}
