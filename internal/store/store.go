// Package store persists the patient aggregate as one envelope under a
// single key of a pluggable key-value backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/pkg/crypto"
)

const (
	// SchemaVersion gates backend schema creation.
	SchemaVersion = 1

	// EnvelopeID is the fixed key of the single persisted record.
	EnvelopeID = "patientData"
)

// Backend is a versioned key-value area holding opaque payloads.
//
// Get returns nil, nil when the key is absent.
type Backend interface {
	Open(ctx context.Context, version int) error
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, payload []byte) error
	Delete(ctx context.Context, id string) error
}

type envelope struct {
	ID       string           `json:"id"`
	Database *domain.Database `json:"database"`
	LoadedAt time.Time        `json:"loadedAt"`
}

// Status summarises the persisted aggregate.
type Status struct {
	PatientCount int       `json:"patientCount"`
	LoadedAt     time.Time `json:"loadedAt"`
}

// Option configures a Store.
type Option func(*Store)

// WithEncryptionKey seals envelopes with AES-256-GCM. key must be 32 bytes.
func WithEncryptionKey(key []byte) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the time source used for loadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the record store. It is safe for concurrent use; writers inside
// one process are serialised.
type Store struct {
	backend Backend
	key     []byte
	now     func() time.Time
	logger  *slog.Logger
	tracer  trace.Tracer

	mu     sync.Mutex
	opened bool
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/Alijeyrad/fieldcare/internal/store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) span(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "store."+op, trace.WithAttributes(attribute.String("store.key", EnvelopeID)))
}

func finish(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Open prepares the backend area. It is idempotent.
func (s *Store) Open(ctx context.Context) (err error) {
	ctx, span := s.span(ctx, "open")
	defer func() { finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(ctx)
}

func (s *Store) openLocked(ctx context.Context) error {
	if s.opened {
		return nil
	}
	if err := s.backend.Open(ctx, SchemaVersion); err != nil {
		return storageErr(opOpen, err)
	}
	s.opened = true
	s.logger.Debug("record store opened", "schema_version", SchemaVersion)
	return nil
}

// Save replaces the persisted aggregate with db.
func (s *Store) Save(ctx context.Context, db *domain.Database) (err error) {
	ctx, span := s.span(ctx, "save")
	defer func() { finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, db)
}

func (s *Store) saveLocked(ctx context.Context, db *domain.Database) error {
	if err := s.openLocked(ctx); err != nil {
		return err
	}
	if db == nil {
		db = domain.NewDatabase()
	}
	db.Normalize()

	payload, err := json.Marshal(envelope{ID: EnvelopeID, Database: db, LoadedAt: s.now().UTC()})
	if err != nil {
		return storageErr("save", fmt.Errorf("encode envelope: %w", err))
	}
	if s.key != nil {
		if payload, err = crypto.Seal(s.key, payload); err != nil {
			return storageErr("save", err)
		}
	}

	if err := s.backend.Put(ctx, EnvelopeID, payload); err != nil {
		return storageErr("save", err)
	}
	return nil
}

// Load returns the persisted aggregate or ErrNotFound.
func (s *Store) Load(ctx context.Context) (_ *domain.Database, err error) {
	ctx, span := s.span(ctx, "load")
	defer func() { finish(span, err) }()

	env, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return env.Database, nil
}

// Status reports the size and timestamp of the persisted aggregate.
func (s *Store) Status(ctx context.Context) (_ Status, err error) {
	ctx, span := s.span(ctx, "status")
	defer func() { finish(span, err) }()

	env, err := s.read(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{PatientCount: env.Database.PatientCount(), LoadedAt: env.LoadedAt}, nil
}

// Clear deletes the persisted aggregate. Subsequent loads return ErrNotFound.
func (s *Store) Clear(ctx context.Context) (err error) {
	ctx, span := s.span(ctx, "clear")
	defer func() { finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(ctx); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, EnvelopeID); err != nil {
		return storageErr("clear", err)
	}
	return nil
}

// Mutate loads the aggregate (an empty one when nothing is persisted),
// applies fn and saves the result as one replace. An error from fn aborts
// without writing.
func (s *Store) Mutate(ctx context.Context, fn func(*domain.Database) error) (_ *domain.Database, err error) {
	ctx, span := s.span(ctx, "mutate")
	defer func() { finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.readLocked(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		env = &envelope{Database: domain.NewDatabase()}
	case err != nil:
		return nil, err
	}

	if err := fn(env.Database); err != nil {
		return nil, err
	}
	if err := s.saveLocked(ctx, env.Database); err != nil {
		return nil, err
	}
	return env.Database, nil
}

func (s *Store) read(ctx context.Context) (*envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

func (s *Store) readLocked(ctx context.Context) (*envelope, error) {
	if err := s.openLocked(ctx); err != nil {
		return nil, err
	}

	payload, err := s.backend.Get(ctx, EnvelopeID)
	if err != nil {
		return nil, storageErr("load", err)
	}
	if payload == nil {
		return nil, ErrNotFound
	}

	if s.key != nil {
		if payload, err = crypto.Open(s.key, payload); err != nil {
			return nil, storageErr("load", err)
		}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, storageErr("load", fmt.Errorf("decode envelope: %w", err))
	}
	if env.Database == nil {
		env.Database = domain.NewDatabase()
	}
	env.Database.Normalize()
	return &env, nil
}
