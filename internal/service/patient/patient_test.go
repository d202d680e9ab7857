package patient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Alijeyrad/fieldcare/internal/domain"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

type fixture struct {
	svc   Service
	store *store.Store
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: store.New(store.NewMemory()),
		clock: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	seq := 0
	f.svc = New(f.store,
		WithClock(func() time.Time {
			f.clock = f.clock.Add(time.Minute)
			return f.clock
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	return f
}

func (f *fixture) seed(t *testing.T, db *domain.Database) {
	t.Helper()
	if err := f.store.Save(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// spyRepo records calls and can fail them.
type spyRepo struct {
	loads   int
	mutates int
	err     error
}

func (r *spyRepo) Load(context.Context) (*domain.Database, error) {
	r.loads++
	if r.err != nil {
		return nil, r.err
	}
	return nil, store.ErrNotFound
}

func (r *spyRepo) Mutate(_ context.Context, fn func(*domain.Database) error) (*domain.Database, error) {
	r.mutates++
	if r.err != nil {
		return nil, r.err
	}
	db := domain.NewDatabase()
	return db, fn(db)
}

func TestSaveVisitValidation(t *testing.T) {
	tests := []struct {
		name string
		form domain.FormData
	}{
		{name: "missing cpf", form: domain.FormData{"nome": "Ana"}},
		{name: "empty cpf", form: domain.FormData{"cpf": ""}},
		{name: "punctuation only", form: domain.FormData{"cpf": "..-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &spyRepo{}
			_, err := New(repo).SaveVisit(context.Background(), tt.form)

			var ve *ValidationError
			if !errors.As(err, &ve) || !errors.Is(err, ErrDocumentRequired) {
				t.Fatalf("expected document required, got %v", err)
			}
			if repo.loads+repo.mutates != 0 {
				t.Errorf("storage touched: %d loads, %d mutates", repo.loads, repo.mutates)
			}
		})
	}
}

func TestSaveVisitScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SaveVisit(ctx, domain.FormData{"cpf": "12345678900", "nome": "Ana"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(res.Database.GeneralPatients) != 1 || res.Database.PatientCount() != 1 {
		t.Fatalf("expected 1 general patient, got %d", res.Database.PatientCount())
	}
	if res.Patient.Nome != "Ana" || len(res.Patient.Visits) != 1 {
		t.Fatalf("unexpected patient %+v", res.Patient)
	}

	res, err = f.svc.SaveVisit(ctx, domain.FormData{"cpf": "12345678900", "nome": "Ana", "pressao": "130/80"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	db, err := f.store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.PatientCount() != 1 {
		t.Fatalf("expected 1 patient, got %d", db.PatientCount())
	}
	visits := db.GeneralPatients[0].Visits
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	if visits[1].FormData.String("pressao") != "130/80" {
		t.Errorf("second visit form = %v", visits[1].FormData)
	}
	if !visits[1].RegisteredAt.After(visits[0].RegisteredAt) {
		t.Error("expected later timestamp on the second visit")
	}
}

func TestSaveVisitNewPatientDefaults(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SaveVisit(context.Background(), domain.FormData{
		"cpf":        "123.456.789-00",
		"nomeSocial": "Bia",
		"visitId":    "stale",
	})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}

	p := res.Patient
	if p.ID != "id-1" || p.Nome != DefaultName || p.NomeSocial != "Bia" {
		t.Errorf("unexpected identity %+v", p)
	}
	if p.CPF != "123.456.789-00" {
		t.Errorf("cpf must be stored raw, got %q", p.CPF)
	}
	if p.CNS != "" || p.DataNascimento != "" || p.Telefone != "" {
		t.Errorf("expected empty defaults, got %+v", p)
	}
	if p.Kind() != domain.KindGeneral {
		t.Errorf("kind = %s", p.Kind())
	}
	if len(p.Visits) != 1 || p.Visits[0].ID != "id-2" {
		t.Fatalf("visits = %+v", p.Visits)
	}
	if _, ok := p.Visits[0].FormData[domain.VisitIDField]; ok {
		t.Error("visitId leaked into formData")
	}
}

func TestSaveVisitResolvesByPriority(t *testing.T) {
	f := newFixture(t)
	db := domain.NewDatabase()
	db.GeneralPatients = []domain.Patient{{ID: "g", Nome: "Ana", CPF: "12345678900"}}
	db.ChronicPatients = []domain.Patient{{ID: "c", Nome: "Ana", CPF: "123.456.789-00",
		Chronic: &domain.Chronic{Condicao: domain.ConditionDiabetes}}}
	f.seed(t, db)

	res, err := f.svc.SaveVisit(context.Background(), domain.FormData{"cpf": "123 456 789 00", "glicemia": 140.0})
	if err != nil {
		t.Fatalf("SaveVisit: %v", err)
	}
	if res.Patient.ID != "c" {
		t.Fatalf("expected chronic owner, got %s", res.Patient.ID)
	}
	if n := len(res.Database.GeneralPatients[0].Visits); n != 0 {
		t.Errorf("general duplicate mutated: %d visits", n)
	}
	if res.Database.PatientCount() != 2 {
		t.Errorf("patient created: count %d", res.Database.PatientCount())
	}
}

func TestSaveVisitEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.SaveVisit(ctx, domain.FormData{"cpf": "111", "nome": "Caio", "pressao": "120/80"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	visitID := first.Patient.Visits[0].ID
	created := first.Patient.Visits[0].RegisteredAt

	edit := domain.FormData{"cpf": "111", "visitId": visitID, "pressao": "140/90"}
	for i := 0; i < 2; i++ {
		res, err := f.svc.SaveVisit(ctx, edit)
		if err != nil {
			t.Fatalf("edit %d: %v", i, err)
		}
		visits := res.Patient.Visits
		if len(visits) != 1 {
			t.Fatalf("edit %d changed visit count to %d", i, len(visits))
		}
		if visits[0].ID != visitID || visits[0].FormData.String("pressao") != "140/90" {
			t.Errorf("edit %d: visit = %+v", i, visits[0])
		}
		if !visits[0].RegisteredAt.After(created) {
			t.Errorf("edit %d did not bump registeredAt", i)
		}
		if _, ok := visits[0].FormData["visitId"]; ok {
			t.Error("visitId stored in formData")
		}
	}
}

func TestSaveVisitUnknownVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SaveVisit(ctx, domain.FormData{"cpf": "111", "nome": "Caio"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := f.svc.SaveVisit(ctx, domain.FormData{"cpf": "111", "visitId": "missing", "x": "y"})
	if !errors.Is(err, ErrVisitNotFound) {
		t.Fatalf("expected ErrVisitNotFound, got %v", err)
	}

	db, _ := f.store.Load(ctx)
	if n := len(db.GeneralPatients[0].Visits); n != 1 {
		t.Errorf("failed edit persisted: %d visits", n)
	}
}

func TestSaveVisitStorageFailure(t *testing.T) {
	boom := &store.StorageError{Op: "save", Err: errors.New("disk full")}
	svc := New(&spyRepo{err: boom})

	_, err := svc.SaveVisit(context.Background(), domain.FormData{"cpf": "1"})
	var se *store.StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestQueriesOnEmptyStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Search(ctx, "ana")
	if err != nil || len(got) != 0 {
		t.Errorf("Search() = %v, %v", got, err)
	}
	history, err := f.svc.History(ctx)
	if err != nil || len(history) != 0 {
		t.Errorf("History() = %v, %v", history, err)
	}
	if _, err := f.svc.PatientVisits(ctx, "1"); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("PatientVisits() error = %v", err)
	}
	_, err = f.svc.Lookup(ctx, LookupRequest{Field: domain.FieldCPF, Value: "1", Primary: domain.CollectionGeneral})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Lookup() error = %v", err)
	}
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, form := range []domain.FormData{
		{"cpf": "111", "nome": "José Conceição"},
		{"cpf": "222", "nome": "Maria"},
		{"cpf": "111", "nome": "José Conceição"},
	} {
		if _, err := f.svc.SaveVisit(ctx, form); err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}

	found, err := f.svc.Search(ctx, "jose conceicao")
	if err != nil || len(found) != 1 || found[0].CPF != "111" {
		t.Fatalf("Search() = %v, %v", found, err)
	}

	p, err := f.svc.Lookup(ctx, LookupRequest{Field: domain.FieldCPF, Value: "222", Primary: domain.CollectionChronic})
	if err != nil || p.Nome != "Maria" {
		t.Fatalf("Lookup() = %v, %v", p, err)
	}

	visits, err := f.svc.PatientVisits(ctx, "111")
	if err != nil || len(visits) != 2 {
		t.Fatalf("PatientVisits() = %d, %v", len(visits), err)
	}
	if !visits[0].RegisteredAt.Before(visits[1].RegisteredAt) {
		t.Error("per-patient visits must keep creation order")
	}

	history, err := f.svc.History(ctx)
	if err != nil || len(history) != 3 {
		t.Fatalf("History() = %d, %v", len(history), err)
	}
	if history[0].PatientName != "José Conceição" || history[1].PatientName != "Maria" {
		t.Errorf("history order = %s, %s", history[0].PatientName, history[1].PatientName)
	}
}
