package domain

import (
	"fmt"

	"github.com/Alijeyrad/fieldcare/pkg/document"
)

// Collection names one of the three patient collections of the aggregate.
type Collection string

const (
	CollectionGeneral  Collection = "generalPatients"
	CollectionPregnant Collection = "pregnantPatients"
	CollectionChronic  Collection = "chronicPatients"
)

// Collections lists the collections in storage order.
var Collections = []Collection{CollectionGeneral, CollectionPregnant, CollectionChronic}

// identityPriority is the order the upsert engine resolves a CPF in. The
// programme collections are the more specific source for a patient.
var identityPriority = []Collection{CollectionChronic, CollectionPregnant, CollectionGeneral}

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	switch c := Collection(s); c {
	case CollectionGeneral, CollectionPregnant, CollectionChronic:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
}

// Kind reports the patient variant stored in c.
func (c Collection) Kind() Kind {
	switch c {
	case CollectionPregnant:
		return KindPregnant
	case CollectionChronic:
		return KindChronic
	default:
		return KindGeneral
	}
}

// Database is the aggregate: the unit of persistence, always read and
// written whole.
type Database struct {
	GeneralPatients  []Patient `json:"generalPatients"`
	PregnantPatients []Patient `json:"pregnantPatients"`
	ChronicPatients  []Patient `json:"chronicPatients"`
}

// NewDatabase returns an aggregate with three empty collections.
func NewDatabase() *Database {
	return &Database{
		GeneralPatients:  []Patient{},
		PregnantPatients: []Patient{},
		ChronicPatients:  []Patient{},
	}
}

// Patients returns a pointer to the slice backing collection c.
func (db *Database) Patients(c Collection) *[]Patient {
	switch c {
	case CollectionGeneral:
		return &db.GeneralPatients
	case CollectionPregnant:
		return &db.PregnantPatients
	case CollectionChronic:
		return &db.ChronicPatients
	default:
		panic(fmt.Sprintf("domain: unknown collection %q", c))
	}
}

// PatientCount sums the three collections.
func (db *Database) PatientCount() int {
	if db == nil {
		return 0
	}
	return len(db.GeneralPatients) + len(db.PregnantPatients) + len(db.ChronicPatients)
}

// Normalize replaces nil collections and visit lists with empty ones and
// tags every patient with the variant of the collection holding it. A
// variant whose fields are all empty decodes as nil, so the collection is
// the source of truth for Kind.
func (db *Database) Normalize() {
	for _, c := range Collections {
		ps := db.Patients(c)
		if *ps == nil {
			*ps = []Patient{}
		}
		for i := range *ps {
			p := &(*ps)[i]
			if p.Visits == nil {
				p.Visits = []Visit{}
			}
			p.retag(c.Kind())
		}
	}
}

// Ref points at a patient inside the aggregate.
type Ref struct {
	Collection Collection
	Index      int
}

// Patient dereferences r against db.
func (db *Database) Patient(r Ref) *Patient {
	return &(*db.Patients(r.Collection))[r.Index]
}

// ResolveCPF finds the patient owning cpf, scanning chronic, pregnant and
// general in that order. The first hit is authoritative.
func (db *Database) ResolveCPF(cpf string) (Ref, bool) {
	want := document.Normalize(cpf)
	if want == "" {
		return Ref{}, false
	}
	for _, c := range identityPriority {
		for i, p := range *db.Patients(c) {
			if document.Equal(p.CPF, want) {
				return Ref{Collection: c, Index: i}, true
			}
		}
	}
	return Ref{}, false
}
