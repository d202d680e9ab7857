package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Alijeyrad/fieldcare/pkg/document"
)

// DocumentField selects which identifier FindByDocument compares.
type DocumentField string

const (
	FieldCPF DocumentField = "cpf"
	FieldCNS DocumentField = "cns"
)

// ParseDocumentField validates a document field name.
func ParseDocumentField(s string) (DocumentField, error) {
	switch f := DocumentField(strings.ToLower(s)); f {
	case FieldCPF, FieldCNS:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

func (f DocumentField) of(p *Patient) string {
	if f == FieldCNS {
		return p.CNS
	}
	return p.CPF
}

// FindByName returns the patients whose normalized name contains the
// normalized query.
//
// The three collections are concatenated (general, pregnant, chronic) and
// deduplicated by the raw cpf value, first occurrence wins. Patients
// without a cpf are never collapsed into each other. Results keep the
// concatenation order.
func FindByName(query string, db *Database) []Patient {
	if query == "" || db == nil {
		return []Patient{}
	}
	needle := document.NormalizeName(query)

	all := make([]Patient, 0, db.PatientCount())
	all = append(all, db.GeneralPatients...)
	all = append(all, db.PregnantPatients...)
	all = append(all, db.ChronicPatients...)

	seq := 0
	unique := lo.UniqBy(all, func(p Patient) string {
		if p.CPF == "" {
			seq++
			return fmt.Sprintf("\x00%d", seq)
		}
		return p.CPF
	})

	return lo.Filter(unique, func(p Patient, _ int) bool {
		return strings.Contains(document.NormalizeName(p.Nome), needle)
	})
}

// FindByDocument looks a patient up by cpf or cns. The primary collection
// (the one the current care pathway works with) is scanned first, then
// generalPatients. It returns nil when value is empty or nothing matches.
func FindByDocument(field DocumentField, value string, db *Database, primary Collection) *Patient {
	want := document.Normalize(value)
	if want == "" || db == nil {
		return nil
	}

	scan := func(c Collection) *Patient {
		ps := *db.Patients(c)
		for i := range ps {
			if document.Equal(field.of(&ps[i]), want) {
				return &ps[i]
			}
		}
		return nil
	}

	if p := scan(primary); p != nil {
		return p
	}
	if primary != CollectionGeneral {
		return scan(CollectionGeneral)
	}
	return nil
}
