// Package domain holds the patient aggregate persisted by the record store
// and the pure lookups the services build on.
package domain

// Kind identifies the patient variant.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindPregnant Kind = "pregnant"
	KindChronic  Kind = "chronic"
)

// Condition is the chronic condition followed by the programme.
type Condition string

const (
	ConditionDiabetes     Condition = "Diabetes"
	ConditionHypertension Condition = "Hipertensão"
	ConditionBoth         Condition = "Ambos"
)

// Vaccination status values used by the pregnancy programme.
const (
	VaccinationUpToDate   = "Em dia"
	VaccinationLate       = "Atrasada"
	VaccinationNotStarted = "Não iniciada"
)

// Patient is a person followed by the field team.
//
// A Patient carries at most one variant payload. Pregnancy and Chronic are
// embedded so their fields flatten into the same JSON object, matching the
// import spreadsheet columns.
type Patient struct {
	ID             string  `json:"id,omitempty"`
	Nome           string  `json:"nome"`
	NomeSocial     string  `json:"nomeSocial,omitempty"`
	DataNascimento string  `json:"dataNascimento"`
	CPF            string  `json:"cpf"`
	CNS            string  `json:"cns"`
	Telefone       string  `json:"telefone"`
	Visits         []Visit `json:"visits"`

	*Pregnancy
	*Chronic
}

// Pregnancy holds the fields of the pregnancy follow-up programme.
type Pregnancy struct {
	DUM             string `json:"dum,omitempty"`
	DPP             string `json:"dpp,omitempty"`
	SemanasGestacao string `json:"semanasGestacao,omitempty"`
	Vacinacao       string `json:"vacinacao,omitempty"`
	UltimaConsulta  string `json:"ultimaConsulta,omitempty"`
	ProximaConsulta string `json:"proximaConsulta,omitempty"`
}

// Chronic holds the fields of the chronic disease programme.
type Chronic struct {
	Condicao                Condition `json:"condicao,omitempty"`
	UltimoResultadoGlicemia string    `json:"ultimoResultadoGlicemia,omitempty"`
	UltimaAfericaoPA        string    `json:"ultimaAfericaoPA,omitempty"`
}

// Kind reports the variant of p.
func (p *Patient) Kind() Kind {
	switch {
	case p.Chronic != nil:
		return KindChronic
	case p.Pregnancy != nil:
		return KindPregnant
	default:
		return KindGeneral
	}
}

// VisitIndex returns the position of the visit with the given id, or -1.
func (p *Patient) VisitIndex(id string) int {
	for i := range p.Visits {
		if p.Visits[i].ID == id {
			return i
		}
	}
	return -1
}

// retag makes p carry exactly the variant k.
func (p *Patient) retag(k Kind) {
	switch k {
	case KindPregnant:
		p.Chronic = nil
		if p.Pregnancy == nil {
			p.Pregnancy = &Pregnancy{}
		}
	case KindChronic:
		p.Pregnancy = nil
		if p.Chronic == nil {
			p.Chronic = &Chronic{}
		}
	default:
		p.Pregnancy, p.Chronic = nil, nil
	}
}
