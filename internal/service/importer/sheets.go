package importer

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Alijeyrad/fieldcare/internal/domain"
)

// sheet binds a workbook tab to the collection it feeds.
type sheet struct {
	Name       string
	Collection domain.Collection
	Condition  domain.Condition
}

// Sheets lists the recognised tabs in processing order.
var Sheets = []sheet{
	{Name: "TPC", Collection: domain.CollectionGeneral},
	{Name: "PBK", Collection: domain.CollectionGeneral},
	{Name: "PBG", Collection: domain.CollectionPregnant},
	{Name: "PBD", Collection: domain.CollectionChronic, Condition: domain.ConditionDiabetes},
	{Name: "PBH", Collection: domain.CollectionChronic, Condition: domain.ConditionHypertension},
}

var (
	identityHeaders  = []string{"id", "nome", "nomeSocial", "dataNascimento", "cpf", "cns", "telefone"}
	pregnancyHeaders = []string{"dum", "dpp", "semanasGestacao", "vacinacao", "ultimaConsulta", "proximaConsulta"}
	chronicHeaders   = []string{"ultimoResultadoGlicemia", "ultimaAfericaoPA"}
)

func (s sheet) headers() []string {
	out := append([]string{}, identityHeaders...)
	switch s.Collection {
	case domain.CollectionPregnant:
		out = append(out, pregnancyHeaders...)
	case domain.CollectionChronic:
		out = append(out, chronicHeaders...)
	}
	return out
}

// newPatient returns an empty patient of the sheet's variant.
func (s sheet) newPatient() domain.Patient {
	var p domain.Patient
	switch s.Collection {
	case domain.CollectionPregnant:
		p.Pregnancy = &domain.Pregnancy{}
	case domain.CollectionChronic:
		p.Chronic = &domain.Chronic{Condicao: s.Condition}
	}
	return p
}

// dateFields hold spreadsheet serials that are stored as YYYY-MM-DD.
var dateFields = map[string]bool{
	"dataNascimento":  true,
	"dum":             true,
	"dpp":             true,
	"ultimaConsulta":  true,
	"proximaConsulta": true,
}

// toDate converts a spreadsheet date serial. Textual values are kept.
func toDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}

// setters assign a cell to a patient field. They report false when the
// field does not exist on the patient's variant.
var setters = map[string]func(p *domain.Patient, v string) bool{
	"id":             func(p *domain.Patient, v string) bool { p.ID = v; return true },
	"nome":           func(p *domain.Patient, v string) bool { p.Nome = v; return true },
	"nomeSocial":     func(p *domain.Patient, v string) bool { p.NomeSocial = v; return true },
	"dataNascimento": func(p *domain.Patient, v string) bool { p.DataNascimento = v; return true },
	"cpf":            func(p *domain.Patient, v string) bool { p.CPF = v; return true },
	"cns":            func(p *domain.Patient, v string) bool { p.CNS = v; return true },
	"telefone":       func(p *domain.Patient, v string) bool { p.Telefone = v; return true },

	"dum":             pregnancy(func(x *domain.Pregnancy, v string) { x.DUM = v }),
	"dpp":             pregnancy(func(x *domain.Pregnancy, v string) { x.DPP = v }),
	"semanasGestacao": pregnancy(func(x *domain.Pregnancy, v string) { x.SemanasGestacao = v }),
	"vacinacao":       pregnancy(func(x *domain.Pregnancy, v string) { x.Vacinacao = v }),
	"ultimaConsulta":  pregnancy(func(x *domain.Pregnancy, v string) { x.UltimaConsulta = v }),
	"proximaConsulta": pregnancy(func(x *domain.Pregnancy, v string) { x.ProximaConsulta = v }),

	"ultimoResultadoGlicemia": chronic(func(x *domain.Chronic, v string) { x.UltimoResultadoGlicemia = v }),
	"ultimaAfericaoPA":        chronic(func(x *domain.Chronic, v string) { x.UltimaAfericaoPA = v }),
}

func pregnancy(set func(*domain.Pregnancy, string)) func(*domain.Patient, string) bool {
	return func(p *domain.Patient, v string) bool {
		if p.Pregnancy == nil {
			return false
		}
		set(p.Pregnancy, v)
		return true
	}
}

func chronic(set func(*domain.Chronic, string)) func(*domain.Patient, string) bool {
	return func(p *domain.Patient, v string) bool {
		if p.Chronic == nil {
			return false
		}
		set(p.Chronic, v)
		return true
	}
}
