package domain

import "fmt"

// Pathway is a care pathway: a form the field team fills during a visit,
// bound to the collection holding its expected patients.
type Pathway struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Collection  Collection `json:"patientDataType"`
}

var pathways = []Pathway{
	{
		ID:          "diabetes",
		Title:       "Acompanhamento de Doença Crônica - Diabetes",
		Description: "Formulário para visita domiciliar de pacientes com Diabetes.",
		Collection:  CollectionChronic,
	},
	{
		ID:          "hipertensao",
		Title:       "Acompanhamento de Doença Crônica - Hipertensão",
		Description: "Formulário para visita domiciliar de pacientes com Hipertensão.",
		Collection:  CollectionChronic,
	},
	{
		ID:          "gestantes",
		Title:       "Acompanhamento de Gestantes",
		Description: "Formulário para visita domiciliar de gestantes.",
		Collection:  CollectionPregnant,
	},
	{
		ID:          "crianca",
		Title:       "Acompanhamento da Criança na Primeira Infância",
		Description: "Formulário para visita domiciliar de crianças de 0 a 6 anos.",
		Collection:  CollectionGeneral,
	},
	{
		ID:          "tuberculose",
		Title:       "Acompanhamento de Tuberculose",
		Description: "Formulário para visita domiciliar de pacientes com Tuberculose.",
		Collection:  CollectionGeneral,
	},
	{
		ID:          "visita",
		Title:       "Registro de Visita Domiciliar",
		Description: "Formulário para registro de informações gerais da visita.",
		Collection:  CollectionGeneral,
	},
}

// Pathways returns the care pathway catalogue.
func Pathways() []Pathway {
	out := make([]Pathway, len(pathways))
	copy(out, pathways)
	return out
}

// PathwayByID looks a pathway up by id.
func PathwayByID(id string) (Pathway, error) {
	for _, p := range pathways {
		if p.ID == id {
			return p, nil
		}
	}
	return Pathway{}, fmt.Errorf("%w: %q", ErrUnknownPathway, id)
}
