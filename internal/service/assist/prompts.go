package assist

import (
	"fmt"
	"strings"
)

// Placeholder is the token Populate asks the model to fill.
const Placeholder = "XXXXXX"

var objectives = map[Target]string{
	TargetRecord: `**Objetivo:** Registro em Prontuário Médico.
**Tom:** O tom deve ser profissional, técnico, claro e objetivo, adequado para registros médicos oficiais. Use terminologia apropriada e mantenha uma estrutura impessoal e formal.`,
	TargetPatient: `**Objetivo:** Comunicação com Paciente/Cuidador.
**Tom:** O tom deve ser empático, acolhedor e simplificado. Evite jargões médicos complexos e use uma linguagem que um leigo possa entender facilmente. O objetivo é orientar e informar de forma clara e humana.`,
}

var audiences = map[Target]string{
	TargetRecord:  "Prontuário",
	TargetPatient: "Paciente",
}

const rewritePrompt = `Você é um assistente de IA especializado em saúde, treinado para reescrever anotações de visitas domiciliares.
Sua tarefa é transformar o texto a seguir, que pode conter linguagem informal, abreviações e relatos subjetivos, em um texto adequado para o objetivo especificado.

%s

**Diretrizes Gerais Estritas:**
1. **Objetividade vs. Empatia:** Se o objetivo for 'Prontuário', foque nos fatos. Se for 'Paciente', equilibre a informação com uma abordagem acolhedora.
2. **Clareza e Concisão:** Organize as informações de forma lógica. Seja direto e evite redundâncias.
3. **Correção:** Corrija erros gramaticais e de ortografia.
4. **Fidelidade ao Original:** NÃO adicione, invente ou infira informações que não estejam explicitamente presentes no texto original. Apenas reformule o que foi fornecido.

---
**Texto original para reescrever:**
` + "```" + `
%s
` + "```" + `
---

**Texto reescrito (para '%s'):**`

const populatePrompt = `Você é um assistente de IA especialista em preenchimento de modelos.
Sua tarefa é analisar o conteúdo fonte fornecido (que pode incluir uma imagem e/ou texto) e usar as informações contidas nele para preencher o "Modelo de Texto", substituindo todas as ocorrências de '%s' pelos dados corretos de forma contextual.
Se uma imagem for fornecida, extraia as informações dela. O texto fornecido é um contexto adicional para ajudar na extração.
Retorne apenas o texto do modelo completamente preenchido, sem adicionar formatação extra ou explicações.

---
**Texto Fonte Adicional (Contexto):**
` + "```" + `
%s
` + "```" + `
---
**Modelo de Texto para Preencher:**
` + "```" + `
%s
` + "```" + `
---
**Texto Preenchido:**`

func buildRewritePrompt(text string, target Target) string {
	return fmt.Sprintf(rewritePrompt, objectives[target], strings.TrimSpace(text), audiences[target])
}

func buildPopulatePrompt(source, template string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "Nenhum texto de contexto fornecido."
	}
	return fmt.Sprintf(populatePrompt, Placeholder, source, strings.TrimSpace(template))
}
