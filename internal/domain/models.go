package domain

import "encoding/json"

// Questao models a single multiple-choice question. The answer key
// (AlternativaCorreta) references the option text itself, not its position,
// so alternativas can be reordered freely without losing the association.
type Questao struct {
	ID                 int64    `json:"id,omitempty"`
	Enunciado          string   `json:"enunciado"`
	Alternativas       []string `json:"alternativas"`
	AlternativaCorreta string   `json:"alternativa_correta,omitempty"`
	Explicacao         string   `json:"explicacao,omitempty"`

	// Extra carries fields we don't model so documents round-trip losslessly.
	Extra map[string]json.RawMessage `json:"-"`
}

// Simulado is a quiz document sourced from one content file. Instances handed
// out by caches are shared read-only state; mutate a Clone, never the original.
type Simulado struct {
	ID        string    `json:"id,omitempty"`
	Titulo    string    `json:"titulo"`
	Descricao string    `json:"descricao"`
	Questoes  []Questao `json:"questoes"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Summary is the lightweight listing view of a Simulado.
type Summary struct {
	ID            string `json:"id"`
	Titulo        string `json:"titulo"`
	Descricao     string `json:"descricao"`
	QuestoesCount int    `json:"questoes_count"`
}

// Summarize derives the listing record for a document.
func (s Simulado) Summarize() Summary {
	return Summary{
		ID:            s.ID,
		Titulo:        s.Titulo,
		Descricao:     s.Descricao,
		QuestoesCount: len(s.Questoes),
	}
}

// Clone returns a deep copy safe to mutate independently of the receiver.
func (s Simulado) Clone() Simulado {
	out := s
	out.Questoes = make([]Questao, len(s.Questoes))
	for i, q := range s.Questoes {
		out.Questoes[i] = q.Clone()
	}
	out.Extra = cloneExtra(s.Extra)
	return out
}

// Clone returns a deep copy of the question.
func (q Questao) Clone() Questao {
	out := q
	out.Alternativas = append([]string(nil), q.Alternativas...)
	out.Extra = cloneExtra(q.Extra)
	return out
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
