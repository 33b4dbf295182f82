package domain

import "encoding/json"

// Content files in the wild carry fields beyond the ones we model. The
// marshal/unmarshal pairs below keep those in the Extra bag instead of
// silently dropping them on a load/serve round trip.

var simuladoKnownFields = []string{"id", "titulo", "descricao", "questoes"}

var questaoKnownFields = []string{"id", "enunciado", "alternativas", "alternativa_correta", "explicacao"}

func (s *Simulado) UnmarshalJSON(data []byte) error {
	type alias Simulado
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extraFields(data, simuladoKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*s = Simulado(a)
	return nil
}

func (s Simulado) MarshalJSON() ([]byte, error) {
	type alias Simulado
	return mergeExtra(alias(s), s.Extra)
}

func (q *Questao) UnmarshalJSON(data []byte) error {
	type alias Questao
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := extraFields(data, questaoKnownFields)
	if err != nil {
		return err
	}
	a.Extra = extra
	*q = Questao(a)
	return nil
}

func (q Questao) MarshalJSON() ([]byte, error) {
	type alias Questao
	return mergeExtra(alias(q), q.Extra)
}

// extraFields returns the raw object members of data not listed in known.
func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeExtra marshals v and splices the extra members back into the object.
func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
