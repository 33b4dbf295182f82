package domain

import "encoding/json"

// Bookmark marks one question inside a simulado for later review.
type Bookmark struct {
	SimuladoID   string `json:"simulado_id"`
	QuestionHash string `json:"question_hash"`
	Enunciado    string `json:"enunciado"`
	Category     string `json:"category"`
}

// IncorrectAnswer tracks how often a question was answered wrong.
type IncorrectAnswer struct {
	QuestionHash string `json:"question_hash"`
	Count        int64  `json:"count"`
	Enunciado    string `json:"enunciado"`
	SimuladoID   string `json:"simulado_id"`
}

// IncorrectStat is the client-submitted form of an incorrect-answer record.
type IncorrectStat struct {
	Count      int64  `json:"count"`
	Enunciado  string `json:"enunciado"`
	SimuladoID string `json:"simulado_id"`
}

// ProgressEntry joins saved progress with the simulado's listing metadata.
type ProgressEntry struct {
	SimuladoID    string          `json:"simulado_id"`
	Titulo        string          `json:"titulo"`
	Descricao     string          `json:"descricao"`
	QuestoesCount int             `json:"questoes_count"`
	Progress      json.RawMessage `json:"progress"`
}
