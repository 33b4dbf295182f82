package content

import (
	"sort"
	"testing"

	"simulado-service/internal/domain"
)

func sampleDoc() domain.Simulado {
	return domain.Simulado{
		ID:        "enem",
		Titulo:    "ENEM",
		Descricao: "Prova geral",
		Questoes: []domain.Questao{
			{
				Enunciado:          "Capital do Brasil?",
				Alternativas:       []string{"Brasília", "Rio", "Salvador", "São Paulo"},
				AlternativaCorreta: "Brasília",
				Explicacao:         "Desde 1960.",
			},
			{
				Enunciado:          "2 + 2?",
				Alternativas:       []string{"3", "4", "5"},
				AlternativaCorreta: "4",
			},
		},
	}
}

func TestApplyPreservesOptionsAndAnswerKey(t *testing.T) {
	shuffler := NewShuffler(false)
	doc := sampleDoc()

	for i := 0; i < 50; i++ {
		out := shuffler.Apply(doc)
		if out.Titulo != doc.Titulo || out.Descricao != doc.Descricao || len(out.Questoes) != len(doc.Questoes) {
			t.Fatalf("non-alternativas fields changed: %+v", out)
		}
		for qi := range out.Questoes {
			if out.Questoes[qi].AlternativaCorreta != doc.Questoes[qi].AlternativaCorreta {
				t.Fatalf("answer key changed: %q", out.Questoes[qi].AlternativaCorreta)
			}
			got := append([]string(nil), out.Questoes[qi].Alternativas...)
			want := append([]string(nil), doc.Questoes[qi].Alternativas...)
			sort.Strings(got)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("option count changed: %v vs %v", got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("option multiset changed: %v vs %v", got, want)
				}
			}
		}
	}
}

func TestApplyDoesNotMutateOriginal(t *testing.T) {
	shuffler := NewShuffler(false)
	doc := sampleDoc()
	originalOrder := append([]string(nil), doc.Questoes[0].Alternativas...)

	for i := 0; i < 20; i++ {
		shuffler.Apply(doc)
	}

	for i, alt := range doc.Questoes[0].Alternativas {
		if alt != originalOrder[i] {
			t.Fatalf("original document mutated: %v", doc.Questoes[0].Alternativas)
		}
	}
}

func TestQuestionOrderStableWithoutFlag(t *testing.T) {
	shuffler := NewShuffler(false)
	doc := sampleDoc()

	for i := 0; i < 20; i++ {
		out := shuffler.Apply(doc)
		for qi := range out.Questoes {
			if out.Questoes[qi].Enunciado != doc.Questoes[qi].Enunciado {
				t.Fatalf("question order changed without shuffle_question_order")
			}
		}
	}
}

func TestQuestionOrderShuffledWithFlag(t *testing.T) {
	shuffler := NewShuffler(true)
	doc := sampleDoc()

	out := shuffler.Apply(doc)
	seen := make(map[string]bool, len(out.Questoes))
	for _, q := range out.Questoes {
		seen[q.Enunciado] = true
	}
	for _, q := range doc.Questoes {
		if !seen[q.Enunciado] {
			t.Fatalf("question lost during shuffle: %q", q.Enunciado)
		}
	}
}
