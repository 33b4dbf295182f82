package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"simulado-service/internal/domain"
)

func TestLoadParsesDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "historia.json", `{
		"titulo": "História",
		"descricao": "Questões de história",
		"categoria": "humanas",
		"questoes": [
			{"enunciado": "Q1", "alternativas": ["x", "y", "z"], "alternativa_correta": "y", "dificuldade": 2}
		]
	}`)

	loader := NewLoader(dir)
	doc, err := loader.Load(context.Background(), "historia")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.ID != "historia" || doc.Titulo != "História" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Questoes) != 1 || doc.Questoes[0].AlternativaCorreta != "y" {
		t.Fatalf("unexpected questoes: %+v", doc.Questoes)
	}
	if _, ok := doc.Extra["categoria"]; !ok {
		t.Fatalf("expected unknown field kept in extra bag, got %v", doc.Extra)
	}
	if _, ok := doc.Questoes[0].Extra["dificuldade"]; !ok {
		t.Fatalf("expected question extra field kept, got %v", doc.Questoes[0].Extra)
	}
	if loader.Loads() != 1 {
		t.Fatalf("expected 1 load, got %d", loader.Loads())
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(t.TempDir())
	_, err := loader.Load(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSimuladoNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"titulo": `)

	loader := NewLoader(dir)
	_, err := loader.Load(context.Background(), "broken")
	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if loadErr.ID != "broken" {
		t.Fatalf("expected id in error, got %+v", loadErr)
	}
}

func TestSanitizeRejectsTraversal(t *testing.T) {
	for _, id := range []string{"../../etc/passwd", "..", "a/b", "", ".hidden", "a..b/../c"} {
		if _, err := SanitizeID(id); !errors.Is(err, domain.ErrInvalidSimuladoID) {
			t.Fatalf("expected %q rejected, got %v", id, err)
		}
	}
	if _, err := SanitizeID("enem-2024.v2"); err != nil {
		t.Fatalf("expected valid id accepted, got %v", err)
	}
}

func TestLoadRejectsTraversalID(t *testing.T) {
	loader := NewLoader(t.TempDir())
	_, err := loader.Load(context.Background(), "../../etc/passwd")
	if !errors.Is(err, domain.ErrInvalidSimuladoID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if loader.Loads() != 0 {
		t.Fatalf("expected no disk read for invalid id, got %d", loader.Loads())
	}
}

func TestListOrdersIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{}`)
	writeFile(t, dir, "a.json", `{}`)
	writeFile(t, dir, "notes.txt", "ignore me")

	loader := NewLoader(dir)
	ids, err := loader.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected [a b], got %v", ids)
	}
}

func TestFingerprintChangesOnRewrite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"titulo":"A"}`)

	loader := NewLoader(dir)
	before, err := loader.Fingerprint(context.Background(), "a")
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	writeFile(t, dir, "a.json", `{"titulo":"A edited"}`)
	after, err := loader.Fingerprint(context.Background(), "a")
	if err != nil {
		t.Fatalf("fingerprint after edit: %v", err)
	}
	if before == after {
		t.Fatalf("expected fingerprint to change after edit")
	}
}

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
