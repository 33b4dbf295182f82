package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"simulado-service/internal/domain"
)

// fakeSource is an in-memory Source that counts loads, mirroring how the
// caches observe their backing store.
type fakeSource struct {
	mu           sync.Mutex
	docs         map[string]domain.Simulado
	fingerprints map[string]string
	failing      map[string]error
	loads        int
	lists        int
}

func newFakeSource(docs map[string]domain.Simulado) *fakeSource {
	fingerprints := make(map[string]string, len(docs))
	for id := range docs {
		fingerprints[id] = "v1"
	}
	return &fakeSource{
		docs:         docs,
		fingerprints: fingerprints,
		failing:      make(map[string]error),
	}
}

func (s *fakeSource) Load(_ context.Context, id string) (domain.Simulado, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if err, ok := s.failing[id]; ok {
		return domain.Simulado{}, err
	}
	doc, ok := s.docs[id]
	if !ok {
		return domain.Simulado{}, domain.ErrSimuladoNotFound
	}
	return doc, nil
}

func (s *fakeSource) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	for id := range s.failing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeSource) Fingerprint(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp, ok := s.fingerprints[id]
	if !ok {
		return "", domain.ErrSimuladoNotFound
	}
	return fp, nil
}

func (s *fakeSource) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *fakeSource) touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[id] = s.fingerprints[id] + "'"
}

func sampleDocs() map[string]domain.Simulado {
	return map[string]domain.Simulado{
		"a": {ID: "a", Titulo: "A", Questoes: []domain.Questao{
			{Enunciado: "Q1", Alternativas: []string{"x", "y", "z"}, AlternativaCorreta: "x"},
		}},
		"b": {ID: "b", Titulo: "B", Questoes: []domain.Questao{
			{Enunciado: "Q1", Alternativas: []string{"1", "2"}},
			{Enunciado: "Q2", Alternativas: []string{"3", "4"}},
		}},
	}
}

func TestGetCachesDocument(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Minute, false)

	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get 2: %v", err)
	}
	if source.loadCount() != 1 {
		t.Fatalf("expected cache hit, loads=%d", source.loadCount())
	}
}

func TestTTLExpiryReloads(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Minute, false)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get: %v", err)
	}

	// jitter adds at most 10%, so two TTLs is safely past expiry
	now = now.Add(2 * time.Minute)
	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if source.loadCount() != 2 {
		t.Fatalf("expected reload after TTL, loads=%d", source.loadCount())
	}
}

func TestFingerprintMismatchReloads(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Hour, true)

	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get: %v", err)
	}
	source.touch("a")
	if _, err := cache.Get(context.Background(), "a"); err != nil {
		t.Fatalf("get after edit: %v", err)
	}
	if source.loadCount() != 2 {
		t.Fatalf("expected reload after fingerprint change, loads=%d", source.loadCount())
	}
}

func TestLoadFailureNotCached(t *testing.T) {
	source := newFakeSource(sampleDocs())
	source.failing["c"] = &domain.LoadError{ID: "c", Path: "c.json", Err: errors.New("bad json")}
	cache := NewContentCache(source, time.Minute, false)

	if _, err := cache.Get(context.Background(), "c"); err == nil {
		t.Fatalf("expected load error")
	}

	// fix the file; the failure must not have been cached
	source.mu.Lock()
	delete(source.failing, "c")
	source.docs["c"] = domain.Simulado{ID: "c", Titulo: "C"}
	source.fingerprints["c"] = "v1"
	source.mu.Unlock()

	doc, err := cache.Get(context.Background(), "c")
	if err != nil {
		t.Fatalf("get after fix: %v", err)
	}
	if doc.Titulo != "C" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestInvalidateDropsSingleEntry(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Minute, false)

	_, _ = cache.Get(context.Background(), "a")
	_, _ = cache.Get(context.Background(), "b")
	cache.Invalidate("a")

	_, _ = cache.Get(context.Background(), "a")
	_, _ = cache.Get(context.Background(), "b")
	if source.loadCount() != 3 {
		t.Fatalf("expected only a reloaded, loads=%d", source.loadCount())
	}
}

func TestInvalidateAllEmptiesCache(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Minute, false)

	_, _ = cache.Get(context.Background(), "a")
	_, _ = cache.Get(context.Background(), "b")
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}

	cache.InvalidateAll()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestConcurrentGets(t *testing.T) {
	source := newFakeSource(sampleDocs())
	cache := NewContentCache(source, time.Minute, false)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := cache.Get(context.Background(), "a"); err != nil {
					t.Errorf("get: %v", err)
					return
				}
				if j%10 == 0 {
					cache.Invalidate("a")
				}
			}
		}()
	}
	wg.Wait()
}
