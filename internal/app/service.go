// Package app contains the use cases behind the HTTP facade: serving quiz
// content through the cache layers and persisting single-user state.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"simulado-service/internal/domain"
)

// DocumentCache serves parsed simulado documents (in-process layer).
type DocumentCache interface {
	Get(ctx context.Context, id string) (domain.Simulado, error)
	Invalidate(id string)
	InvalidateAll()
}

// SummaryCache serves the aggregated listing (in-process layer).
type SummaryCache interface {
	List(ctx context.Context) ([]domain.Summary, error)
	Invalidate()
}

// RemoteCache is the optional external key-value layer consulted before the
// in-process caches. Implementations are best-effort; a miss is always safe.
type RemoteCache interface {
	GetSimulado(ctx context.Context, id string) (domain.Simulado, bool)
	SetSimulado(ctx context.Context, doc domain.Simulado)
	GetList(ctx context.Context) ([]domain.Summary, bool)
	SetList(ctx context.Context, summaries []domain.Summary)
	Invalidate(ctx context.Context, id string)
	InvalidateAll(ctx context.Context)
}

// UserStore persists theme, progress, bookmarks and incorrect-answer stats.
type UserStore interface {
	Theme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error
	SaveProgress(ctx context.Context, simuladoID string, data json.RawMessage) error
	Progress(ctx context.Context, simuladoID string) (json.RawMessage, error)
	DeleteProgress(ctx context.Context, simuladoID string) error
	AllProgress(ctx context.Context) (map[string]json.RawMessage, error)
	SaveBookmark(ctx context.Context, b domain.Bookmark) error
	DeleteBookmark(ctx context.Context, simuladoID, questionHash string) error
	Bookmarks(ctx context.Context) ([]domain.Bookmark, error)
	SaveIncorrectStats(ctx context.Context, stats map[string]domain.IncorrectStat) error
	IncorrectAnswers(ctx context.Context) ([]domain.IncorrectAnswer, error)
}

// Shuffler produces the randomized copy served to clients.
type Shuffler interface {
	Apply(doc domain.Simulado) domain.Simulado
}

// Service wires the cache layers, the shuffle transform and the user store.
type Service struct {
	docs     DocumentCache
	list     SummaryCache
	remote   RemoteCache // may be nil
	shuffler Shuffler
	store    UserStore
	events   *events
}

func NewService(docs DocumentCache, list SummaryCache, remote RemoteCache, shuffler Shuffler, store UserStore) *Service {
	return &Service{
		docs:     docs,
		list:     list,
		remote:   remote,
		shuffler: shuffler,
		store:    store,
		events:   newEvents(),
	}
}

// ListSimulados returns the listing, consulting the external cache first and
// repopulating it after an in-process rebuild.
func (s *Service) ListSimulados(ctx context.Context) ([]domain.Summary, error) {
	if s.remote != nil {
		if summaries, ok := s.remote.GetList(ctx); ok {
			return summaries, nil
		}
	}
	summaries, err := s.list.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.remote != nil {
		s.remote.SetList(ctx, summaries)
	}
	return summaries, nil
}

// GetSimulado returns one document with its answer options shuffled. The
// cached canonical copy is never touched; the shuffle works on a clone.
func (s *Service) GetSimulado(ctx context.Context, id string) (domain.Simulado, error) {
	if s.remote != nil {
		if doc, ok := s.remote.GetSimulado(ctx, id); ok {
			return s.shuffler.Apply(doc), nil
		}
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.Simulado{}, err
	}
	if s.remote != nil {
		s.remote.SetSimulado(ctx, doc)
	}
	return s.shuffler.Apply(doc), nil
}

// ClearCaches empties every cache layer unconditionally. Idempotent; the
// persistent store is untouched.
func (s *Service) ClearCaches(ctx context.Context) {
	s.docs.InvalidateAll()
	s.list.Invalidate()
	if s.remote != nil {
		s.remote.InvalidateAll(ctx)
	}
	s.events.publish(Event{Type: "cleared"})
}

// InvalidateSimulado drops one document from every cache layer. The watcher
// calls this per changed file.
func (s *Service) InvalidateSimulado(ctx context.Context, id string) {
	s.docs.Invalidate(id)
	s.list.Invalidate()
	if s.remote != nil {
		s.remote.Invalidate(ctx, id)
	}
	s.events.publish(Event{Type: "invalidated", ID: id})
}

// SubscribeEvents returns a channel receiving cache-change events. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *Service) SubscribeEvents() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Theme returns the stored UI theme.
func (s *Service) Theme(ctx context.Context) (string, error) {
	return s.store.Theme(ctx)
}

// SaveTheme stores the UI theme; only "light" and "dark" are accepted.
func (s *Service) SaveTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTheme, theme)
	}
	return s.store.SaveTheme(ctx, theme)
}

// SaveProgress stores the progress blob for one simulado.
func (s *Service) SaveProgress(ctx context.Context, id string, data json.RawMessage) error {
	return s.store.SaveProgress(ctx, id, data)
}

// Progress returns saved progress for one simulado, nil when absent.
func (s *Service) Progress(ctx context.Context, id string) (json.RawMessage, error) {
	return s.store.Progress(ctx, id)
}

// DeleteProgress removes saved progress for one simulado.
func (s *Service) DeleteProgress(ctx context.Context, id string) error {
	return s.store.DeleteProgress(ctx, id)
}

// AllProgress joins saved progress with listing metadata, ordered by simulado
// id. Progress for simulados that no longer exist is omitted.
func (s *Service) AllProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	saved, err := s.store.AllProgress(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.ListSimulados(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ProgressEntry, 0, len(saved))
	for _, summary := range summaries {
		data, ok := saved[summary.ID]
		if !ok {
			continue
		}
		entries = append(entries, domain.ProgressEntry{
			SimuladoID:    summary.ID,
			Titulo:        summary.Titulo,
			Descricao:     summary.Descricao,
			QuestoesCount: summary.QuestoesCount,
			Progress:      data,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SimuladoID < entries[j].SimuladoID })
	return entries, nil
}

// SaveBookmark upserts a bookmark.
func (s *Service) SaveBookmark(ctx context.Context, b domain.Bookmark) error {
	return s.store.SaveBookmark(ctx, b)
}

// DeleteBookmark removes one bookmark.
func (s *Service) DeleteBookmark(ctx context.Context, simuladoID, questionHash string) error {
	return s.store.DeleteBookmark(ctx, simuladoID, questionHash)
}

// Bookmarks returns all bookmarks, most recent first.
func (s *Service) Bookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	return s.store.Bookmarks(ctx)
}

// SaveIncorrectStats upserts a batch of incorrect-answer counters.
func (s *Service) SaveIncorrectStats(ctx context.Context, stats map[string]domain.IncorrectStat) error {
	return s.store.SaveIncorrectStats(ctx, stats)
}

// IncorrectAnswers returns all incorrect-answer counters.
func (s *Service) IncorrectAnswers(ctx context.Context) ([]domain.IncorrectAnswer, error) {
	return s.store.IncorrectAnswers(ctx)
}
