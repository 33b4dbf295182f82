// Package postgres provides an alternative content source backed by a
// simulados table, for deployments where quiz JSON lives in the database
// instead of a content directory.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"simulado-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SimuladoSource loads simulado JSONB from Postgres.
type SimuladoSource struct {
	pool *pgxpool.Pool
}

func NewSimuladoSource(pool *pgxpool.Pool) *SimuladoSource {
	return &SimuladoSource{pool: pool}
}

func (s *SimuladoSource) Load(ctx context.Context, id string) (domain.Simulado, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM simulados WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Simulado{}, domain.ErrSimuladoNotFound
	}
	if err != nil {
		return domain.Simulado{}, fmt.Errorf("load simulado: %w", err)
	}
	var simulado domain.Simulado
	if err := json.Unmarshal(raw, &simulado); err != nil {
		return domain.Simulado{}, &domain.LoadError{ID: id, Path: "simulados/" + id, Err: err}
	}
	simulado.ID = id
	return simulado, nil
}

func (s *SimuladoSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM simulados ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list simulados: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan simulado id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Fingerprint uses the row's updated_at so edits invalidate cached entries.
func (s *SimuladoSource) Fingerprint(ctx context.Context, id string) (string, error) {
	var fingerprint string
	err := s.pool.QueryRow(ctx, `SELECT updated_at::text FROM simulados WHERE id=$1`, id).Scan(&fingerprint)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrSimuladoNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fingerprint simulado: %w", err)
	}
	return fingerprint, nil
}
