package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schtekar/rigwatch/internal/model"
)

// ErrNoAnalysis means no analysis document has been stored yet.
var ErrNoAnalysis = errors.New("no analysis document available")

// Querier is the subset of pgxpool.Pool the store queries through. It keeps
// the store testable against pgxmock.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps database access helpers.
type Store struct {
	db   Querier
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{db: pool, pool: pool}, nil
}

// NewWithQuerier creates a Store over an existing querier (tests).
func NewWithQuerier(q Querier) *Store {
	return &Store{db: q}
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const listWellsSQL = `
SELECT wellbore_name, well, status, entry_date, rig_name, rig_type, operator, well_type, field, fact_page_url, lat, lon
FROM rigwatch.wells
ORDER BY wellbore_name`

// ListWells returns the stored wells document.
func (s *Store) ListWells(ctx context.Context) ([]model.Well, error) {
	rows, err := s.db.Query(ctx, listWellsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wells := make([]model.Well, 0)
	for rows.Next() {
		var w model.Well
		var lat, lon *float64
		if err := rows.Scan(
			&w.Name,
			&w.Well,
			&w.Status,
			&w.EntryDate,
			&w.RigName,
			&w.RigType,
			&w.Operator,
			&w.WellType,
			&w.Field,
			&w.FactPageURL,
			&lat,
			&lon,
		); err != nil {
			return nil, err
		}
		w.Lat = model.CoordFromPtr(lat)
		w.Lon = model.CoordFromPtr(lon)
		wells = append(wells, w)
	}
	return wells, rows.Err()
}

const latestAnalysisSQL = `
SELECT doc
FROM rigwatch.analysis
ORDER BY generated_at DESC
LIMIT 1`

// LatestAnalysis returns the most recent analysis document.
func (s *Store) LatestAnalysis(ctx context.Context) (model.AnalysisDoc, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, latestAnalysisSQL).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AnalysisDoc{}, ErrNoAnalysis
	}
	if err != nil {
		return model.AnalysisDoc{}, err
	}

	var doc model.AnalysisDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.AnalysisDoc{}, err
	}
	return doc, nil
}
