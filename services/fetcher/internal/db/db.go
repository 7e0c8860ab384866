package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schtekar/rigwatch/internal/model"
)

// UpsertWells inserts/updates the wells document rows.
func UpsertWells(ctx context.Context, pool *pgxpool.Pool, wells []model.Well) error {
	if len(wells) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO rigwatch.wells (wellbore_name, well, status, entry_date, rig_name, rig_type, operator, well_type, field, fact_page_url, lat, lon, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
ON CONFLICT (wellbore_name) DO UPDATE
SET well = EXCLUDED.well,
    status = EXCLUDED.status,
    entry_date = EXCLUDED.entry_date,
    rig_name = EXCLUDED.rig_name,
    rig_type = EXCLUDED.rig_type,
    operator = EXCLUDED.operator,
    well_type = EXCLUDED.well_type,
    field = EXCLUDED.field,
    fact_page_url = EXCLUDED.fact_page_url,
    lat = EXCLUDED.lat,
    lon = EXCLUDED.lon,
    updated_at = NOW()`

	for _, w := range wells {
		batch.Queue(query, w.Name, w.Well, w.Status, w.EntryDate, w.RigName, w.RigType,
			w.Operator, w.WellType, w.Field, w.FactPageURL, coordPtr(w.Lat), coordPtr(w.Lon))
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range wells {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadWells reads the stored wells document.
func LoadWells(ctx context.Context, pool *pgxpool.Pool) ([]model.Well, error) {
	rows, err := pool.Query(ctx, `
SELECT wellbore_name, well, status, entry_date, rig_name, rig_type, operator, well_type, field, fact_page_url, lat, lon
FROM rigwatch.wells
ORDER BY wellbore_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wells := make([]model.Well, 0)
	for rows.Next() {
		var w model.Well
		var lat, lon *float64
		if err := rows.Scan(&w.Name, &w.Well, &w.Status, &w.EntryDate, &w.RigName, &w.RigType,
			&w.Operator, &w.WellType, &w.Field, &w.FactPageURL, &lat, &lon); err != nil {
			return nil, err
		}
		w.Lat = model.CoordFromPtr(lat)
		w.Lon = model.CoordFromPtr(lon)
		wells = append(wells, w)
	}
	return wells, rows.Err()
}

// InsertAISMessages appends position reports; duplicates are ignored.
func InsertAISMessages(ctx context.Context, pool *pgxpool.Pool, messages []model.AISMessage) error {
	if len(messages) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO rigwatch.ais_messages (mmsi, rig_name, lat, lon, msgtime, source, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (mmsi, msgtime) DO NOTHING`

	for _, m := range messages {
		batch.Queue(query, m.MMSI, m.RigName, m.Latitude, m.Longitude, m.MsgTime, m.Source)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range messages {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshots reads all per-rig snapshots.
func LoadSnapshots(ctx context.Context, pool *pgxpool.Pool) (map[int64]model.Snapshot, error) {
	rows, err := pool.Query(ctx, `SELECT mmsi, snapshot FROM rigwatch.rig_snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make(map[int64]model.Snapshot)
	for rows.Next() {
		var mmsi int64
		var raw []byte
		if err := rows.Scan(&mmsi, &raw); err != nil {
			return nil, err
		}
		var snap model.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, err
		}
		snapshots[mmsi] = snap
	}
	return snapshots, rows.Err()
}

// SaveSnapshots upserts the per-rig snapshots.
func SaveSnapshots(ctx context.Context, pool *pgxpool.Pool, snapshots map[int64]model.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO rigwatch.rig_snapshots (mmsi, snapshot, updated_at)
VALUES ($1,$2,NOW())
ON CONFLICT (mmsi) DO UPDATE
SET snapshot = EXCLUDED.snapshot,
    updated_at = NOW()`

	for mmsi, snap := range snapshots {
		raw, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		batch.Queue(query, mmsi, raw)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range snapshots {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SaveAnalysis stores a new analysis document.
func SaveAnalysis(ctx context.Context, pool *pgxpool.Pool, doc model.AnalysisDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	generatedAt, err := time.Parse(time.RFC3339, doc.GeneratedAt)
	if err != nil {
		generatedAt = time.Now().UTC()
	}

	_, err = pool.Exec(ctx, `INSERT INTO rigwatch.analysis (generated_at, doc) VALUES ($1,$2)`, generatedAt, raw)
	return err
}

func coordPtr(c model.Coord) *float64 {
	if v, ok := c.Float(); ok {
		return &v
	}
	return nil
}
