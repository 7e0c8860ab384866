package db

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithQuerier(mock), mock
}

func TestListWells(t *testing.T) {
	store, mock := newMockStore(t)

	lat, lon := 60.0, 3.0
	rows := pgxmock.NewRows([]string{
		"wellbore_name", "well", "status", "entry_date", "rig_name", "rig_type",
		"operator", "well_type", "field", "fact_page_url", "lat", "lon",
	}).
		AddRow("W1", "25/4", "DRILLING", "2024-05-20", "DEEPSEA YANTAI", "MOVEABLE",
			"OPER", "EXPLORATION", "FIELD", "https://example.test/w1", &lat, &lon).
		AddRow("W2", "", "PLANNED", "", "UNKNOWN", "UNKNOWN",
			"UNKNOWN", "UNKNOWN", "UNKNOWN", "", (*float64)(nil), (*float64)(nil))

	mock.ExpectQuery("SELECT wellbore_name").WillReturnRows(rows)

	wells, err := store.ListWells(context.Background())
	require.NoError(t, err)
	require.Len(t, wells, 2)

	assert.Equal(t, "W1", wells[0].Name)
	assert.True(t, wells[0].Entered())
	gotLat, gotLon, ok := wells[0].Coords()
	require.True(t, ok)
	assert.Equal(t, 60.0, gotLat)
	assert.Equal(t, 3.0, gotLon)

	// Null coordinates survive as an invalid Coord, not an error.
	_, _, ok = wells[1].Coords()
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListWellsQueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT wellbore_name").WillReturnError(errors.New("db down"))

	_, err := store.ListWells(context.Background())
	require.Error(t, err)
}

func TestLatestAnalysis(t *testing.T) {
	store, mock := newMockStore(t)

	doc := []byte(`{"generated_at":"2024-06-01T00:00:00Z","rigs":{"R1":{"rig_name":"R1","latitude":60.1,"longitude":3.1}}}`)
	mock.ExpectQuery("SELECT doc").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(doc))

	got, err := store.LatestAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00Z", got.GeneratedAt)
	require.Contains(t, got.Rigs, "R1")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAnalysisEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT doc").WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	_, err := store.LatestAnalysis(context.Background())
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

func TestLatestAnalysisMalformedDocument(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT doc").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow([]byte(`{not json`)))

	_, err := store.LatestAnalysis(context.Background())
	require.Error(t, err)
}
