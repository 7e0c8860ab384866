package mapview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schtekar/rigwatch/internal/model"
)

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

func validWell(name, entryDate string) model.Well {
	return model.Well{
		Name:      name,
		EntryDate: entryDate,
		Lat:       model.NewCoord(60.0),
		Lon:       model.NewCoord(3.0),
	}
}

type failureRecord struct {
	stage string
	err   error
}

type recordingDiag struct {
	failures []failureRecord
}

func (d *recordingDiag) ReportFailure(stage string, err error) {
	d.failures = append(d.failures, failureRecord{stage: stage, err: err})
}

func TestWellColor(t *testing.T) {
	tests := []struct {
		name      string
		entryDate string
		want      string
	}{
		{"entered", "2020-01-01", ColorWellEntered},
		{"empty", "", ColorWellNotEntered},
		{"blank", "   ", ColorWellNotEntered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WellColor(model.Well{Name: "W", EntryDate: tt.entryDate}))
		})
	}
}

func TestRigColorTotal(t *testing.T) {
	assert.Equal(t, ColorRigMoving, RigColor(model.Rig{Moving: b(true)}))
	assert.Equal(t, ColorRigStationary, RigColor(model.Rig{Moving: b(false)}))
	assert.Equal(t, ColorRigUnknown, RigColor(model.Rig{Moving: nil}))

	// Every input lands on exactly one of the three fixed colors.
	known := map[string]bool{ColorRigMoving: true, ColorRigStationary: true, ColorRigUnknown: true}
	for _, moving := range []*bool{nil, b(true), b(false)} {
		assert.True(t, known[RigColor(model.Rig{Moving: moving})])
	}
}

func TestBuildWellIndexPermissive(t *testing.T) {
	surface := NewFeatureSet()
	wells := []model.Well{
		validWell("A-1", "2020-01-01"),
		{Name: "B-2"}, // no coordinates: indexed, not rendered
		{Name: "", Lat: model.NewCoord(58), Lon: model.NewCoord(2)}, // nameless: rendered, not indexed
	}

	index := BuildWellIndex(wells, surface)

	require.Len(t, index, 2)
	_, ok := index.Resolve("A-1")
	assert.True(t, ok)
	_, ok = index.Resolve("B-2")
	assert.True(t, ok)

	// Two coordinate-valid wells got markers.
	require.Len(t, surface.Markers, 2)
	assert.Equal(t, ColorWellEntered, surface.Markers[0].Color)
}

func TestCorrelateRigsDrawsPath(t *testing.T) {
	surface := NewFeatureSet()
	index := BuildWellIndex([]model.Well{validWell("W1", "2020-01-01")}, surface)

	rigs := map[string]model.Rig{
		"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: "W1"},
	}
	CorrelateRigs(rigs, index, surface)

	require.Len(t, surface.Paths, 1)
	assert.Equal(t, LatLon{Lat: 60.1, Lon: 3.1}, surface.Paths[0].From)
	assert.Equal(t, LatLon{Lat: 60.0, Lon: 3.0}, surface.Paths[0].To)
}

func TestCorrelateRigsUnresolvedTarget(t *testing.T) {
	surface := NewFeatureSet()
	index := BuildWellIndex([]model.Well{validWell("W1", "")}, surface)

	rigs := map[string]model.Rig{
		"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: "W2"},
	}
	CorrelateRigs(rigs, index, surface)

	// Marker still rendered, no path.
	assert.Len(t, surface.Paths, 0)
	require.Len(t, surface.Markers, 2)
}

func TestCorrelateRigsExactMatchOnly(t *testing.T) {
	surface := NewFeatureSet()
	index := BuildWellIndex([]model.Well{validWell("A-1", "")}, surface)

	for _, target := range []string{"a-1", "A-1 ", " A-1"} {
		rigs := map[string]model.Rig{
			"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: target},
		}
		CorrelateRigs(rigs, index, surface)
	}
	assert.Len(t, surface.Paths, 0)
}

func TestCorrelateRigsSkipsMissingCoordinates(t *testing.T) {
	surface := NewFeatureSet()
	index := BuildWellIndex([]model.Well{validWell("W1", "")}, surface)
	markersBefore := len(surface.Markers)

	rigs := map[string]model.Rig{
		"R1": {RigName: "R1", Latitude: nil, Longitude: f64(3.1), LikelyTargetWell: "W1"},
	}
	CorrelateRigs(rigs, index, surface)

	assert.Len(t, surface.Markers, markersBefore)
	assert.Len(t, surface.Paths, 0)
}

func TestCorrelateRigsTargetWithoutCoordinates(t *testing.T) {
	// Permissively indexed well resolves by name but suppresses the path.
	surface := NewFeatureSet()
	index := BuildWellIndex([]model.Well{{Name: "W1", EntryDate: "2020-01-01"}}, surface)

	rigs := map[string]model.Rig{
		"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: "W1"},
	}
	CorrelateRigs(rigs, index, surface)

	require.Len(t, surface.Markers, 1) // the rig
	assert.Len(t, surface.Paths, 0)
}

func TestRenderTwoPhase(t *testing.T) {
	docs := Documents{
		Wells: []model.Well{validWell("W1", "2020-01-01"), validWell("W2", "")},
		Analysis: model.AnalysisDoc{
			GeneratedAt: "2024-06-01T00:00:00Z",
			Rigs: map[string]model.Rig{
				"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), Moving: b(false), LikelyTargetWell: "W1"},
				"R2": {RigName: "R2", Latitude: f64(61.0), Longitude: f64(4.0), Moving: b(true)},
			},
		},
	}

	surface := NewFeatureSet()
	diag := &recordingDiag{}
	index := Render(docs, surface, diag)

	assert.Empty(t, diag.failures)
	assert.Len(t, index, 2)
	assert.Len(t, surface.Markers, 4) // 2 wells + 2 rigs
	assert.Len(t, surface.Paths, 1)
}

func TestRenderIdempotent(t *testing.T) {
	docs := Documents{
		Wells: []model.Well{validWell("W1", "2020-01-01"), {Name: "B-2"}},
		Analysis: model.AnalysisDoc{
			Rigs: map[string]model.Rig{
				"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: "W1"},
				"R2": {RigName: "R2", Latitude: f64(61.0), Longitude: f64(4.0)},
				"R3": {RigName: "R3"},
			},
		},
	}

	first := NewFeatureSet()
	second := NewFeatureSet()
	Render(docs, first, &recordingDiag{})
	Render(docs, second, &recordingDiag{})

	assert.Equal(t, first, second)
}

func TestRenderWellsFailureDegrades(t *testing.T) {
	loadErr := errors.New("fetch wells: boom")
	docs := Documents{
		WellsErr: loadErr,
		Analysis: model.AnalysisDoc{
			Rigs: map[string]model.Rig{
				"R1": {RigName: "R1", Latitude: f64(60.1), Longitude: f64(3.1), LikelyTargetWell: "W1"},
			},
		},
	}

	surface := NewFeatureSet()
	diag := &recordingDiag{}
	index := Render(docs, surface, diag)

	require.Len(t, diag.failures, 1)
	assert.Equal(t, "load wells", diag.failures[0].stage)
	assert.ErrorIs(t, diag.failures[0].err, loadErr)

	// Empty index, but the rig still renders a marker (no path possible).
	assert.Empty(t, index)
	assert.Len(t, surface.Markers, 1)
	assert.Len(t, surface.Paths, 0)
}

func TestRenderRigsFailureLeavesWells(t *testing.T) {
	docs := Documents{
		Wells:       []model.Well{validWell("W1", "2020-01-01")},
		AnalysisErr: errors.New("fetch analysis: boom"),
	}

	surface := NewFeatureSet()
	diag := &recordingDiag{}
	index := Render(docs, surface, diag)

	require.Len(t, diag.failures, 1)
	assert.Equal(t, "load rig analysis", diag.failures[0].stage)
	assert.Len(t, index, 1)
	assert.Len(t, surface.Markers, 1)
}

func TestRenderMissingRigCollection(t *testing.T) {
	docs := Documents{
		Wells:    []model.Well{validWell("W1", "")},
		Analysis: model.AnalysisDoc{GeneratedAt: "2024-06-01T00:00:00Z"},
	}

	surface := NewFeatureSet()
	diag := &recordingDiag{}
	Render(docs, surface, diag)

	require.Len(t, diag.failures, 1)
	assert.ErrorIs(t, diag.failures[0].err, ErrNoRigCollection)
	assert.Len(t, surface.Markers, 1) // well untouched
}

func TestLegendCoversAllColors(t *testing.T) {
	colors := make(map[string]bool)
	for _, entry := range Legend() {
		colors[entry.Color] = true
	}
	for _, c := range []string{ColorWellEntered, ColorWellNotEntered, ColorRigMoving, ColorRigStationary, ColorRigUnknown} {
		assert.True(t, colors[c], "legend missing %s", c)
	}
}
