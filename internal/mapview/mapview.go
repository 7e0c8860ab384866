// Package mapview builds the marker and path requests for the rig/well map.
//
// The two documents (wells, rig analysis) come from independent sources and
// fail independently: a wells failure degrades to an empty index (rigs still
// get markers, no paths), a rigs failure leaves the wells untouched. Per
// record anomalies (missing names, unparseable coordinates, unresolvable
// targets) are ordinary skipped branches, never reported.
package mapview

import (
	"errors"
	"sort"

	"github.com/schtekar/rigwatch/internal/model"
)

// Marker colors. Wells are classified entered/not-entered, rigs by the
// tri-state movement flag.
const (
	ColorWellEntered    = "#2e8540"
	ColorWellNotEntered = "#f9c642"
	ColorRigMoving      = "#d83933"
	ColorRigStationary  = "#205493"
	ColorRigUnknown     = "#5b616b"
)

// ErrNoRigCollection marks an analysis document without a rigs collection.
var ErrNoRigCollection = errors.New("analysis document has no rig collection")

// LatLon is a map coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PathStyle controls how an association path is drawn.
type PathStyle struct {
	Color  string `json:"color"`
	Weight int    `json:"weight"`
	Dashed bool   `json:"dashed"`
}

// PopupField is one labelled line of a marker popup.
type PopupField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Popup is the display payload attached to a marker.
type Popup struct {
	Title  string       `json:"title"`
	Fields []PopupField `json:"fields"`
	Link   string       `json:"link,omitempty"`
}

// Surface is the rendering collaborator the core issues requests to. It is
// append-only for the duration of one render: nothing added is ever mutated
// or removed.
type Surface interface {
	AddPointMarker(lat, lon float64, color string, popup Popup)
	AddPath(from, to LatLon, style PathStyle)
}

// Diagnostics receives load/shape failures. Fire-and-forget.
type Diagnostics interface {
	ReportFailure(context string, err error)
}

// DiagnosticsFunc adapts a function to the Diagnostics interface.
type DiagnosticsFunc func(context string, err error)

// ReportFailure calls f.
func (f DiagnosticsFunc) ReportFailure(context string, err error) { f(context, err) }

// WellIndex maps well name → well record for one render. Wells are indexed
// by name regardless of coordinate validity (the join depends only on name
// equality); coordinate validity is checked again at path-draw time.
type WellIndex map[string]model.Well

// Resolve looks up a target well by exact name match.
func (idx WellIndex) Resolve(name string) (model.Well, bool) {
	w, ok := idx[name]
	return w, ok
}

// WellColor classifies a well: entered wells have a non-blank entry date.
func WellColor(w model.Well) string {
	if w.Entered() {
		return ColorWellEntered
	}
	return ColorWellNotEntered
}

// RigColor classifies a rig by its tri-state movement flag. Total: every
// value, including an absent flag, maps to exactly one color.
func RigColor(r model.Rig) string {
	switch {
	case r.Moving == nil:
		return ColorRigUnknown
	case *r.Moving:
		return ColorRigMoving
	default:
		return ColorRigStationary
	}
}

// BuildWellIndex indexes every well with a non-empty name and requests a
// marker for each well with usable coordinates.
func BuildWellIndex(wells []model.Well, surface Surface) WellIndex {
	index := make(WellIndex, len(wells))
	for _, w := range wells {
		if w.Name == "" {
			continue
		}
		index[w.Name] = w

		lat, lon, ok := w.Coords()
		if !ok {
			continue
		}
		surface.AddPointMarker(lat, lon, WellColor(w), wellPopup(w))
	}
	return index
}

// CorrelateRigs requests a marker per coordinate-valid rig and, where the
// likely target resolves to an indexed well with usable coordinates, a path
// from the rig to that well. Rigs are processed in name order so repeated
// renders of the same documents produce identical request sequences.
func CorrelateRigs(rigs map[string]model.Rig, index WellIndex, surface Surface) {
	names := make([]string, 0, len(rigs))
	for name := range rigs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rig := rigs[name]
		lat, lon, ok := rig.Coords()
		if !ok {
			continue
		}
		surface.AddPointMarker(lat, lon, RigColor(rig), rigPopup(name, rig))

		if rig.LikelyTargetWell == "" {
			continue
		}
		well, ok := index.Resolve(rig.LikelyTargetWell)
		if !ok {
			continue
		}
		wlat, wlon, ok := well.Coords()
		if !ok {
			continue
		}
		surface.AddPath(LatLon{Lat: lat, Lon: lon}, LatLon{Lat: wlat, Lon: wlon}, associationStyle)
	}
}

var associationStyle = PathStyle{Color: ColorRigUnknown, Weight: 2, Dashed: true}

// Documents carries the two load results into Render. Load errors stay with
// their document so the failure domains remain isolated.
type Documents struct {
	Wells       []model.Well
	WellsErr    error
	Analysis    model.AnalysisDoc
	AnalysisErr error
}

// Render runs the full two-phase build: well index first, rig correlation
// second. Failures are reported to diag and degrade the affected pipeline
// only; Render never returns an error. The completed index is returned for
// downstream consumers.
func Render(docs Documents, surface Surface, diag Diagnostics) WellIndex {
	index := WellIndex{}
	if docs.WellsErr != nil {
		diag.ReportFailure("load wells", docs.WellsErr)
	} else {
		index = BuildWellIndex(docs.Wells, surface)
	}

	if docs.AnalysisErr != nil {
		diag.ReportFailure("load rig analysis", docs.AnalysisErr)
		return index
	}
	if docs.Analysis.Rigs == nil {
		diag.ReportFailure("load rig analysis", ErrNoRigCollection)
		return index
	}

	CorrelateRigs(docs.Analysis.Rigs, index, surface)
	return index
}

func wellPopup(w model.Well) Popup {
	entry := w.EntryDate
	if !w.Entered() {
		entry = "not entered"
	}
	return Popup{
		Title: w.Name,
		Fields: []PopupField{
			{Label: "Field", Value: orUnknown(w.Field)},
			{Label: "Operator", Value: orUnknown(w.Operator)},
			{Label: "Entry date", Value: entry},
			{Label: "Status", Value: orUnknown(w.Status)},
			{Label: "Rig", Value: orUnknown(w.RigName)},
		},
		Link: w.FactPageURL,
	}
}

func rigPopup(name string, r model.Rig) Popup {
	target := r.LikelyTargetWell
	if target == "" {
		target = "no target inferred"
	}
	lastSeen := r.LastSeen
	if lastSeen == "" {
		lastSeen = "unknown"
	}
	return Popup{
		Title: name,
		Fields: []PopupField{
			{Label: "Movement", Value: movementLabel(r)},
			{Label: "Last seen", Value: lastSeen},
			{Label: "Likely target", Value: target},
			{Label: "Type", Value: orUnknown(r.RigType)},
		},
	}
}

func movementLabel(r model.Rig) string {
	switch {
	case r.Moving == nil:
		return "unknown"
	case *r.Moving:
		return "moving"
	default:
		return "stationary"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
