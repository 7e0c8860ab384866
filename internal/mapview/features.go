package mapview

// MarkerRequest is one collected point-marker request.
type MarkerRequest struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
	Popup Popup   `json:"popup"`
}

// PathRequest is one collected association-path request.
type PathRequest struct {
	From  LatLon    `json:"from"`
	To    LatLon    `json:"to"`
	Style PathStyle `json:"style"`
}

// FeatureSet is an append-only Surface that collects requests for the API
// to serve to the front-end.
type FeatureSet struct {
	Markers []MarkerRequest `json:"markers"`
	Paths   []PathRequest   `json:"paths"`
}

// NewFeatureSet returns an empty feature set.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{
		Markers: make([]MarkerRequest, 0),
		Paths:   make([]PathRequest, 0),
	}
}

// AddPointMarker records a marker request.
func (f *FeatureSet) AddPointMarker(lat, lon float64, color string, popup Popup) {
	f.Markers = append(f.Markers, MarkerRequest{Lat: lat, Lon: lon, Color: color, Popup: popup})
}

// AddPath records a path request.
func (f *FeatureSet) AddPath(from, to LatLon, style PathStyle) {
	f.Paths = append(f.Paths, PathRequest{From: from, To: to, Style: style})
}

// LegendEntry is one line of the map legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend returns the fixed legend for the marker colors.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Label: "Entered well", Color: ColorWellEntered},
		{Label: "Well not entered", Color: ColorWellNotEntered},
		{Label: "Rig moving", Color: ColorRigMoving},
		{Label: "Rig stationary", Color: ColorRigStationary},
		{Label: "Rig status unknown", Color: ColorRigUnknown},
	}
}
