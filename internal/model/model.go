package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coord is a latitude or longitude sourced from feeds that encode numbers
// inconsistently (JSON number, numeric string, null, or absent). Decoding
// never fails: anything that does not parse to a finite number is simply
// an invalid coordinate.
type Coord struct {
	value float64
	valid bool
}

// NewCoord wraps a known-good coordinate value.
func NewCoord(v float64) Coord {
	return Coord{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// CoordFromPtr wraps a nullable coordinate (nil means missing).
func CoordFromPtr(v *float64) Coord {
	if v == nil {
		return Coord{}
	}
	return NewCoord(*v)
}

// Float returns the coordinate value and whether it is usable.
func (c Coord) Float() (float64, bool) {
	return c.value, c.valid
}

func (c *Coord) UnmarshalJSON(b []byte) error {
	*c = Coord{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		*c = NewCoord(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*c = NewCoord(f)
		}
	}
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// Well is one entry of the wells document (SODIR wellbore shape).
type Well struct {
	Name        string `json:"wellbore_name"`
	Well        string `json:"well,omitempty"`
	Status      string `json:"status,omitempty"`
	EntryDate   string `json:"entryDate"`
	RigName     string `json:"rig_name,omitempty"`
	RigType     string `json:"rig_type,omitempty"`
	Operator    string `json:"operator,omitempty"`
	WellType    string `json:"well_type,omitempty"`
	Field       string `json:"field,omitempty"`
	FactPageURL string `json:"fact_page_url,omitempty"`
	Lat         Coord  `json:"lat"`
	Lon         Coord  `json:"lon"`
}

// Coords returns the well position if both coordinates are usable.
func (w Well) Coords() (lat, lon float64, ok bool) {
	la, okLa := w.Lat.Float()
	lo, okLo := w.Lon.Float()
	return la, lo, okLa && okLo
}

// Entered reports whether the well has a recorded entry date.
func (w Well) Entered() bool {
	return strings.TrimSpace(w.EntryDate) != ""
}

// Rig is one entry of the analysis document's rig collection.
type Rig struct {
	RigName          string   `json:"rig_name"`
	MMSI             int64    `json:"mmsi,omitempty"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	Moving           *bool    `json:"rig_moving"`
	LikelyTargetWell string   `json:"likely_target_well,omitempty"`
	LastSeen         string   `json:"last_seen,omitempty"`
	RigType          string   `json:"rig_type,omitempty"`
	Status           string   `json:"status,omitempty"`
	Confidence       string   `json:"confidence,omitempty"`
	MovementM        *float64 `json:"movement_m,omitempty"`
	ClosestWell      string   `json:"closest_well,omitempty"`
	ClosestDistanceM *float64 `json:"closest_distance_m,omitempty"`
	FutureWells      []string `json:"future_wells,omitempty"`
	OnSiteWell       string   `json:"on_site_well,omitempty"`
}

// Coords returns the rig position if both coordinates are present and finite.
func (r Rig) Coords() (lat, lon float64, ok bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return 0, 0, false
	}
	la, lo := *r.Latitude, *r.Longitude
	if math.IsNaN(la) || math.IsInf(la, 0) || math.IsNaN(lo) || math.IsInf(lo, 0) {
		return 0, 0, false
	}
	return la, lo, true
}

// WellDistance is the per-well entry of the analysis document.
type WellDistance struct {
	RigName        string  `json:"rig_name"`
	DistanceToRigM float64 `json:"distance_to_rig_m"`
}

// AnalysisDoc is the rig/well analysis document. Rigs is keyed by rig name;
// a nil map means the document lacked the collection entirely.
type AnalysisDoc struct {
	GeneratedAt string                  `json:"generated_at"`
	Rigs        map[string]Rig          `json:"rigs"`
	Wells       map[string]WellDistance `json:"wells,omitempty"`
}

// AISMessage is a single filtered AIS position report.
type AISMessage struct {
	MMSI      int64     `json:"mmsi"`
	RigName   string    `json:"rig_name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	MsgTime   time.Time `json:"msgtime"`
	Source    string    `json:"source,omitempty"`
}

// Snapshot holds the rolling AIS history kept per rig. Msg12h/Msg1d/Msg2d
// are aged reference positions: the last message from over 12 hours ago,
// rolled down one slot at each UTC date change.
type Snapshot struct {
	MsgRecent   *AISMessage  `json:"msg_recent"`
	RunningMsgs []AISMessage `json:"running_msgs"`
	Msg12h      *AISMessage  `json:"msg_12h,omitempty"`
	Msg1d       *AISMessage  `json:"msg_1d,omitempty"`
	Msg2d       *AISMessage  `json:"msg_2d,omitempty"`
	RollDate    string       `json:"roll_date,omitempty"`
}
