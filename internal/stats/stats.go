// Package stats computes the key-statistics summary shown next to the map.
package stats

import (
	"sort"
	"time"

	"github.com/schtekar/rigwatch/internal/model"
	"github.com/schtekar/rigwatch/internal/registry"
)

const hottestWellsLimit = 10

// HotWell is one recently-entered well in the summary.
type HotWell struct {
	WellboreName   string `json:"wellbore_name"`
	RigName        string `json:"rig_name"`
	EntryDate      string `json:"entry_date"`
	DaysSinceEntry *int   `json:"days_since_entry"`
}

// KeyStats is the summary document.
type KeyStats struct {
	NumRigs         int       `json:"num_rigs"`
	NumWells        int       `json:"num_wells"`
	EnteredWells    int       `json:"entered_wells"`
	NotEnteredWells int       `json:"not_entered_wells"`
	StationaryRigs  int       `json:"stationary_rigs"`
	MovingRigs      int       `json:"moving_rigs"`
	Jackups         int       `json:"jackups"`
	Semisubs        int       `json:"semisubs"`
	HottestWells    []HotWell `json:"hottest_wells"`
}

// Compute derives the summary from the wells dataset and the rig collection
// of the analysis document. A nil rig collection yields zero rig counts.
func Compute(wells []model.Well, rigs map[string]model.Rig, now time.Time) KeyStats {
	stats := KeyStats{
		NumRigs:      len(rigs),
		NumWells:     len(wells),
		HottestWells: make([]HotWell, 0, hottestWellsLimit),
	}

	entered := make([]HotWell, 0, len(wells))
	for _, w := range wells {
		if !w.Entered() {
			stats.NotEnteredWells++
			continue
		}
		stats.EnteredWells++

		hot := HotWell{WellboreName: w.Name, RigName: w.RigName, EntryDate: w.EntryDate}
		if entryDate, err := time.Parse("2006-01-02", w.EntryDate); err == nil {
			days := int(now.Sub(entryDate).Hours() / 24)
			hot.DaysSinceEntry = &days
		}
		entered = append(entered, hot)
	}

	sort.SliceStable(entered, func(i, j int) bool {
		return entered[i].EntryDate > entered[j].EntryDate
	})
	if len(entered) > hottestWellsLimit {
		entered = entered[:hottestWellsLimit]
	}
	stats.HottestWells = append(stats.HottestWells, entered...)

	for name, rig := range rigs {
		if rig.Moving != nil && *rig.Moving {
			stats.MovingRigs++
		} else {
			stats.StationaryRigs++
		}

		switch registry.TypeFor(name) {
		case registry.TypeJackUp:
			stats.Jackups++
		case registry.TypeSemiSub:
			stats.Semisubs++
		}
	}

	return stats
}
