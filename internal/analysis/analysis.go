// Package analysis correlates AIS snapshots with SODIR wells: movement
// detection, closest/on-site well resolution, and the likely-target
// inference the map correlator consumes.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/schtekar/rigwatch/internal/geo"
	"github.com/schtekar/rigwatch/internal/model"
	"github.com/schtekar/rigwatch/internal/registry"
)

// Thresholds for movement and on-site detection, in meters.
const (
	StationaryThresholdM = 50
	OnSiteDistanceM      = 200
)

// Rig statuses emitted by the analysis.
const (
	StatusOnSite     = "on_site"
	StatusStationary = "stationary"
	StatusMoving     = "moving"
)

// Run builds the analysis document from the wells dataset and the per-rig
// AIS snapshots. Snapshots without a recent message or without usable
// coordinates are skipped.
func Run(wells []model.Well, snapshots map[int64]model.Snapshot, now time.Time) model.AnalysisDoc {
	wellsByRig := make(map[string][]model.Well)
	for _, w := range wells {
		rig := registry.Normalize(w.RigName)
		if rig == "" {
			continue
		}
		wellsByRig[rig] = append(wellsByRig[rig], w)
	}

	doc := model.AnalysisDoc{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Rigs:        make(map[string]model.Rig),
		Wells:       make(map[string]model.WellDistance),
	}

	mmsis := make([]int64, 0, len(snapshots))
	for mmsi := range snapshots {
		mmsis = append(mmsis, mmsi)
	}
	sort.Slice(mmsis, func(i, j int) bool { return mmsis[i] < mmsis[j] })

	for _, mmsi := range mmsis {
		snap := snapshots[mmsi]
		msg := snap.MsgRecent
		if msg == nil {
			continue
		}

		rigName := registry.Normalize(msg.RigName)
		if rigName == "" || !geo.Valid(msg.Latitude, msg.Longitude) {
			continue
		}

		rig := analyzeRig(rigName, mmsi, snap, wellsByRig[rigName], doc.Wells)
		doc.Rigs[rigName] = rig
	}

	return doc
}

func analyzeRig(rigName string, mmsi int64, snap model.Snapshot, assigned []model.Well, wellResults map[string]model.WellDistance) model.Rig {
	msg := snap.MsgRecent
	lat, lon := msg.Latitude, msg.Longitude

	moving, movementM := detectMovement(snap)

	var (
		closestWell  *model.Well
		closestDistM *float64
		onSiteWell   *model.Well
		targetWell   *model.Well
		targetDistM  float64
		futureWells  []string
	)

	for i := range assigned {
		w := assigned[i]
		if !w.Entered() {
			futureWells = append(futureWells, w.Name)
		}

		wlat, wlon, ok := w.Coords()
		if !ok {
			continue
		}
		distM := round1(geo.DistanceM(lat, lon, wlat, wlon))

		wellResults[w.Name] = model.WellDistance{RigName: rigName, DistanceToRigM: distM}

		if closestDistM == nil || distM < *closestDistM {
			d := distM
			closestDistM = &d
			closestWell = &assigned[i]
		}

		// On site: effectively stationary next to a well that has been
		// entered. An unknown movement state counts as not moving.
		notMoving := moving == nil || !*moving
		if notMoving && distM <= OnSiteDistanceM && w.Entered() {
			onSiteWell = &assigned[i]
		}

		// Target candidates are wells not yet entered; nearest wins.
		if !w.Entered() && (targetWell == nil || distM < targetDistM) {
			targetWell = &assigned[i]
			targetDistM = distM
		}
	}

	status, confidence := classify(onSiteWell != nil, moving)

	rig := model.Rig{
		RigName:          rigName,
		MMSI:             mmsi,
		Latitude:         &lat,
		Longitude:        &lon,
		Moving:           moving,
		MovementM:        movementM,
		LastSeen:         msg.MsgTime.UTC().Format(time.RFC3339),
		RigType:          registry.TypeFor(rigName),
		Status:           status,
		Confidence:       confidence,
		ClosestDistanceM: closestDistM,
		FutureWells:      futureWells,
	}
	if closestWell != nil {
		rig.ClosestWell = closestWell.Name
	}
	if onSiteWell != nil {
		rig.OnSiteWell = onSiteWell.Name
		rig.LikelyTargetWell = onSiteWell.Name
	} else if targetWell != nil {
		rig.LikelyTargetWell = targetWell.Name
	}
	return rig
}

// detectMovement compares the two most recent running messages. Fewer than
// two usable positions means the movement state is unknown (nil).
func detectMovement(snap model.Snapshot) (moving *bool, movementM *float64) {
	running := snap.RunningMsgs
	if len(running) < 2 || snap.MsgRecent == nil {
		return nil, nil
	}

	prev := running[len(running)-2]
	if !geo.Valid(prev.Latitude, prev.Longitude) {
		return nil, nil
	}

	distM := round1(geo.DistanceM(prev.Latitude, prev.Longitude, snap.MsgRecent.Latitude, snap.MsgRecent.Longitude))
	isMoving := distM > StationaryThresholdM
	return &isMoving, &distM
}

func classify(onSite bool, moving *bool) (status, confidence string) {
	switch {
	case onSite:
		return StatusOnSite, "high"
	case moving == nil || !*moving:
		return StatusStationary, "medium"
	default:
		return StatusMoving, "medium"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
