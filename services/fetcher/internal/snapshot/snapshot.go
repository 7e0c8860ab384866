// Package snapshot maintains the rolling per-rig AIS history the movement
// detector reads, plus the aged reference positions (12h/1d/2d) the
// front-end history view uses.
package snapshot

import (
	"time"

	"github.com/schtekar/rigwatch/internal/model"
)

const (
	// MaxRunningMsgs bounds the running history kept per rig.
	MaxRunningMsgs = 12
	// Retention prunes running messages older than this.
	Retention = 12 * time.Hour
)

// Update merges freshly fetched messages into the stored snapshots, prunes
// the running history, and maintains the aged reference positions. The
// input map is not modified.
func Update(snapshots map[int64]model.Snapshot, latest []model.AISMessage, now time.Time) map[int64]model.Snapshot {
	out := make(map[int64]model.Snapshot, len(snapshots)+len(latest))
	for mmsi, snap := range snapshots {
		out[mmsi] = snap
	}

	for _, msg := range latest {
		snap := out[msg.MMSI]
		if snap.MsgRecent == nil || msg.MsgTime.After(snap.MsgRecent.MsgTime) {
			m := msg
			snap.MsgRecent = &m
			snap.RunningMsgs = append(append([]model.AISMessage(nil), snap.RunningMsgs...), msg)
		}
		out[msg.MMSI] = snap
	}

	today := now.UTC().Format("2006-01-02")
	for mmsi, snap := range out {
		pruned := make([]model.AISMessage, 0, len(snap.RunningMsgs))
		for _, msg := range snap.RunningMsgs {
			if now.Sub(msg.MsgTime) < Retention {
				pruned = append(pruned, msg)
				continue
			}
			// An aged-out message becomes the 12h reference position; the
			// newest one wins.
			if snap.Msg12h == nil || msg.MsgTime.After(snap.Msg12h.MsgTime) {
				m := msg
				snap.Msg12h = &m
			}
		}
		if len(pruned) > MaxRunningMsgs {
			pruned = pruned[len(pruned)-MaxRunningMsgs:]
		}
		snap.RunningMsgs = pruned

		// Roll the aged slots once per UTC day. A brand-new snapshot only
		// records the date so it never rolls mid-day.
		if snap.RollDate != today {
			if snap.RollDate != "" {
				snap.Msg2d = snap.Msg1d
				snap.Msg1d = snap.Msg12h
			}
			snap.RollDate = today
		}

		out[mmsi] = snap
	}

	return out
}

// GapFill applies secondary-source positions to snapshots whose recent
// message is missing or older. Historical positions never join the running
// history, so they cannot flip movement detection.
func GapFill(snapshots map[int64]model.Snapshot, positions []model.AISMessage) map[int64]model.Snapshot {
	out := make(map[int64]model.Snapshot, len(snapshots)+len(positions))
	for mmsi, snap := range snapshots {
		out[mmsi] = snap
	}

	for _, msg := range positions {
		snap := out[msg.MMSI]
		if snap.MsgRecent == nil || msg.MsgTime.After(snap.MsgRecent.MsgTime) {
			m := msg
			snap.MsgRecent = &m
			out[msg.MMSI] = snap
		}
	}
	return out
}
