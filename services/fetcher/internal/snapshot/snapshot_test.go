package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schtekar/rigwatch/internal/model"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func msg(mmsi int64, age time.Duration) model.AISMessage {
	return model.AISMessage{
		MMSI:      mmsi,
		RigName:   "DEEPSEA YANTAI",
		Latitude:  60.0,
		Longitude: 3.0,
		MsgTime:   now.Add(-age),
	}
}

func TestUpdateNewRig(t *testing.T) {
	latest := []model.AISMessage{msg(311000483, time.Minute)}

	out := Update(nil, latest, now)

	require.Contains(t, out, int64(311000483))
	snap := out[311000483]
	require.NotNil(t, snap.MsgRecent)
	assert.Equal(t, latest[0].MsgTime, snap.MsgRecent.MsgTime)
	assert.Len(t, snap.RunningMsgs, 1)
}

func TestUpdateIgnoresStaleMessage(t *testing.T) {
	existing := map[int64]model.Snapshot{}
	recent := msg(311000483, time.Minute)
	existing[311000483] = model.Snapshot{MsgRecent: &recent, RunningMsgs: []model.AISMessage{recent}}

	out := Update(existing, []model.AISMessage{msg(311000483, time.Hour)}, now)

	snap := out[311000483]
	assert.Equal(t, recent.MsgTime, snap.MsgRecent.MsgTime)
	assert.Len(t, snap.RunningMsgs, 1)
}

func TestUpdatePrunesOldMessages(t *testing.T) {
	old := msg(311000483, 13*time.Hour)
	kept := msg(311000483, time.Hour)
	existing := map[int64]model.Snapshot{
		311000483: {MsgRecent: &kept, RunningMsgs: []model.AISMessage{old, kept}},
	}

	out := Update(existing, nil, now)

	snap := out[311000483]
	require.Len(t, snap.RunningMsgs, 1)
	assert.Equal(t, kept.MsgTime, snap.RunningMsgs[0].MsgTime)
}

func TestUpdateBoundsRunningHistory(t *testing.T) {
	running := make([]model.AISMessage, 0, MaxRunningMsgs+3)
	for i := 0; i < MaxRunningMsgs+3; i++ {
		running = append(running, msg(311000483, time.Duration(MaxRunningMsgs+3-i)*time.Minute))
	}
	recent := running[len(running)-1]
	existing := map[int64]model.Snapshot{
		311000483: {MsgRecent: &recent, RunningMsgs: running},
	}

	out := Update(existing, []model.AISMessage{msg(311000483, time.Second)}, now)

	snap := out[311000483]
	assert.Len(t, snap.RunningMsgs, MaxRunningMsgs)
	// The newest message is last.
	assert.Equal(t, now.Add(-time.Second), snap.RunningMsgs[len(snap.RunningMsgs)-1].MsgTime)
}

func TestUpdateRecordsAgedReferencePosition(t *testing.T) {
	aged := msg(311000483, 13*time.Hour)
	older := msg(311000483, 20*time.Hour)
	kept := msg(311000483, time.Hour)
	existing := map[int64]model.Snapshot{
		311000483: {MsgRecent: &kept, RunningMsgs: []model.AISMessage{older, aged, kept}},
	}

	out := Update(existing, nil, now)

	snap := out[311000483]
	require.Len(t, snap.RunningMsgs, 1)
	// The newest aged-out message becomes the 12h reference.
	require.NotNil(t, snap.Msg12h)
	assert.Equal(t, aged.MsgTime, snap.Msg12h.MsgTime)
}

func TestUpdateRollsAgedSlotsOncePerDay(t *testing.T) {
	ref12h := msg(311000483, 13*time.Hour)
	ref1d := msg(311000483, 30*time.Hour)
	existing := map[int64]model.Snapshot{
		311000483: {
			Msg12h:   &ref12h,
			Msg1d:    &ref1d,
			RollDate: now.AddDate(0, 0, -1).Format("2006-01-02"),
		},
	}

	out := Update(existing, nil, now)

	snap := out[311000483]
	require.NotNil(t, snap.Msg2d)
	assert.Equal(t, ref1d.MsgTime, snap.Msg2d.MsgTime)
	require.NotNil(t, snap.Msg1d)
	assert.Equal(t, ref12h.MsgTime, snap.Msg1d.MsgTime)
	assert.Equal(t, now.Format("2006-01-02"), snap.RollDate)

	// Same day again: no further roll.
	again := Update(out, nil, now)
	assert.Equal(t, ref1d.MsgTime, again[311000483].Msg2d.MsgTime)
}

func TestUpdateNewSnapshotDoesNotRollMidDay(t *testing.T) {
	out := Update(nil, []model.AISMessage{msg(311000483, time.Minute)}, now)

	snap := out[311000483]
	assert.Equal(t, now.Format("2006-01-02"), snap.RollDate)
	assert.Nil(t, snap.Msg1d)
	assert.Nil(t, snap.Msg2d)
}

func TestGapFillFillsMissingRecent(t *testing.T) {
	historical := msg(311000483, 48*time.Hour)

	out := GapFill(nil, []model.AISMessage{historical})

	snap := out[311000483]
	require.NotNil(t, snap.MsgRecent)
	assert.Equal(t, historical.MsgTime, snap.MsgRecent.MsgTime)
	// Secondary positions stay out of the running history.
	assert.Empty(t, snap.RunningMsgs)
}

func TestGapFillKeepsNewerLiveMessage(t *testing.T) {
	live := msg(311000483, time.Minute)
	existing := map[int64]model.Snapshot{
		311000483: {MsgRecent: &live, RunningMsgs: []model.AISMessage{live}},
	}

	out := GapFill(existing, []model.AISMessage{msg(311000483, 48*time.Hour)})

	snap := out[311000483]
	assert.Equal(t, live.MsgTime, snap.MsgRecent.MsgTime)
	assert.Len(t, existing[311000483].RunningMsgs, 1)
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	recent := msg(311000483, time.Hour)
	existing := map[int64]model.Snapshot{
		311000483: {MsgRecent: &recent, RunningMsgs: []model.AISMessage{recent}},
	}

	_ = Update(existing, []model.AISMessage{msg(311000483, time.Minute)}, now)

	assert.Len(t, existing[311000483].RunningMsgs, 1)
	assert.Equal(t, recent.MsgTime, existing[311000483].MsgRecent.MsgTime)
}
