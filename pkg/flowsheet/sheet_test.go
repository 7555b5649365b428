package flowsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solvedStream(eng *MemEngine, name string) {
	eng.Preload(StreamPath(name, `Input\TEMP\MIXED`), 290)
	eng.Preload(StreamPath(name, `Input\PRES\MIXED`), 17.4)
	eng.Preload(StreamPath(name, `Output\TEMP_OUT\MIXED`), 312.5)
	eng.Preload(StreamPath(name, `Output\PRES_OUT\MIXED`), 17.4)
}

func TestSetStreamTemperaturePrefersFirstCandidate(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(StreamPath("S1", `Input\TEMP\MIXED`), 0)
	eng.Preload(StreamPath("S1", `Input\TEMP`), 0)
	sheet := NewSheet(eng)

	require.NoError(t, sheet.SetStreamTemperature("S1", 305))

	n, err := eng.FindNode(StreamPath("S1", `Input\TEMP\MIXED`))
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 305.0, v)

	n, err = eng.FindNode(StreamPath("S1", `Input\TEMP`))
	require.NoError(t, err)
	v, err = n.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "fallback node must stay untouched")
}

func TestSetStreamTemperatureFallsBack(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(StreamPath("S1", `Input\TEMP`), 0)
	sheet := NewSheet(eng)

	require.NoError(t, sheet.SetStreamTemperature("S1", 305))

	n, err := eng.FindNode(StreamPath("S1", `Input\TEMP`))
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 305.0, v)
	assert.Equal(t, []string{StreamPath("S1", `Input\TEMP`)}, eng.Writes())
}

func TestResolveErrorListsEveryCandidate(t *testing.T) {
	eng := NewMemEngine()
	sheet := NewSheet(eng)

	err := sheet.SetStreamPressure("S9", 17.4)
	require.Error(t, err)

	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "set stream pressure", rerr.Op)
	assert.Equal(t, "S9", rerr.Target)
	assert.Equal(t, []string{
		StreamPath("S9", `Input\PRES\MIXED`),
		StreamPath("S9", `Input\PRES`),
	}, rerr.Tried)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestComponentFlowCandidates(t *testing.T) {
	eng := NewMemEngine()
	// Only the last-resort spelling exists for the input side, only the
	// mass-flow spelling for the output side.
	eng.Preload(StreamPath("S1", `Input\PROPANE`), 0)
	eng.Preload(StreamPath("S2", `Output\MASSFLOW3\PROPANE`), 0.96)
	sheet := NewSheet(eng)

	require.NoError(t, sheet.SetComponentFlow("S1", "PROPANE", 1.11))
	n, err := eng.FindNode(StreamPath("S1", `Input\PROPANE`))
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 1.11, v)

	got, err := sheet.ComponentFlow("S2", "PROPANE")
	require.NoError(t, err)
	assert.Equal(t, 0.96, got)
}

func TestStreamOutputReads(t *testing.T) {
	eng := NewMemEngine()
	solvedStream(eng, "S2")
	sheet := NewSheet(eng)

	temp, err := sheet.StreamTemperature("S2")
	require.NoError(t, err)
	assert.Equal(t, 312.5, temp)

	pres, err := sheet.StreamPressure("S2")
	require.NoError(t, err)
	assert.Equal(t, 17.4, pres)
}

func TestColumnInputWrites(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(BlockPath("B1", `Input\NSTAGE`), 0)
	eng.Preload(BlockPath("B1", `Input\FEED_STAGE\S1`), 0)
	eng.Preload(BlockPath("B1", `Input\PRES1`), 0)
	eng.Preload(BlockPath("B1", `Input\BASIS_RR`), 0)
	eng.Preload(BlockPath("B1", `Input\BASIS_BR`), 0)
	sheet := NewSheet(eng)

	require.NoError(t, sheet.SetStageCount("B1", 50))
	require.NoError(t, sheet.SetFeedStage("B1", "S1", 25))
	require.NoError(t, sheet.SetColumnPressure("B1", 17.4))
	require.NoError(t, sheet.SetRefluxRatio("B1", 1.2))
	require.NoError(t, sheet.SetReboilRatio("B1", 0.9))

	for path, want := range map[string]float64{
		BlockPath("B1", `Input\NSTAGE`):        50,
		BlockPath("B1", `Input\FEED_STAGE\S1`): 25,
		BlockPath("B1", `Input\PRES1`):         17.4,
		BlockPath("B1", `Input\BASIS_RR`):      1.2,
		BlockPath("B1", `Input\BASIS_BR`):      0.9,
	} {
		n, err := eng.FindNode(path)
		require.NoError(t, err, path)
		v, err := n.Float()
		require.NoError(t, err, path)
		assert.Equal(t, want, v, path)
	}
}

func TestSetFeedStageUnkeyedFallback(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(BlockPath("B1", `Input\FEED_STAGE`), 0)
	sheet := NewSheet(eng)

	require.NoError(t, sheet.SetFeedStage("B1", "S1", 12))

	n, err := eng.FindNode(BlockPath("B1", `Input\FEED_STAGE`))
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)
}

func TestColumnDuties(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(BlockPath("B1", `Output\COND_DUTY\MIXED`), -1.9e6)
	eng.Preload(BlockPath("B1", `Output\REBOILER_DUTY`), 2.1e6)
	sheet := NewSheet(eng)

	cond, err := sheet.CondenserDuty("B1")
	require.NoError(t, err)
	assert.Equal(t, -1.9e6, cond)

	// Reboiler read must reach the second spelling.
	reb, err := sheet.ReboilerDuty("B1")
	require.NoError(t, err)
	assert.Equal(t, 2.1e6, reb)
}

func TestStageProfilesZeroFill(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(BlockPath("B1", `Output\STAGE\TEMP\1`), 298.0)
	eng.Preload(BlockPath("B1", `Output\STAGE\TEMP\3`), 341.5)
	sheet := NewSheet(eng)

	got := sheet.StageTemperatures("B1", 4)
	assert.Equal(t, []float64{298.0, 0, 341.5, 0}, got)

	// Profiles always have exactly n entries, even with nothing resolvable.
	assert.Equal(t, []float64{0, 0}, sheet.StageVaporFlows("B1", 2))
	assert.Len(t, sheet.StageMolarWeights("B1", 7), 7)
}
