package distill

import (
	"errors"
	"testing"

	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFeed() StreamSpec {
	return StreamSpec{
		Temperature: 290.0,
		Pressure:    17.4,
		MolarFlows: PerCompound[float64]{
			Ethane:     0.017,
			Propane:    1.110,
			Isobutane:  1.198,
			NButane:    0.516,
			Isopentane: 0.334,
			NPentane:   0.173,
		},
	}
}

func testColumn() ColumnInput {
	return ColumnInput{
		NStages:           4,
		FeedStage:         2,
		RefluxRatio:       1.0,
		ReboilRatio:       1.0,
		CondenserPressure: 17.4,
	}
}

func TestFacadeLifecycle(t *testing.T) {
	eng := flowsheet.DemoColumnCase(4)
	f := NewFacade(eng, CaseLayout{}, zap.NewNop())
	assert.Equal(t, StateUninitialized, f.State())

	// Nothing but connect is allowed from a fresh facade.
	assert.ErrorIs(t, f.LoadCase("cases/column.bkp"), ErrInvalidState)
	assert.ErrorIs(t, f.SetFeed(testFeed()), ErrInvalidState)
	_, err := f.Solve()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, _, err = f.ProductStreams()
	assert.ErrorIs(t, err, ErrNotSolved)

	require.NoError(t, f.Connect())
	assert.Equal(t, StateConnected, f.State())
	assert.ErrorIs(t, f.Connect(), ErrInvalidState, "connect is the one step that cannot repeat")

	assert.ErrorIs(t, f.SetFeed(testFeed()), ErrInvalidState, "configure needs a loaded case")

	require.NoError(t, f.LoadCase("cases/column.bkp"))
	assert.Equal(t, StateCaseLoaded, f.State())
	assert.Equal(t, "cases/column.bkp", eng.CasePath())

	_, err = f.Solve()
	assert.ErrorIs(t, err, ErrInvalidState, "solve needs a configured column")

	require.NoError(t, f.SetFeed(testFeed()))
	assert.Equal(t, StateConfigured, f.State())
	require.NoError(t, f.SetColumn(testColumn()))
	require.NoError(t, f.SetColumn(testColumn()), "configure may be retried")

	n, err := eng.FindNode(flowsheet.StreamPath("S1", `Input\MOLEFLMX\PROPANE`))
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 1.110, v)

	n, err = eng.FindNode(flowsheet.BlockPath("B1", `Input\NSTAGE`))
	require.NoError(t, err)
	v, err = n.Float()
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	rep, err := f.Solve()
	require.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.Equal(t, StateSolved, f.State())
	assert.Equal(t, 1, eng.Runs())

	tops, bottoms, err := f.ProductStreams()
	require.NoError(t, err)
	assert.Equal(t, flowsheet.DemoTopsTemperature, tops.Temperature)
	assert.Equal(t, flowsheet.DemoBottomsTemperature, bottoms.Temperature)
	assert.Equal(t, flowsheet.DemoTopsFlows, tops.MolarFlows.Values())
	assert.Equal(t, flowsheet.DemoBottomsFlows, bottoms.MolarFlows.Values())

	out, err := f.ColumnProperties(testColumn())
	require.NoError(t, err)
	assert.Equal(t, flowsheet.DemoCondenserDuty, out.CondenserDuty)
	assert.Equal(t, flowsheet.DemoReboilerDuty, out.ReboilerDuty)
	require.Len(t, out.Temperatures, 4)
	for i := 1; i <= 4; i++ {
		assert.Equal(t, flowsheet.DemoStageTemperature(i), out.Temperatures[i-1])
		assert.Equal(t, flowsheet.DemoStageMolarWeight(i), out.MolarWeights[i-1])
		assert.Equal(t, flowsheet.DemoStageVaporFlow(i), out.VaporFlows[i-1])
	}

	// Reconfiguring makes previous outputs stale again.
	require.NoError(t, f.SetFeed(testFeed()))
	assert.Equal(t, StateConfigured, f.State())
	_, _, err = f.ProductStreams()
	assert.ErrorIs(t, err, ErrNotSolved)

	// Reloading the case is allowed from anywhere past connect.
	require.NoError(t, f.LoadCase("cases/other.bkp"))
	assert.Equal(t, StateCaseLoaded, f.State())

	require.NoError(t, f.Close())
}

func TestFacadeSolveFailureLeavesConfigured(t *testing.T) {
	eng := flowsheet.DemoColumnCase(4)
	boom := errors.New("solver blew up")
	eng.ScriptRun(func(n int) (bool, error) {
		if n == 1 {
			return false, boom
		}
		return true, nil
	})

	f := NewFacade(eng, CaseLayout{}, zap.NewNop())
	require.NoError(t, f.Connect())
	require.NoError(t, f.LoadCase("cases/column.bkp"))
	require.NoError(t, f.SetFeed(testFeed()))
	require.NoError(t, f.SetColumn(testColumn()))

	rep, err := f.Solve()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, rep.Converged)
	assert.Equal(t, StateConfigured, f.State())
	_, _, err = f.ProductStreams()
	assert.ErrorIs(t, err, ErrNotSolved)

	// The step may be retried explicitly.
	rep, err = f.Solve()
	require.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.Equal(t, StateSolved, f.State())
}

func TestFacadeSolveWithoutConvergence(t *testing.T) {
	eng := flowsheet.DemoColumnCase(4)
	eng.ScriptRun(func(int) (bool, error) { return false, nil })

	f := NewFacade(eng, CaseLayout{}, zap.NewNop())
	require.NoError(t, f.Connect())
	require.NoError(t, f.LoadCase("cases/column.bkp"))
	require.NoError(t, f.SetFeed(testFeed()))
	require.NoError(t, f.SetColumn(testColumn()))

	// A solve that returns without converging is not an error; the report
	// carries the distinction.
	rep, err := f.Solve()
	require.NoError(t, err)
	assert.False(t, rep.Converged)
	assert.Equal(t, StateSolved, f.State())
}

func TestFacadeColumnInputValidation(t *testing.T) {
	eng := flowsheet.DemoColumnCase(4)
	f := NewFacade(eng, CaseLayout{}, zap.NewNop())
	require.NoError(t, f.Connect())
	require.NoError(t, f.LoadCase("cases/column.bkp"))

	bad := testColumn()
	bad.NStages = 1
	require.Error(t, f.SetColumn(bad))

	bad = testColumn()
	bad.NStages = 2
	require.Error(t, f.SetColumn(bad), "a column needs at least three stages")

	bad = testColumn()
	bad.FeedStage = 9
	err := f.SetColumn(bad)
	require.Error(t, err, "feed stage past the last stage")

	bad = testColumn()
	bad.RefluxRatio = -0.5
	require.Error(t, f.SetColumn(bad))

	assert.Equal(t, StateCaseLoaded, f.State(), "rejected input must not advance the session")
}

func TestFacadeLayoutDefaults(t *testing.T) {
	f := NewFacade(flowsheet.NewMemEngine(), CaseLayout{FeedStream: "FEED"}, zap.NewNop())
	l := f.Layout()
	assert.Equal(t, "FEED", l.FeedStream)
	assert.Equal(t, "S2", l.TopsStream)
	assert.Equal(t, "S3", l.BottomsStream)
	assert.Equal(t, "B1", l.Block)
	assert.Equal(t, "I-PENTAN", l.Components.Isopentane)
}
