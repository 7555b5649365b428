package flowsheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemEngineFindNode(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(`\Data\Streams\S1\Input\TEMP\MIXED`, 290)

	n, err := eng.FindNode(`\Data\Streams\S1\Input\TEMP\MIXED`)
	require.NoError(t, err)
	v, err := n.Float()
	require.NoError(t, err)
	assert.Equal(t, 290.0, v)

	_, err = eng.FindNode(`\Data\Streams\S1\Input\PRES\MIXED`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	// A prefix of a real path is a branch, not a leaf with children.
	_, err = eng.FindNode(`\Data\Streams\S1\Input\TEMP\MIXED\EXTRA`)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemEngineSetFloat(t *testing.T) {
	eng := NewMemEngine()
	eng.Preload(`\Data\Blocks\B1\Input\BASIS_RR`, 1.0)

	n, err := eng.FindNode(`\Data\Blocks\B1\Input\BASIS_RR`)
	require.NoError(t, err)
	require.NoError(t, n.SetFloat(1.5))

	again, err := eng.FindNode(`\Data\Blocks\B1\Input\BASIS_RR`)
	require.NoError(t, err)
	v, err := again.Float()
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, []string{`\Data\Blocks\B1\Input\BASIS_RR`}, eng.Writes())
}

func TestMemEngineRun(t *testing.T) {
	eng := NewMemEngine()

	_, err := eng.Run()
	assert.ErrorIs(t, err, ErrNoCaseOpen)

	require.NoError(t, eng.OpenCase("cases/column.bkp"))
	assert.Equal(t, "cases/column.bkp", eng.CasePath())

	rep, err := eng.Run()
	require.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.Equal(t, 1, eng.Runs())
}

func TestMemEngineScriptRun(t *testing.T) {
	eng := NewMemEngine()
	require.NoError(t, eng.OpenCase("cases/column.bkp"))

	boom := errors.New("solver blew up")
	eng.ScriptRun(func(n int) (bool, error) {
		switch n {
		case 1:
			return false, nil
		case 2:
			return true, boom
		default:
			return true, nil
		}
	})

	rep, err := eng.Run()
	require.NoError(t, err)
	assert.False(t, rep.Converged)

	_, err = eng.Run()
	assert.ErrorIs(t, err, boom)

	rep, err = eng.Run()
	require.NoError(t, err)
	assert.True(t, rep.Converged)
	assert.Equal(t, 3, eng.Runs())
}

func TestMemEngineSaveAndClose(t *testing.T) {
	eng := NewMemEngine()

	err := eng.Save("out.bkp")
	assert.ErrorIs(t, err, ErrNoCaseOpen)

	require.NoError(t, eng.OpenCase("cases/column.bkp"))
	require.NoError(t, eng.Save("out.bkp"))
	assert.Equal(t, "out.bkp", eng.SavedTo())

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close())

	_, err = eng.FindNode(`\Data\Streams\S1\Input\TEMP`)
	assert.ErrorIs(t, err, ErrEngineClosed)
	_, err = eng.Run()
	assert.ErrorIs(t, err, ErrEngineClosed)
	err = eng.OpenCase("cases/column.bkp")
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{`\Data\Streams\S1`, []string{"Data", "Streams", "S1"}},
		{`Data\Streams`, []string{"Data", "Streams"}},
		{`\\Data\\S1`, []string{"Data", "S1"}},
		{``, nil},
	}
	for _, tt := range tests {
		got := splitPath(tt.path)
		if len(tt.want) == 0 {
			assert.Empty(t, got, tt.path)
			continue
		}
		assert.Equal(t, tt.want, got, tt.path)
	}
}
