package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGuards(t *testing.T) {
	m := NewMock()

	assert.ErrorIs(t, m.OpenCase("case.bkp"), ErrNotConnected)
	assert.ErrorIs(t, m.Run(), ErrNotConnected)
	_, err := m.Streams()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, m.SetStream("F1", Stream{}), ErrNotConnected)
	_, err = m.Save("")
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, m.Connect())

	// A solve needs no case, reads and writes do.
	require.NoError(t, m.Run())
	_, err = m.Streams()
	assert.ErrorIs(t, err, ErrNoCase)
	assert.ErrorIs(t, m.SetStream("F1", Stream{}), ErrNoCase)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Run(), ErrNotConnected)
}

func TestMockOpenCaseResetsFixture(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Connect())
	require.NoError(t, m.OpenCase("a.bkp"))

	require.NoError(t, m.SetStream("F1", Stream{Name: "F1", Flow: 1.0}))
	require.NoError(t, m.SetStream("X9", Stream{Name: "X9", Flow: 7.0}))

	// Reopening always restores the same two fixture entries.
	require.NoError(t, m.OpenCase("b.bkp"))
	streams, err := m.Streams()
	require.NoError(t, err)
	require.Len(t, streams, 2)

	byName := map[string]Stream{}
	for _, s := range streams {
		byName[s.Name] = s
	}
	f1 := byName["F1"]
	require.NotNil(t, f1.Temperature)
	require.NotNil(t, f1.Pressure)
	assert.Equal(t, 100.0, f1.Flow)
	assert.Equal(t, 300.0, *f1.Temperature)
	assert.Equal(t, 101325.0, *f1.Pressure)
	assert.Equal(t, map[string]float64{"H2O": 1.0}, f1.Composition)

	f2 := byName["F2"]
	require.NotNil(t, f2.Temperature)
	assert.Equal(t, 50.0, f2.Flow)
	assert.Equal(t, 310.0, *f2.Temperature)
	assert.Equal(t, map[string]float64{"Ethanol": 1.0}, f2.Composition)

	assert.Equal(t, "b.bkp", m.CasePath())
}

func TestMockSetStreamOverwrites(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Connect())
	require.NoError(t, m.OpenCase("case.bkp"))

	want := Stream{Name: "F1", Flow: 123.4, Temperature: f64(305.0), Composition: map[string]float64{"H2O": 0.8, "Ethanol": 0.2}}
	require.NoError(t, m.SetStream("F1", want))

	streams, err := m.Streams()
	require.NoError(t, err)
	require.Len(t, streams, 2)
	for _, s := range streams {
		if s.Name == "F1" {
			assert.Equal(t, want, s)
		}
	}

	// Mutating the caller's composition must not reach the table.
	want.Composition["H2O"] = 0.0
	streams, err = m.Streams()
	require.NoError(t, err)
	for _, s := range streams {
		if s.Name == "F1" {
			assert.Equal(t, 0.8, s.Composition["H2O"])
		}
	}
}

func TestMockSaveRecordsPath(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Connect())

	// Without a case the requested path is all there is to report.
	saved, err := m.Save("out.bkp")
	require.NoError(t, err)
	assert.Equal(t, "out.bkp", saved)

	require.NoError(t, m.OpenCase("case.bkp"))
	saved, err = m.Save("out.bkp")
	require.NoError(t, err)
	assert.Equal(t, "case.bkp", saved)
	assert.Equal(t, "out.bkp", m.SavedTo())
}
