package distill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerCompoundValuesOrder(t *testing.T) {
	p := PerCompound[float64]{Ethane: 1, Propane: 2, Isobutane: 3, NButane: 4, Isopentane: 5, NPentane: 6}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, p.Values())
}

func TestTotalMolarFlow(t *testing.T) {
	s := testFeed()
	assert.InDelta(t, 3.348, s.TotalMolarFlow(), 1e-9)
	assert.Equal(t, 0.0, StreamSpec{}.TotalMolarFlow())
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, "S1", l.FeedStream)
	assert.Equal(t, "B1", l.Block)
	assert.Equal(t, []string{"ETHANE", "PROPANE", "I-BUTANE", "N-BUTANE", "I-PENTAN", "N-PENTAN"}, l.Components.Values())
}
