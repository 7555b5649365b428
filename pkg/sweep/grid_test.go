package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridRowMajorOrder(t *testing.T) {
	points := Grid(
		Axis{Name: AxisTemperature, Values: []float64{290, 300, 320}},
		Axis{Name: AxisRefluxRatio, Values: []float64{0.8, 1.0, 1.5}},
	)
	require.Len(t, points, 9)

	// last axis varies fastest
	assert.Equal(t, map[string]float64{AxisTemperature: 290, AxisRefluxRatio: 0.8}, points[0].Params)
	assert.Equal(t, map[string]float64{AxisTemperature: 290, AxisRefluxRatio: 1.0}, points[1].Params)
	assert.Equal(t, map[string]float64{AxisTemperature: 290, AxisRefluxRatio: 1.5}, points[2].Params)
	assert.Equal(t, map[string]float64{AxisTemperature: 300, AxisRefluxRatio: 0.8}, points[3].Params)
	assert.Equal(t, map[string]float64{AxisTemperature: 320, AxisRefluxRatio: 1.5}, points[8].Params)

	for i, pt := range points {
		assert.Equal(t, i, pt.Index)
	}
}

func TestGridSingleAxis(t *testing.T) {
	points := Grid(Axis{Name: AxisPressure, Values: []float64{17.4}})
	require.Len(t, points, 1)
	assert.Equal(t, map[string]float64{AxisPressure: 17.4}, points[0].Params)
}

func TestGridDegenerate(t *testing.T) {
	assert.Nil(t, Grid())
	assert.Nil(t, Grid(Axis{Name: AxisTemperature}))
}
