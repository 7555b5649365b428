package sweep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSortedUnion(t *testing.T) {
	rows := []Row{
		{"idx": 0, "tops_temp": 311.2, "converged": true},
		{"idx": 1, "error": "solver diverged"},
	}
	assert.Equal(t, []string{"converged", "error", "idx", "tops_temp"}, Header(rows))
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{"idx": 0, "temperature_set": 290.0, "converged": true},
		{"idx": 1, "error": "solver diverged"},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "converged,error,idx,temperature_set", lines[0])
	// missing columns stay empty
	assert.Equal(t, "true,,0,290", lines[1])
	assert.Equal(t, ",solver diverged,1,", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestSetColumn(t *testing.T) {
	assert.Equal(t, "temperature_set", setColumn(AxisTemperature))
	assert.Equal(t, "reflux_ratio_set", setColumn(AxisRefluxRatio))
	assert.Equal(t, "n_butane_set", setColumn(AxisNButane))
}
