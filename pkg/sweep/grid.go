package sweep

// Axis is one swept parameter: a recognized name and the values to try.
type Axis struct {
	Name   string    `json:"name" mapstructure:"name"`
	Values []float64 `json:"values" mapstructure:"values"`
}

// Point is one grid entry.
type Point struct {
	Index  int
	Params map[string]float64
}

// Recognized axis names. The first four target the feed and column
// specifications, the rest the per-component feed flows.
const (
	AxisTemperature = "TEMPERATURE"
	AxisPressure    = "PRESSURE"
	AxisRefluxRatio = "REFLUX_RATIO"
	AxisReboilRatio = "REBOIL_RATIO"
	AxisEthane      = "ETHANE"
	AxisPropane     = "PROPANE"
	AxisIsobutane   = "ISOBUTANE"
	AxisNButane     = "N_BUTANE"
	AxisIsopentane  = "ISOPENTANE"
	AxisNPentane    = "N_PENTANE"
)

var knownAxes = map[string]struct{}{
	AxisTemperature: {},
	AxisPressure:    {},
	AxisRefluxRatio: {},
	AxisReboilRatio: {},
	AxisEthane:      {},
	AxisPropane:     {},
	AxisIsobutane:   {},
	AxisNButane:     {},
	AxisIsopentane:  {},
	AxisNPentane:    {},
}

// Grid returns the Cartesian product of the axes in row-major order,
// the last axis varying fastest. Point indices are assigned in that
// order and stay stable for a given axis list.
func Grid(axes ...Axis) []Point {
	if len(axes) == 0 {
		return nil
	}

	total := 1
	for _, a := range axes {
		total *= len(a.Values)
	}
	if total == 0 {
		return nil
	}

	points := make([]Point, 0, total)
	cursor := make([]int, len(axes))
	for i := 0; i < total; i++ {
		params := make(map[string]float64, len(axes))
		for j, a := range axes {
			params[a.Name] = a.Values[cursor[j]]
		}
		points = append(points, Point{Index: i, Params: params})

		for j := len(axes) - 1; j >= 0; j-- {
			cursor[j]++
			if cursor[j] < len(axes[j].Values) {
				break
			}
			cursor[j] = 0
		}
	}
	return points
}
