package flowsheet

// Candidate relative paths for stream scalars, tried in declared order. The
// lists carry the node spellings observed across simulator releases; extend a
// list rather than branching in code when a new release moves a node.
var (
	streamTempSet = []string{
		`Input\TEMP\MIXED`,
		`Input\TEMP`,
	}
	streamPresSet = []string{
		`Input\PRES\MIXED`,
		`Input\PRES`,
	}
	streamCompFlowSet = []string{
		`Input\MOLEFLMX\%s`,
		`Input\MOLFRAC\%s`,
		`Input\%s`,
	}
	streamCompFlowGet = []string{
		`Output\MOLEFLMX\%s\MIXED`,
		`Output\MASSFLOW3\%s`,
		`Output\%s`,
	}
	streamTempGet = []string{
		`Output\TEMP_OUT\MIXED`,
		`Output\TEMP\MIXED`,
		`Output\TEMP`,
	}
	streamPresGet = []string{
		`Output\PRES_OUT\MIXED`,
		`Output\PRES\MIXED`,
		`Output\PRES`,
	}
)

// SetStreamTemperature writes a feed stream temperature in the case's units.
func (s *Sheet) SetStreamTemperature(stream string, v float64) error {
	return s.setFloat("set stream temperature", stream, streamRoot(stream), streamTempSet, v)
}

// SetStreamPressure writes a feed stream pressure in the case's units.
func (s *Sheet) SetStreamPressure(stream string, v float64) error {
	return s.setFloat("set stream pressure", stream, streamRoot(stream), streamPresSet, v)
}

// SetComponentFlow writes the flow entry for one component of a feed stream.
// The component id must be the case's own spelling (e.g. I-BUTANE).
func (s *Sheet) SetComponentFlow(stream, component string, v float64) error {
	return s.setFloat("set component flow", stream+"/"+component, streamRoot(stream),
		expand(streamCompFlowSet, component), v)
}

// ComponentFlow reads the solved flow entry for one component of a stream.
func (s *Sheet) ComponentFlow(stream, component string) (float64, error) {
	return s.getFloat("get component flow", stream+"/"+component, streamRoot(stream),
		expand(streamCompFlowGet, component))
}

// StreamTemperature reads a solved stream temperature.
func (s *Sheet) StreamTemperature(stream string) (float64, error) {
	return s.getFloat("get stream temperature", stream, streamRoot(stream), streamTempGet)
}

// StreamPressure reads a solved stream pressure.
func (s *Sheet) StreamPressure(stream string) (float64, error) {
	return s.getFloat("get stream pressure", stream, streamRoot(stream), streamPresGet)
}

func streamRoot(stream string) string {
	return `\Data\Streams\` + stream
}
