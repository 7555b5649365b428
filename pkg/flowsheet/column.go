package flowsheet

// Candidate relative paths for column block scalars. CONDENER_DUTY is the
// vendor's spelling, not ours.
var (
	colStagesSet = []string{
		`Input\NSTAGE`,
	}
	colFeedStageSet = []string{
		`Input\FEED_STAGE\%s`,
		`Input\FEED_STAGE`,
	}
	colPressureSet = []string{
		`Input\PRES1`,
		`Input\PRES`,
	}
	colRefluxSet = []string{
		`Input\BASIS_RR`,
		`Input\REFLUX`,
	}
	colReboilSet = []string{
		`Input\BASIS_BR`,
		`Input\REBOILER`,
	}
	colCondenserDutyGet = []string{
		`Output\COND_DUTY\MIXED`,
		`Output\CONDENER_DUTY`,
	}
	colReboilerDutyGet = []string{
		`Output\REB_DUTY\MIXED`,
		`Output\REBOILER_DUTY`,
	}
	stageMolarWeightGet = []string{
		`Output\STAGE\MW\%d`,
	}
	stageTemperatureGet = []string{
		`Output\STAGE\TEMP\%d`,
	}
	stageVaporFlowGet = []string{
		`Output\STAGE\VAPOR\%d`,
	}
)

// SetStageCount writes the number of theoretical stages of a column block.
func (s *Sheet) SetStageCount(block string, n int) error {
	return s.setFloat("set stage count", block, blockRoot(block), colStagesSet, float64(n))
}

// SetFeedStage writes the stage a feed stream enters the column at. Older
// cases key the node by feed name, newer ones carry a single unkeyed node.
func (s *Sheet) SetFeedStage(block, feed string, stage int) error {
	return s.setFloat("set feed stage", block+"/"+feed, blockRoot(block),
		expand(colFeedStageSet, feed), float64(stage))
}

// SetColumnPressure writes the condenser (stage 1) pressure of a column.
func (s *Sheet) SetColumnPressure(block string, v float64) error {
	return s.setFloat("set column pressure", block, blockRoot(block), colPressureSet, v)
}

// SetRefluxRatio writes the molar reflux ratio of a column.
func (s *Sheet) SetRefluxRatio(block string, v float64) error {
	return s.setFloat("set reflux ratio", block, blockRoot(block), colRefluxSet, v)
}

// SetReboilRatio writes the molar boilup ratio of a column.
func (s *Sheet) SetReboilRatio(block string, v float64) error {
	return s.setFloat("set reboil ratio", block, blockRoot(block), colReboilSet, v)
}

// CondenserDuty reads the solved condenser heat duty of a column.
func (s *Sheet) CondenserDuty(block string) (float64, error) {
	return s.getFloat("get condenser duty", block, blockRoot(block), colCondenserDutyGet)
}

// ReboilerDuty reads the solved reboiler heat duty of a column.
func (s *Sheet) ReboilerDuty(block string) (float64, error) {
	return s.getFloat("get reboiler duty", block, blockRoot(block), colReboilerDutyGet)
}

// StageMolarWeights reads the per-stage molar weight profile of a column.
// Stages are numbered from 1; a stage whose nodes cannot be resolved reports
// zero so the profile always has exactly n entries.
func (s *Sheet) StageMolarWeights(block string, n int) []float64 {
	return s.stageProfile("get stage molar weight", block, stageMolarWeightGet, n)
}

// StageTemperatures reads the per-stage temperature profile of a column.
func (s *Sheet) StageTemperatures(block string, n int) []float64 {
	return s.stageProfile("get stage temperature", block, stageTemperatureGet, n)
}

// StageVaporFlows reads the per-stage vapor flow profile of a column.
func (s *Sheet) StageVaporFlows(block string, n int) []float64 {
	return s.stageProfile("get stage vapor flow", block, stageVaporFlowGet, n)
}

func (s *Sheet) stageProfile(op, block string, rel []string, n int) []float64 {
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		v, err := s.getFloat(op, block, blockRoot(block), expand(rel, i))
		if err != nil {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func blockRoot(block string) string {
	return `\Data\Blocks\` + block
}
