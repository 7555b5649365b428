package distill

// PerCompound holds one value per component of the fixed six-component
// hydrocarbon model, in volatility order. The same shape carries molar flows
// (float64), case component identifiers (string) and purity flags (bool).
type PerCompound[T any] struct {
	Ethane     T `json:"ethane" mapstructure:"ethane"`
	Propane    T `json:"propane" mapstructure:"propane"`
	Isobutane  T `json:"isobutane" mapstructure:"isobutane"`
	NButane    T `json:"n_butane" mapstructure:"n_butane"`
	Isopentane T `json:"isopentane" mapstructure:"isopentane"`
	NPentane   T `json:"n_pentane" mapstructure:"n_pentane"`
}

// Values returns the six entries in volatility order.
func (p PerCompound[T]) Values() []T {
	return []T{p.Ethane, p.Propane, p.Isobutane, p.NButane, p.Isopentane, p.NPentane}
}

// StreamSpec is an immutable feed or product stream: temperature, pressure
// and the six molar flows, in whatever units the open case uses.
type StreamSpec struct {
	Temperature float64              `json:"temperature" mapstructure:"temperature"`
	Pressure    float64              `json:"pressure" mapstructure:"pressure"`
	MolarFlows  PerCompound[float64] `json:"molar_flows" mapstructure:"molar_flows"`
}

// TotalMolarFlow is the sum of the six component flows.
func (s StreamSpec) TotalMolarFlow() float64 {
	var sum float64
	for _, v := range s.MolarFlows.Values() {
		sum += v
	}
	return sum
}

// ColumnInput specifies the column before a solve.
type ColumnInput struct {
	NStages           int     `json:"n_stages" mapstructure:"n_stages" validate:"required,gte=3"`
	FeedStage         int     `json:"feed_stage" mapstructure:"feed_stage" validate:"required,gt=0,ltefield=NStages"`
	RefluxRatio       float64 `json:"reflux_ratio" mapstructure:"reflux_ratio" validate:"gt=0"`
	ReboilRatio       float64 `json:"reboil_ratio" mapstructure:"reboil_ratio" validate:"gt=0"`
	CondenserPressure float64 `json:"condenser_pressure" mapstructure:"condenser_pressure" validate:"gt=0"`
}

// ColumnOutput holds the solved duties and per-stage profiles. Every profile
// has exactly NStages entries; a stage the case could not resolve reads 0.
type ColumnOutput struct {
	CondenserDuty float64   `json:"condenser_duty"`
	ReboilerDuty  float64   `json:"reboiler_duty"`
	VaporFlows    []float64 `json:"vapor_flow_per_stage"`
	Temperatures  []float64 `json:"temperature_per_stage"`
	MolarWeights  []float64 `json:"molar_weight_per_stage"`
}

// ProductSpec is the purity a stream must meet to count as product.
type ProductSpec struct {
	Purity float64 `json:"purity" mapstructure:"purity"`
}

// CaseLayout names the flowsheet objects the facade drives: the feed and
// product streams, the column block, and the case's spelling of each logical
// component.
type CaseLayout struct {
	FeedStream    string              `json:"feed_stream" mapstructure:"feed_stream"`
	TopsStream    string              `json:"tops_stream" mapstructure:"tops_stream"`
	BottomsStream string              `json:"bottoms_stream" mapstructure:"bottoms_stream"`
	Block         string              `json:"block" mapstructure:"block"`
	Components    PerCompound[string] `json:"components" mapstructure:"components"`
}

// DefaultLayout matches the stock hydrocarbon demo case.
func DefaultLayout() CaseLayout {
	return CaseLayout{
		FeedStream:    "S1",
		TopsStream:    "S2",
		BottomsStream: "S3",
		Block:         "B1",
		Components: PerCompound[string]{
			Ethane:     "ETHANE",
			Propane:    "PROPANE",
			Isobutane:  "I-BUTANE",
			NButane:    "N-BUTANE",
			Isopentane: "I-PENTAN",
			NPentane:   "N-PENTAN",
		},
	}
}

// Optional model capabilities. Engines may implement any of these; the
// facade type-asserts for them and substitutes neutral defaults when absent.

// CostModel prices a column design.
type CostModel interface {
	InvestmentCost(feed StreamSpec, in ColumnInput, out ColumnOutput) (float64, error)
	OperatingCost(out ColumnOutput) (float64, error)
}

// Valuer prices a product stream against a purity target.
type Valuer interface {
	StreamValue(s StreamSpec, purity float64) (float64, error)
}

// PurityChecker reports which components meet a purity target in a stream.
type PurityChecker interface {
	CheckPurity(s StreamSpec, purity float64) (PerCompound[bool], error)
}
