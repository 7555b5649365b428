package flowsheet

import "strconv"

// DemoComponents are the case spellings of the six-component hydrocarbon
// model, in volatility order.
var DemoComponents = []string{"ETHANE", "PROPANE", "I-BUTANE", "N-BUTANE", "I-PENTAN", "N-PENTAN"}

// Fixed solved values the demo column case reports.
const (
	DemoTopsTemperature    = 311.2
	DemoBottomsTemperature = 341.8
	DemoCasePressure       = 17.4
	DemoCondenserDuty      = -1.24e6
	DemoReboilerDuty       = 1.31e6
)

// Per-component solved product flows, parallel to DemoComponents.
var (
	DemoTopsFlows    = []float64{0.016, 1.092, 0.610, 0.120, 0.002, 0.0}
	DemoBottomsFlows = []float64{0.001, 0.018, 0.588, 0.396, 0.332, 0.173}
)

// Per-stage profile values, stages numbered from 1.
func DemoStageTemperature(i int) float64 { return 290 + 1.2*float64(i) }

func DemoStageMolarWeight(i int) float64 { return 44 + 2*float64(i) }

func DemoStageVaporFlow(i int) float64 { return 1.6 - 0.01*float64(i) }

// DemoColumnCase returns a MemEngine preloaded with every node the column
// facade touches for the stock S1/S2/S3/B1 layout: writable feed and column
// inputs, solved product streams, duties, and nStages of each profile. The
// case is not opened; callers drive OpenCase themselves. It backs tests and
// the mock backend of the CLI.
func DemoColumnCase(nStages int) *MemEngine {
	eng := NewMemEngine()

	eng.Preload(StreamPath("S1", `Input\TEMP\MIXED`), 0)
	eng.Preload(StreamPath("S1", `Input\PRES\MIXED`), 0)
	for _, id := range DemoComponents {
		eng.Preload(StreamPath("S1", `Input\MOLEFLMX\`+id), 0)
	}

	eng.Preload(BlockPath("B1", `Input\NSTAGE`), 0)
	eng.Preload(BlockPath("B1", `Input\FEED_STAGE\S1`), 0)
	eng.Preload(BlockPath("B1", `Input\PRES1`), 0)
	eng.Preload(BlockPath("B1", `Input\BASIS_RR`), 0)
	eng.Preload(BlockPath("B1", `Input\BASIS_BR`), 0)

	eng.Preload(StreamPath("S2", `Output\TEMP_OUT\MIXED`), DemoTopsTemperature)
	eng.Preload(StreamPath("S2", `Output\PRES_OUT\MIXED`), DemoCasePressure)
	eng.Preload(StreamPath("S3", `Output\TEMP_OUT\MIXED`), DemoBottomsTemperature)
	eng.Preload(StreamPath("S3", `Output\PRES_OUT\MIXED`), DemoCasePressure)
	for i, id := range DemoComponents {
		eng.Preload(StreamPath("S2", `Output\MOLEFLMX\`+id+`\MIXED`), DemoTopsFlows[i])
		eng.Preload(StreamPath("S3", `Output\MOLEFLMX\`+id+`\MIXED`), DemoBottomsFlows[i])
	}

	eng.Preload(BlockPath("B1", `Output\COND_DUTY\MIXED`), DemoCondenserDuty)
	eng.Preload(BlockPath("B1", `Output\REB_DUTY\MIXED`), DemoReboilerDuty)
	for i := 1; i <= nStages; i++ {
		eng.Preload(BlockPath("B1", demoStagePath("MW", i)), DemoStageMolarWeight(i))
		eng.Preload(BlockPath("B1", demoStagePath("TEMP", i)), DemoStageTemperature(i))
		eng.Preload(BlockPath("B1", demoStagePath("VAPOR", i)), DemoStageVaporFlow(i))
	}
	return eng
}

func demoStagePath(kind string, i int) string {
	return `Output\STAGE\` + kind + `\` + strconv.Itoa(i)
}
