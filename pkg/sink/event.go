package sink

// Event is the record published to configured sinks after each sweep
// point finishes, whether or not it solved.
type Event struct {
	RunID   string `json:"runId"`
	RunName string `json:"runName"`
	// Index is the zero-based position of the point in the sweep grid.
	Index int `json:"index"`
	// Params holds the axis values this point was configured with.
	Params map[string]float64 `json:"params"`
	// Values holds the measured outputs, empty when the point failed.
	Values         map[string]float64 `json:"values,omitempty"`
	Converged      bool               `json:"converged"`
	ElapsedSeconds float64            `json:"elapsedSeconds"`
	// Error carries the point failure, empty on success.
	Error string `json:"error,omitempty"`
	TsMs  int64  `json:"ts_ms"`
}
