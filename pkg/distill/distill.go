// Package distill is the normalized-parameter layer for a single distillation
// column: a fixed six-component feed, a column specification, and typed
// outputs, translated into the primitive node reads and writes of
// pkg/flowsheet. A small state machine enforces the session order (connect,
// load a case, configure, solve) so stale outputs can never be read as fresh.
package distill

import (
	"errors"
	"time"
)

var (
	// ErrInvalidState is returned when an operation is fired from a state
	// that does not allow it, e.g. solving before the column is configured.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrNotSolved is returned by output reads before a solve has returned
	// on the current configuration.
	ErrNotSolved = errors.New("case not solved")
)

// SolveReport is the explicit outcome of one solve. Converged is the
// authoritative success indicator; callers must not infer success from
// output values.
type SolveReport struct {
	Converged bool          `json:"converged"`
	Elapsed   time.Duration `json:"elapsed"`
}

// API is the capability set of the column facade. Implementations are
// interchangeable as long as they keep the session order: output reads are
// only valid after a solve on the current configuration.
type API interface {
	// Connect acquires the engine session.
	Connect() error

	// LoadCase opens a case file. Allowed any time after Connect;
	// reloading resets configuration.
	LoadCase(path string) error

	// SetFeed writes the feed stream's temperature, pressure and the six
	// component molar flows.
	SetFeed(s StreamSpec) error

	// SetColumn validates and writes the column specification.
	SetColumn(in ColumnInput) error

	// Solve triggers one solve, no implicit retry. An error leaves the
	// facade configured and prior outputs stale.
	Solve() (SolveReport, error)

	// ProductStreams reads the solved tops and bottoms streams.
	ProductStreams() (tops, bottoms StreamSpec, err error)

	// ColumnProperties reads duties and the per-stage profiles for the
	// given stage count.
	ColumnProperties(in ColumnInput) (ColumnOutput, error)

	// ColumnCost prices the column; zero when the model carries no cost
	// routines.
	ColumnCost(feed StreamSpec, in ColumnInput, out ColumnOutput) float64

	// StreamValue prices a product stream; zero when the model carries no
	// valuation routine.
	StreamValue(s StreamSpec, product ProductSpec) float64

	// ClassifyStream reports whether a stream meets the product purity
	// and whether it leaves the process as an outlet.
	ClassifyStream(s StreamSpec, product ProductSpec) (isProduct, isOutlet bool)

	// Close releases the engine session.
	Close() error
}
