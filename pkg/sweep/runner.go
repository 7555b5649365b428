// Package sweep drives a distillation facade across a parameter grid and
// collects one result row per point. Points run strictly sequentially;
// the external engine holds a single case and a single solver.
package sweep

import (
	"cmp"
	"context"
	"fmt"
	"strconv"

	"github.com/distillab/aspenplus/pkg/distill"
	"github.com/distillab/aspenplus/pkg/metrics"
	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/distillab/aspenplus/pkg/util/rand"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// compKeys names the per-component row columns, in PerCompound field order.
var compKeys = []string{"ethane", "propane", "isobutane", "n_butane", "isopentane", "n_pentane"}

// Options configures a Runner.
type Options struct {
	// Feed and Column are the base specifications each point starts from.
	Feed   distill.StreamSpec
	Column distill.ColumnInput
	Axes   []Axis
	// RunID and RunName identify the run on published events and in logs;
	// generated when empty.
	RunID   string
	RunName string
	Logger  *zap.Logger
	// Sinks, when set, receives one Event per finished point.
	Sinks *sink.Manager
}

// Runner executes a sweep over one facade.
type Runner struct {
	api     distill.API
	feed    distill.StreamSpec
	column  distill.ColumnInput
	points  []Point
	runID   string
	runName string
	logger  *zap.Logger
	sinks   *sink.Manager
}

// NewRunner validates the axes and lays out the grid. Unknown or
// duplicate axis names fail here, before anything touches the engine.
func NewRunner(api distill.API, opts Options) (*Runner, error) {
	seen := make(map[string]struct{}, len(opts.Axes))
	for _, a := range opts.Axes {
		if _, ok := knownAxes[a.Name]; !ok {
			return nil, fmt.Errorf("unknown sweep axis %q", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("duplicate sweep axis %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("sweep axis %q has no values", a.Name)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Runner{
		api:     api,
		feed:    opts.Feed,
		column:  opts.Column,
		points:  Grid(opts.Axes...),
		runID:   cmp.Or(opts.RunID, uuid.NewString()),
		runName: cmp.Or(opts.RunName, rand.NewName()),
		logger:  logger,
		sinks:   opts.Sinks,
	}, nil
}

func (r *Runner) RunID() string   { return r.runID }
func (r *Runner) RunName() string { return r.runName }

// Run executes every grid point and returns one row per point, in grid
// order. A failing point contributes an error row and the sweep moves
// on; cancellation is honored between points and returns the rows
// collected so far.
func (r *Runner) Run(ctx context.Context) ([]Row, error) {
	r.logger.Info("Starting sweep",
		zap.String("runId", r.runID),
		zap.String("runName", r.runName),
		zap.Int("points", len(r.points)))

	rows := make([]Row, 0, len(r.points))
	for _, pt := range r.points {
		select {
		case <-ctx.Done():
			return rows, ctx.Err()
		default:
		}

		row, event := r.runPoint(pt)
		rows = append(rows, row)
		if r.sinks != nil {
			r.sinks.Publish(event)
		}
	}

	r.logger.Info("Sweep finished",
		zap.String("runName", r.runName),
		zap.Int("rows", len(rows)))
	return rows, nil
}

func (r *Runner) runPoint(pt Point) (Row, sink.Event) {
	event := sink.Event{
		RunID:   r.runID,
		RunName: r.runName,
		Index:   pt.Index,
		Params:  pt.Params,
	}

	feed, column := applyPoint(pt, r.feed, r.column)
	outputs, report, err := r.solvePoint(feed, column)
	event.Converged = report.Converged
	event.ElapsedSeconds = report.Elapsed.Seconds()

	if err != nil {
		metrics.SweepPoints.WithLabelValues("error").Inc()
		r.logger.Warn("Sweep point failed",
			zap.String("runName", r.runName),
			zap.Int("index", pt.Index),
			zap.Error(err))
		event.Error = err.Error()
		return Row{"idx": pt.Index, "error": err.Error()}, event
	}

	metrics.SweepPoints.WithLabelValues("ok").Inc()
	event.Values = outputs

	row := Row{
		"idx":             pt.Index,
		"elapsed_seconds": report.Elapsed.Seconds(),
		"converged":       report.Converged,
	}
	for name, v := range pt.Params {
		row[setColumn(name)] = v
	}
	for k, v := range outputs {
		row[k] = v
	}
	return row, event
}

// solvePoint runs one configure-solve-read cycle against the facade.
func (r *Runner) solvePoint(feed distill.StreamSpec, column distill.ColumnInput) (map[string]float64, distill.SolveReport, error) {
	if err := r.api.SetFeed(feed); err != nil {
		return nil, distill.SolveReport{}, err
	}
	if err := r.api.SetColumn(column); err != nil {
		return nil, distill.SolveReport{}, err
	}

	report, err := r.api.Solve()
	metrics.Solves.WithLabelValues(strconv.FormatBool(report.Converged)).Inc()
	if err != nil {
		return nil, report, err
	}
	metrics.SolveDuration.Observe(report.Elapsed.Seconds())

	tops, bottoms, err := r.api.ProductStreams()
	if err != nil {
		return nil, report, err
	}
	props, err := r.api.ColumnProperties(column)
	if err != nil {
		return nil, report, err
	}

	outputs := map[string]float64{
		"tops_temp":     tops.Temperature,
		"tops_pressure": tops.Pressure,
		"bots_temp":     bottoms.Temperature,
		"bots_pressure": bottoms.Pressure,
		"cond_duty":     props.CondenserDuty,
		"reb_duty":      props.ReboilerDuty,
	}
	for i, v := range tops.MolarFlows.Values() {
		outputs["tops_"+compKeys[i]] = v
	}
	for i, v := range bottoms.MolarFlows.Values() {
		outputs["bots_"+compKeys[i]] = v
	}
	return outputs, report, nil
}

// applyPoint overlays one point's parameters on copies of the base specs.
func applyPoint(pt Point, feed distill.StreamSpec, column distill.ColumnInput) (distill.StreamSpec, distill.ColumnInput) {
	for name, v := range pt.Params {
		switch name {
		case AxisTemperature:
			feed.Temperature = v
		case AxisPressure:
			feed.Pressure = v
		case AxisRefluxRatio:
			column.RefluxRatio = v
		case AxisReboilRatio:
			column.ReboilRatio = v
		case AxisEthane:
			feed.MolarFlows.Ethane = v
		case AxisPropane:
			feed.MolarFlows.Propane = v
		case AxisIsobutane:
			feed.MolarFlows.Isobutane = v
		case AxisNButane:
			feed.MolarFlows.NButane = v
		case AxisIsopentane:
			feed.MolarFlows.Isopentane = v
		case AxisNPentane:
			feed.MolarFlows.NPentane = v
		}
	}
	return feed, column
}
