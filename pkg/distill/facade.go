package distill

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/go-playground/validator/v10"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Session states and the events that move between them. Every step except
// connect may be retried from its own destination state.
const (
	StateUninitialized = "uninitialized"
	StateConnected     = "connected"
	StateCaseLoaded    = "case_loaded"
	StateConfigured    = "configured"
	StateSolved        = "solved"
)

const (
	eventConnect   = "connect"
	eventLoad      = "load_case"
	eventConfigure = "configure"
	eventSolve     = "solve"
)

// Streams below this total molar flow are treated as empty outlets and never
// checked for product purity.
const productFlowThreshold = 1e-3

// Facade drives one column case over a flowsheet engine. It is strictly
// sequential: one engine session, no operation while a solve is outstanding.
type Facade struct {
	eng      flowsheet.Engine
	sheet    *flowsheet.Sheet
	layout   CaseLayout
	log      *zap.Logger
	validate *validator.Validate
	machine  *fsm.FSM
}

var _ API = (*Facade)(nil)

// NewFacade wraps an engine. Blank layout fields fall back to the stock
// hydrocarbon demo layout.
func NewFacade(eng flowsheet.Engine, layout CaseLayout, logger *zap.Logger) *Facade {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	f := &Facade{
		eng:      eng,
		layout:   layout.withDefaults(),
		log:      logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	f.machine = fsm.NewFSM(StateUninitialized, fsm.Events{
		{Name: eventConnect, Src: []string{StateUninitialized}, Dst: StateConnected},
		{Name: eventLoad, Src: []string{StateConnected, StateCaseLoaded, StateConfigured, StateSolved}, Dst: StateCaseLoaded},
		{Name: eventConfigure, Src: []string{StateCaseLoaded, StateConfigured, StateSolved}, Dst: StateConfigured},
		{Name: eventSolve, Src: []string{StateConfigured, StateSolved}, Dst: StateSolved},
	}, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			f.log.Debug("session state",
				zap.String("event", e.Event),
				zap.String("from", e.Src),
				zap.String("to", e.Dst))
		},
	})
	return f
}

func (l CaseLayout) withDefaults() CaseLayout {
	d := DefaultLayout()
	l.FeedStream = cmp.Or(l.FeedStream, d.FeedStream)
	l.TopsStream = cmp.Or(l.TopsStream, d.TopsStream)
	l.BottomsStream = cmp.Or(l.BottomsStream, d.BottomsStream)
	l.Block = cmp.Or(l.Block, d.Block)
	if l.Components == (PerCompound[string]{}) {
		l.Components = d.Components
	}
	return l
}

// State reports the current session state.
func (f *Facade) State() string { return f.machine.Current() }

// Layout reports the effective layout after defaulting.
func (f *Facade) Layout() CaseLayout { return f.layout }

// step runs op under the state machine: refused outright if the event is not
// allowed from the current state, and the transition only fires after op
// succeeds, so a failed step never advances the session.
func (f *Facade) step(event string, op func() error) error {
	if !f.machine.Can(event) {
		return fmt.Errorf("distill: %s in state %s: %w", event, f.machine.Current(), ErrInvalidState)
	}
	if err := op(); err != nil {
		return err
	}
	return f.fire(event)
}

func (f *Facade) fire(event string) error {
	if err := f.machine.Event(context.Background(), event); err != nil {
		var nt fsm.NoTransitionError
		if !errors.As(err, &nt) {
			return fmt.Errorf("distill: %s: %w", event, err)
		}
	}
	return nil
}

func (f *Facade) Connect() error {
	return f.step(eventConnect, func() error {
		f.sheet = flowsheet.NewSheet(f.eng)
		return nil
	})
}

func (f *Facade) LoadCase(path string) error {
	return f.step(eventLoad, func() error {
		if err := f.sheet.OpenCase(path); err != nil {
			return fmt.Errorf("distill: load case: %w", err)
		}
		f.log.Info("case loaded", zap.String("path", path))
		return nil
	})
}

func (f *Facade) SetFeed(s StreamSpec) error {
	return f.step(eventConfigure, func() error {
		feed := f.layout.FeedStream
		if err := f.sheet.SetStreamTemperature(feed, s.Temperature); err != nil {
			return fmt.Errorf("distill: set feed: %w", err)
		}
		if err := f.sheet.SetStreamPressure(feed, s.Pressure); err != nil {
			return fmt.Errorf("distill: set feed: %w", err)
		}
		flows := s.MolarFlows.Values()
		for i, id := range f.layout.Components.Values() {
			if err := f.sheet.SetComponentFlow(feed, id, flows[i]); err != nil {
				return fmt.Errorf("distill: set feed component %s: %w", id, err)
			}
		}
		return nil
	})
}

func (f *Facade) SetColumn(in ColumnInput) error {
	if err := f.validate.Struct(in); err != nil {
		return fmt.Errorf("distill: column input: %w", err)
	}
	return f.step(eventConfigure, func() error {
		b := f.layout.Block
		if err := f.sheet.SetStageCount(b, in.NStages); err != nil {
			return fmt.Errorf("distill: set column: %w", err)
		}
		if err := f.sheet.SetFeedStage(b, f.layout.FeedStream, in.FeedStage); err != nil {
			return fmt.Errorf("distill: set column: %w", err)
		}
		if err := f.sheet.SetColumnPressure(b, in.CondenserPressure); err != nil {
			return fmt.Errorf("distill: set column: %w", err)
		}
		if err := f.sheet.SetRefluxRatio(b, in.RefluxRatio); err != nil {
			return fmt.Errorf("distill: set column: %w", err)
		}
		if err := f.sheet.SetReboilRatio(b, in.ReboilRatio); err != nil {
			return fmt.Errorf("distill: set column: %w", err)
		}
		return nil
	})
}

// Solve runs the engine once. On error the session stays configured and any
// previously read outputs are stale; the returned report is the only success
// indicator.
func (f *Facade) Solve() (SolveReport, error) {
	if !f.machine.Can(eventSolve) {
		return SolveReport{}, fmt.Errorf("distill: solve in state %s: %w", f.machine.Current(), ErrInvalidState)
	}
	rep, err := f.sheet.Run()
	report := SolveReport{Converged: rep.Converged, Elapsed: rep.Elapsed}
	if err != nil {
		report.Converged = false
		f.log.Warn("solve failed", zap.Duration("elapsed", report.Elapsed), zap.Error(err))
		return report, fmt.Errorf("distill: solve: %w", err)
	}
	if err := f.fire(eventSolve); err != nil {
		return report, err
	}
	if report.Converged {
		f.log.Info("solved", zap.Duration("elapsed", report.Elapsed))
	} else {
		f.log.Warn("solve returned without convergence", zap.Duration("elapsed", report.Elapsed))
	}
	return report, nil
}

func (f *Facade) ProductStreams() (StreamSpec, StreamSpec, error) {
	if cur := f.machine.Current(); cur != StateSolved {
		return StreamSpec{}, StreamSpec{}, fmt.Errorf("distill: read products in state %s: %w", cur, ErrNotSolved)
	}
	tops, err := f.readStream(f.layout.TopsStream)
	if err != nil {
		return StreamSpec{}, StreamSpec{}, fmt.Errorf("distill: read tops: %w", err)
	}
	bottoms, err := f.readStream(f.layout.BottomsStream)
	if err != nil {
		return StreamSpec{}, StreamSpec{}, fmt.Errorf("distill: read bottoms: %w", err)
	}
	return tops, bottoms, nil
}

func (f *Facade) readStream(name string) (StreamSpec, error) {
	var s StreamSpec
	var err error
	if s.Temperature, err = f.sheet.StreamTemperature(name); err != nil {
		return StreamSpec{}, err
	}
	if s.Pressure, err = f.sheet.StreamPressure(name); err != nil {
		return StreamSpec{}, err
	}
	flows := &s.MolarFlows
	dst := []*float64{&flows.Ethane, &flows.Propane, &flows.Isobutane, &flows.NButane, &flows.Isopentane, &flows.NPentane}
	for i, id := range f.layout.Components.Values() {
		v, err := f.sheet.ComponentFlow(name, id)
		if err != nil {
			return StreamSpec{}, err
		}
		*dst[i] = v
	}
	return s, nil
}

func (f *Facade) ColumnProperties(in ColumnInput) (ColumnOutput, error) {
	if cur := f.machine.Current(); cur != StateSolved {
		return ColumnOutput{}, fmt.Errorf("distill: read column in state %s: %w", cur, ErrNotSolved)
	}
	b := f.layout.Block
	var out ColumnOutput
	var err error
	if out.CondenserDuty, err = f.sheet.CondenserDuty(b); err != nil {
		return ColumnOutput{}, fmt.Errorf("distill: read column: %w", err)
	}
	if out.ReboilerDuty, err = f.sheet.ReboilerDuty(b); err != nil {
		return ColumnOutput{}, fmt.Errorf("distill: read column: %w", err)
	}
	out.VaporFlows = f.sheet.StageVaporFlows(b, in.NStages)
	out.Temperatures = f.sheet.StageTemperatures(b, in.NStages)
	out.MolarWeights = f.sheet.StageMolarWeights(b, in.NStages)
	return out, nil
}

// ColumnCost prices the design through the engine's cost routines. Engines
// without a CostModel, and any pricing error, yield the neutral zero.
func (f *Facade) ColumnCost(feed StreamSpec, in ColumnInput, out ColumnOutput) float64 {
	cm, ok := f.eng.(CostModel)
	if !ok {
		return 0
	}
	invest, err := cm.InvestmentCost(feed, in, out)
	if err != nil {
		f.log.Debug("investment cost unavailable", zap.Error(err))
		return 0
	}
	operating, err := cm.OperatingCost(out)
	if err != nil {
		f.log.Debug("operating cost unavailable", zap.Error(err))
		return 0
	}
	return invest + operating
}

// StreamValue prices a product stream; zero when the engine has no valuation
// routine or it fails.
func (f *Facade) StreamValue(s StreamSpec, product ProductSpec) float64 {
	v, ok := f.eng.(Valuer)
	if !ok {
		return 0
	}
	value, err := v.StreamValue(s, product.Purity)
	if err != nil {
		f.log.Debug("stream value unavailable", zap.Error(err))
		return 0
	}
	return value
}

// ClassifyStream reports whether a stream meets the product purity and
// whether it leaves the process. Streams below the flow threshold are
// outlets by definition and never purity-checked.
func (f *Facade) ClassifyStream(s StreamSpec, product ProductSpec) (bool, bool) {
	total := s.TotalMolarFlow()
	var flags PerCompound[bool]
	if total > productFlowThreshold {
		if pc, ok := f.eng.(PurityChecker); ok {
			if got, err := pc.CheckPurity(s, product.Purity); err == nil {
				flags = got
			}
		}
	}
	isProduct := false
	for _, b := range flags.Values() {
		if b {
			isProduct = true
			break
		}
	}
	isOutlet := isProduct || total < productFlowThreshold
	return isProduct, isOutlet
}

// Save writes the case back out through the engine.
func (f *Facade) Save(path string) error {
	if f.sheet == nil {
		return fmt.Errorf("distill: save in state %s: %w", f.machine.Current(), ErrInvalidState)
	}
	if err := f.sheet.Save(path); err != nil {
		return fmt.Errorf("distill: save: %w", err)
	}
	return nil
}

func (f *Facade) Close() error {
	return f.eng.Close()
}
