package sim

import (
	"fmt"

	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/distillab/aspenplus/pkg/flowsheet/apwn"
	"go.uber.org/zap"
)

// Automation drives a live simulator session through the flowsheet accessor
// layer. The session is created at Connect, not construction, so a client can
// be built anywhere and only fails on machines without the runtime when it is
// actually used.
type Automation struct {
	opts  Options
	log   *zap.Logger
	sheet *flowsheet.Sheet
}

var _ Backend = (*Automation)(nil)

// NewAutomation returns an unconnected automation backend.
func NewAutomation(opts Options) *Automation {
	if opts.Logger == nil {
		opts.Logger, _ = zap.NewProduction()
	}
	if len(opts.ProbeStreams) == 0 {
		opts.ProbeStreams = []string{"F1", "F2", "S1", "S2", "S3"}
	}
	if len(opts.ProbeComponents) == 0 {
		opts.ProbeComponents = []string{"ETHANE"}
	}
	return &Automation{opts: opts, log: opts.Logger}
}

func (a *Automation) Connect() error {
	if a.sheet != nil {
		return nil
	}
	eng := a.opts.Engine
	if eng == nil {
		var err error
		eng, err = apwn.New(apwn.Options{
			ProgID:          a.opts.ProgID,
			Visible:         a.opts.Visible,
			SuppressDialogs: a.opts.SuppressDialogs,
		})
		if err != nil {
			return fmt.Errorf("sim: connect: %w", err)
		}
	}
	a.sheet = flowsheet.NewSheet(eng)
	if a.opts.CasePath != "" {
		if err := a.sheet.OpenCase(a.opts.CasePath); err != nil {
			a.sheet = nil
			if cerr := eng.Close(); cerr != nil {
				a.log.Warn("closing engine after failed open", zap.Error(cerr))
			}
			return fmt.Errorf("sim: open default case: %w", err)
		}
	}
	return nil
}

func (a *Automation) OpenCase(path string) error {
	if a.sheet == nil {
		return ErrNotConnected
	}
	if err := a.sheet.OpenCase(path); err != nil {
		return fmt.Errorf("sim: open case: %w", err)
	}
	return nil
}

func (a *Automation) Run() error {
	if a.sheet == nil {
		return ErrNotConnected
	}
	rep, err := a.sheet.Run()
	if err != nil {
		return fmt.Errorf("sim: run: %w", err)
	}
	if !rep.Converged {
		a.log.Warn("solve finished without convergence", zap.Duration("elapsed", rep.Elapsed))
	} else {
		a.log.Debug("solve finished", zap.Duration("elapsed", rep.Elapsed))
	}
	return nil
}

// Streams probes the configured stream names and reports every one that
// resolves at least one field. Unresolvable names are skipped, not errors:
// the probe list is a guess about the open case, not a promise.
func (a *Automation) Streams() ([]Stream, error) {
	if a.sheet == nil {
		return nil, ErrNotConnected
	}
	streams := make([]Stream, 0, len(a.opts.ProbeStreams))
	for _, name := range a.opts.ProbeStreams {
		s := Stream{Name: name}
		found := false
		if t, err := a.sheet.StreamTemperature(name); err == nil {
			s.Temperature = &t
			found = true
		}
		if p, err := a.sheet.StreamPressure(name); err == nil {
			s.Pressure = &p
			found = true
		}
		comp := map[string]float64{}
		for _, c := range a.opts.ProbeComponents {
			if v, err := a.sheet.ComponentFlow(name, c); err == nil {
				comp[c] = v
			}
		}
		if len(comp) > 0 {
			s.Composition = comp
			for _, v := range comp {
				s.Flow += v
			}
			found = true
		}
		if found {
			streams = append(streams, s)
		}
	}
	return streams, nil
}

// SetStream writes temperature, pressure and composition entries. A failed
// temperature or pressure write is an error; a component the case does not
// carry is skipped so partial compositions can be applied to any stream.
func (a *Automation) SetStream(name string, s Stream) error {
	if a.sheet == nil {
		return ErrNotConnected
	}
	if s.Temperature != nil {
		if err := a.sheet.SetStreamTemperature(name, *s.Temperature); err != nil {
			return fmt.Errorf("sim: set stream: %w", err)
		}
	}
	if s.Pressure != nil {
		if err := a.sheet.SetStreamPressure(name, *s.Pressure); err != nil {
			return fmt.Errorf("sim: set stream: %w", err)
		}
	}
	for c, v := range s.Composition {
		if err := a.sheet.SetComponentFlow(name, c, v); err != nil {
			a.log.Debug("skipping component not in case",
				zap.String("stream", name),
				zap.String("component", c),
				zap.Error(err))
		}
	}
	return nil
}

// Save writes the case via SaveAs when a path is given, in place otherwise.
// The reported path is empty for an in-place save.
func (a *Automation) Save(path string) (string, error) {
	if a.sheet == nil {
		return "", ErrNotConnected
	}
	if err := a.sheet.Save(path); err != nil {
		return "", fmt.Errorf("sim: save: %w", err)
	}
	return path, nil
}

func (a *Automation) Close() error {
	if a.sheet == nil {
		return nil
	}
	err := a.sheet.Close()
	a.sheet = nil
	return err
}

// Sheet exposes the accessor layer for callers needing column-level access
// on the same session. Nil before Connect.
func (a *Automation) Sheet() *flowsheet.Sheet { return a.sheet }
