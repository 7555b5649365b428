//go:build !windows

package apwn

import (
	"fmt"
	"runtime"

	"github.com/distillab/aspenplus/pkg/flowsheet"
)

// Engine is a placeholder on platforms without the automation runtime. New
// never hands one out, so its methods exist only to satisfy the interface.
type Engine struct{}

var _ flowsheet.Engine = (*Engine)(nil)

// New fails fast so misconfiguration surfaces at construction, not at the
// first node access deep inside a sweep.
func New(Options) (*Engine, error) {
	return nil, fmt.Errorf("apwn: %w: requires Windows, running on %s", flowsheet.ErrAutomationUnavailable, runtime.GOOS)
}

func (*Engine) OpenCase(string) error { return flowsheet.ErrAutomationUnavailable }

func (*Engine) FindNode(string) (flowsheet.Node, error) {
	return nil, flowsheet.ErrAutomationUnavailable
}

func (*Engine) Run() (flowsheet.RunReport, error) {
	return flowsheet.RunReport{}, flowsheet.ErrAutomationUnavailable
}

func (*Engine) Save(string) error { return flowsheet.ErrAutomationUnavailable }

func (*Engine) Close() error { return nil }
