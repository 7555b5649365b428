//go:build windows

package apwn

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	dispEMemberNotFound      = 0x80020003
	dispEUnknownName         = 0x80020006
	rpcECallRejected         = 0x80010001
	rpcEServerCallRetryLater = 0x8001010A
)

// Engine is a live automation session. It is bound to the OS thread of the
// goroutine that called New; drive and Close it from that goroutine.
type Engine struct {
	opts   Options
	mu     sync.Mutex
	doc    *ole.IDispatch
	tree   *ole.IDispatch
	opened bool
	closed bool
}

var _ flowsheet.Engine = (*Engine)(nil)

// New dispatches the automation document and applies the UI options. Any
// failure to stand the session up is reported immediately, wrapped with
// flowsheet.ErrAutomationUnavailable.
func New(opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("apwn: %w: initialize runtime: %v", flowsheet.ErrAutomationUnavailable, err)
	}
	unknown, err := oleutil.CreateObject(opts.ProgID)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("apwn: %w: create %s: %v", flowsheet.ErrAutomationUnavailable, opts.ProgID, err)
	}
	doc, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("apwn: %w: dispatch interface: %v", flowsheet.ErrAutomationUnavailable, err)
	}

	e := &Engine{opts: opts, doc: doc}

	// Property spellings vary by release and a refusal must not fail the
	// session, so both writes are best effort.
	if _, err := oleutil.PutProperty(doc, "Visible", opts.Visible); err != nil {
		_, _ = oleutil.PutProperty(doc, "VisibleApp", opts.Visible)
	}
	if opts.SuppressDialogs {
		_, _ = oleutil.PutProperty(doc, "SuppressDialogs", 1)
	}
	return e, nil
}

func (e *Engine) OpenCase(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return flowsheet.ErrEngineClosed
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("apwn: flowsheet file: %w", err)
	}
	var last error
	for _, m := range openMethods {
		_, err := e.call(e.doc, m, path)
		if err == nil {
			e.dropTree()
			e.opened = true
			return nil
		}
		if methodMissing(err) {
			last = err
			continue
		}
		return fmt.Errorf("apwn: open case %q via %s: %w", path, m, err)
	}
	return fmt.Errorf("apwn: open case %q: no supported open method: %v", path, last)
}

func (e *Engine) FindNode(path string) (flowsheet.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, flowsheet.ErrEngineClosed
	}
	if !e.opened {
		return nil, flowsheet.ErrNoCaseOpen
	}
	tree, err := e.treeDispatch()
	if err != nil {
		return nil, err
	}
	v, err := e.call(tree, "FindNode", path)
	if err != nil {
		return nil, fmt.Errorf("apwn: find node %q: %w", path, err)
	}
	d := v.ToIDispatch()
	if d == nil {
		return nil, fmt.Errorf("apwn: find node %q: %w", path, flowsheet.ErrNodeNotFound)
	}
	n := &comNode{eng: e, disp: d, path: path}
	runtime.SetFinalizer(n, (*comNode).release)
	return n, nil
}

// Run solves the case. The solve call itself is never busy-retried: a rejected
// call may still have started the engine, and a second one would solve twice.
func (e *Engine) Run() (flowsheet.RunReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return flowsheet.RunReport{}, flowsheet.ErrEngineClosed
	}
	if !e.opened {
		return flowsheet.RunReport{}, flowsheet.ErrNoCaseOpen
	}
	start := time.Now()
	if err := e.solve(); err != nil {
		return flowsheet.RunReport{Elapsed: time.Since(start)}, fmt.Errorf("apwn: run: %w", err)
	}
	rep := flowsheet.RunReport{Elapsed: time.Since(start), Converged: true}
	// Not every release exposes a convergence flag; absent means converged.
	if v, err := oleutil.GetProperty(e.doc, "Converged"); err == nil {
		if b, ok := v.Value().(bool); ok {
			rep.Converged = b
		}
	}
	return rep, nil
}

func (e *Engine) solve() error {
	var last error
	for _, ep := range runEntrypoints {
		disp := e.doc
		if ep[0] != "" {
			v, err := oleutil.GetProperty(e.doc, ep[0])
			if err != nil {
				last = err
				continue
			}
			if disp = v.ToIDispatch(); disp == nil {
				last = fmt.Errorf("%s is not a dispatch", ep[0])
				continue
			}
		}
		_, err := oleutil.CallMethod(disp, ep[1])
		if disp != e.doc {
			disp.Release()
		}
		if err == nil {
			return nil
		}
		if methodMissing(err) {
			last = err
			continue
		}
		return err
	}
	return fmt.Errorf("no run entrypoint on automation object: %v", last)
}

func (e *Engine) Save(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return flowsheet.ErrEngineClosed
	}
	if !e.opened {
		return flowsheet.ErrNoCaseOpen
	}
	if path != "" {
		_, err := e.call(e.doc, "SaveAs", path)
		if err == nil {
			return nil
		}
		if !methodMissing(err) {
			return fmt.Errorf("apwn: save %q: %w", path, err)
		}
	}
	if _, err := e.call(e.doc, "Save"); err != nil {
		return fmt.Errorf("apwn: save: %w", err)
	}
	return nil
}

// Close releases the document and the COM runtime. Closing twice is safe;
// errors from the document's own Close are swallowed like any teardown noise.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.opened = false
	e.dropTree()
	_, _ = oleutil.CallMethod(e.doc, "Close")
	e.doc.Release()
	e.doc = nil
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

func (e *Engine) treeDispatch() (*ole.IDispatch, error) {
	if e.tree != nil {
		return e.tree, nil
	}
	v, err := e.getProp(e.doc, "Tree")
	if err != nil {
		return nil, fmt.Errorf("apwn: data tree: %w", err)
	}
	d := v.ToIDispatch()
	if d == nil {
		return nil, fmt.Errorf("apwn: data tree: not a dispatch")
	}
	e.tree = d
	return d, nil
}

func (e *Engine) dropTree() {
	if e.tree != nil {
		e.tree.Release()
		e.tree = nil
	}
}

// call, getProp and putProp retry while the automation server rejects calls
// as busy, which happens routinely right after a solve kicks off the UI.
func (e *Engine) call(disp *ole.IDispatch, name string, args ...interface{}) (*ole.VARIANT, error) {
	var v *ole.VARIANT
	err := backoff.Retry(func() error {
		var err error
		v, err = oleutil.CallMethod(disp, name, args...)
		if err != nil && !comBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, e.newBackOff())
	return v, err
}

func (e *Engine) getProp(disp *ole.IDispatch, name string) (*ole.VARIANT, error) {
	var v *ole.VARIANT
	err := backoff.Retry(func() error {
		var err error
		v, err = oleutil.GetProperty(disp, name)
		if err != nil && !comBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, e.newBackOff())
	return v, err
}

func (e *Engine) putProp(disp *ole.IDispatch, name string, value interface{}) error {
	return backoff.Retry(func() error {
		_, err := oleutil.PutProperty(disp, name, value)
		if err != nil && !comBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, e.newBackOff())
}

func (e *Engine) newBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(e.opts.BusyBackoff), uint64(e.opts.BusyRetries))
}

type comNode struct {
	eng  *Engine
	disp *ole.IDispatch
	path string
}

func (n *comNode) Float() (float64, error) {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	v, err := n.eng.getProp(n.disp, "Value")
	if err != nil {
		return 0, fmt.Errorf("apwn: read %q: %w", n.path, err)
	}
	switch x := v.Value().(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("apwn: node %q holds %T, not a number", n.path, x)
	}
}

func (n *comNode) SetFloat(f float64) error {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	if err := n.eng.putProp(n.disp, "Value", f); err != nil {
		return fmt.Errorf("apwn: write %q: %w", n.path, err)
	}
	return nil
}

func (n *comNode) release() {
	if n.disp != nil {
		n.disp.Release()
		n.disp = nil
	}
}

func methodMissing(err error) bool {
	var oe *ole.OleError
	if errors.As(err, &oe) {
		return oe.Code() == dispEUnknownName || oe.Code() == dispEMemberNotFound
	}
	return false
}

func comBusy(err error) bool {
	var oe *ole.OleError
	if errors.As(err, &oe) {
		return oe.Code() == rpcECallRejected || oe.Code() == rpcEServerCallRetryLater
	}
	return false
}
