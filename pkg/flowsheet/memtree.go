package flowsheet

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemEngine is an in-memory Engine backed by a nested map tree. It mirrors
// the hierarchical layout of a real case closely enough for the accessor and
// facade layers to run unmodified in tests and offline demos: nodes are
// resolved strictly, so a path that was never seeded fails with
// ErrNodeNotFound exactly like an absent node in a live session.
type MemEngine struct {
	mu     sync.Mutex
	tree   map[string]any
	opened bool
	closed bool
	runs   int
	run    func(n int) (converged bool, err error)
	writes []string

	casePath string
	savedTo  string
}

var _ Engine = (*MemEngine)(nil)

// NewMemEngine returns an engine with an empty tree and no case open.
func NewMemEngine() *MemEngine {
	return &MemEngine{tree: map[string]any{}}
}

// Preload creates every map along path and sets the leaf value. Call it any
// number of times to shape the tree before or after OpenCase.
func (e *MemEngine) Preload(path string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	segs := splitPath(path)
	m := e.tree
	for _, s := range segs[:len(segs)-1] {
		next, ok := m[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[s] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = v
}

// ScriptRun installs the behavior of subsequent Run calls. fn receives the
// 1-based run ordinal; returning an error makes Run fail, and the converged
// flag is passed through in the report. Without a script every run converges.
func (e *MemEngine) ScriptRun(fn func(n int) (converged bool, err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.run = fn
}

// Runs reports how many times Run has been called.
func (e *MemEngine) Runs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

// Writes reports every node path written through SetFloat, in order. Tests
// use it to see which candidate path an operation settled on.
func (e *MemEngine) Writes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.writes))
	copy(out, e.writes)
	return out
}

// CasePath reports the path passed to the last OpenCase.
func (e *MemEngine) CasePath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.casePath
}

// SavedTo reports the path passed to the last Save.
func (e *MemEngine) SavedTo() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.savedTo
}

func (e *MemEngine) OpenCase(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.opened = true
	e.casePath = path
	return nil
}

func (e *MemEngine) FindNode(path string) (Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, fmt.Errorf("flowsheet: find node %q: %w", path, ErrNodeNotFound)
	}
	m := e.tree
	for _, s := range segs[:len(segs)-1] {
		next, ok := m[s].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("flowsheet: find node %q: %w", path, ErrNodeNotFound)
		}
		m = next
	}
	key := segs[len(segs)-1]
	if _, ok := m[key]; !ok {
		return nil, fmt.Errorf("flowsheet: find node %q: %w", path, ErrNodeNotFound)
	}
	return &memNode{eng: e, m: m, key: key, path: path}, nil
}

func (e *MemEngine) Run() (RunReport, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return RunReport{}, ErrEngineClosed
	}
	if !e.opened {
		e.mu.Unlock()
		return RunReport{}, ErrNoCaseOpen
	}
	e.runs++
	n := e.runs
	fn := e.run
	e.mu.Unlock()

	start := time.Now()
	converged := true
	if fn != nil {
		var err error
		converged, err = fn(n)
		if err != nil {
			return RunReport{Elapsed: time.Since(start)}, err
		}
	}
	return RunReport{Elapsed: time.Since(start), Converged: converged}, nil
}

func (e *MemEngine) Save(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	if !e.opened {
		return ErrNoCaseOpen
	}
	e.savedTo = path
	return nil
}

// Close marks the engine closed. It is safe to call more than once.
func (e *MemEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.opened = false
	return nil
}

type memNode struct {
	eng  *MemEngine
	m    map[string]any
	key  string
	path string
}

func (n *memNode) Float() (float64, error) {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	switch v := n.m[n.key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("flowsheet: node %q holds %T, not a number", n.path, v)
	}
}

func (n *memNode) SetFloat(v float64) error {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()
	n.m[n.key] = v
	n.eng.writes = append(n.eng.writes, n.path)
	return nil
}

func splitPath(path string) []string {
	parts := strings.Split(path, `\`)
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
