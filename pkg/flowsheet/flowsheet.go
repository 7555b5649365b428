package flowsheet

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAutomationUnavailable is returned by engine constructors when the
	// platform lacks the vendor automation runtime. It is always surfaced at
	// construction time, never deferred.
	ErrAutomationUnavailable = errors.New("automation runtime unavailable")

	// ErrNodeNotFound is wrapped by FindNode when no node exists at a path.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoCaseOpen is returned by Run and Save before a case is opened.
	ErrNoCaseOpen = errors.New("no case open")

	// ErrEngineClosed is returned by operations issued after Close.
	ErrEngineClosed = errors.New("engine closed")
)

// Node is one scalar slot in the simulator's data tree.
type Node interface {
	Float() (float64, error)
	SetFloat(v float64) error
}

// RunReport describes one solve attempt. Elapsed is recorded whether or not
// the solve succeeded; Converged reports the outcome explicitly and is never
// inferred from output values.
type RunReport struct {
	Elapsed   time.Duration
	Converged bool
}

// Engine is a single exclusive session with the simulator. All calls are
// synchronous and must be issued sequentially from one goroutine; an engine
// is owned by exactly one client or facade for its lifetime. Close releases
// the session and must be called on every exit path.
type Engine interface {
	// OpenCase loads a saved case file. Engines backed by the real
	// simulator verify the path exists and report a path-specific error
	// before touching the vendor open routine.
	OpenCase(path string) error

	// FindNode resolves an absolute tree path to a node. A missing node is
	// reported with ErrNodeNotFound in the chain; it must never crash the
	// host process.
	FindNode(path string) (Node, error)

	// Run triggers a solve and blocks until the simulator returns control.
	// The report carries the elapsed duration even on failure.
	Run() (RunReport, error)

	// Save writes the case back to disk, to path if non-empty.
	Save(path string) error

	Close() error
}

// StreamPath builds the absolute path of a node under a named stream.
func StreamPath(stream, rel string) string {
	return `\Data\Streams\` + stream + `\` + rel
}

// BlockPath builds the absolute path of a node under a named block.
func BlockPath(block, rel string) string {
	return `\Data\Blocks\` + block + `\` + rel
}

// ResolveError reports a scalar operation whose candidate paths were all
// exhausted. It names the operation and target and lists every path tried so
// the failure can be diagnosed without re-running.
type ResolveError struct {
	Op     string
	Target string
	Tried  []string
	Last   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("flowsheet: %s %q: no usable node among %v: %v", e.Op, e.Target, e.Tried, e.Last)
}

func (e *ResolveError) Unwrap() error { return e.Last }
