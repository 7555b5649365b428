package flowsheet

import (
	"fmt"
	"strings"
)

// Sheet wraps an Engine with the stream and block accessors the rest of the
// package family is built on. It owns no state beyond the engine handle; all
// version tolerance lives in the candidate path lists declared in stream.go
// and column.go.
type Sheet struct {
	eng Engine
}

// NewSheet returns accessors over an open engine session.
func NewSheet(eng Engine) *Sheet { return &Sheet{eng: eng} }

// OpenCase, Run, Save and Close pass through to the underlying engine so one
// handle can drive a whole session.

func (s *Sheet) OpenCase(path string) error { return s.eng.OpenCase(path) }

func (s *Sheet) Run() (RunReport, error) { return s.eng.Run() }

func (s *Sheet) Save(path string) error { return s.eng.Save(path) }

func (s *Sheet) Close() error { return s.eng.Close() }

// Engine exposes the wrapped engine for callers that need raw node access.
func (s *Sheet) Engine() Engine { return s.eng }

// expand substitutes args into candidate paths. Candidates without a format
// verb are used verbatim, which lets one list mix parameterized and fixed
// fallbacks (e.g. FEED_STAGE\<feed> followed by plain FEED_STAGE).
func expand(paths []string, args ...any) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if len(args) > 0 && strings.Contains(p, "%") {
			out[i] = fmt.Sprintf(p, args...)
		} else {
			out[i] = p
		}
	}
	return out
}

// getFloat reads the first resolvable candidate under root.
func (s *Sheet) getFloat(op, target, root string, rel []string) (float64, error) {
	var last error
	tried := make([]string, 0, len(rel))
	for _, r := range rel {
		p := root + `\` + r
		tried = append(tried, p)
		n, err := s.eng.FindNode(p)
		if err != nil {
			last = err
			continue
		}
		v, err := n.Float()
		if err != nil {
			last = err
			continue
		}
		return v, nil
	}
	return 0, &ResolveError{Op: op, Target: target, Tried: tried, Last: last}
}

// setFloat writes the first resolvable candidate under root.
func (s *Sheet) setFloat(op, target, root string, rel []string, v float64) error {
	var last error
	tried := make([]string, 0, len(rel))
	for _, r := range rel {
		p := root + `\` + r
		tried = append(tried, p)
		n, err := s.eng.FindNode(p)
		if err != nil {
			last = err
			continue
		}
		if err := n.SetFloat(v); err != nil {
			last = err
			continue
		}
		return nil
	}
	return &ResolveError{Op: op, Target: target, Tried: tried, Last: last}
}
