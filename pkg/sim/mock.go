package sim

import "sync"

// Mock is the in-memory backend. OpenCase resets the stream table to a fixed
// two-entry fixture so tests start from a known state regardless of what ran
// before.
type Mock struct {
	mu        sync.Mutex
	connected bool
	casePath  string
	savedTo   string
	streams   map[string]Stream
}

var _ Backend = (*Mock)(nil)

// NewMock returns a disconnected mock backend.
func NewMock() *Mock {
	return &Mock{}
}

func fixtureStreams() map[string]Stream {
	return map[string]Stream{
		"F1": {Name: "F1", Flow: 100.0, Temperature: f64(300.0), Pressure: f64(101325.0), Composition: map[string]float64{"H2O": 1.0}},
		"F2": {Name: "F2", Flow: 50.0, Temperature: f64(310.0), Pressure: f64(101325.0), Composition: map[string]float64{"Ethanol": 1.0}},
	}
}

func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *Mock) OpenCase(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.casePath = path
	m.streams = fixtureStreams()
	return nil
}

// Run is a no-op solve; it only requires a connected backend.
func (m *Mock) Run() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	return nil
}

func (m *Mock) Streams() ([]Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, ErrNotConnected
	}
	if m.streams == nil {
		return nil, ErrNoCase
	}
	out := make([]Stream, 0, len(m.streams))
	for _, s := range m.streams {
		out = append(out, copyStream(s))
	}
	return out, nil
}

func (m *Mock) SetStream(name string, s Stream) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	if m.streams == nil {
		return ErrNoCase
	}
	m.streams[name] = copyStream(s)
	return nil
}

// Save records the requested path and reports where the case lives: the open
// case path when one is loaded, otherwise the requested path.
func (m *Mock) Save(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return "", ErrNotConnected
	}
	m.savedTo = path
	if m.casePath != "" {
		return m.casePath, nil
	}
	return path, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// CasePath reports the path passed to the last OpenCase.
func (m *Mock) CasePath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.casePath
}

// SavedTo reports the path passed to the last Save.
func (m *Mock) SavedTo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.savedTo
}

// copyStream detaches the composition map so table entries never alias
// caller-owned memory.
func copyStream(s Stream) Stream {
	if s.Composition != nil {
		comp := make(map[string]float64, len(s.Composition))
		for k, v := range s.Composition {
			comp[k] = v
		}
		s.Composition = comp
	}
	return s
}

func f64(v float64) *float64 { return &v }
