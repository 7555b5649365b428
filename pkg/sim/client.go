package sim

import (
	"fmt"

	"github.com/distillab/aspenplus/pkg/flowsheet"
	"go.uber.org/zap"
)

// Backend kinds accepted by NewClient.
const (
	BackendCOM  = "com"
	BackendMock = "mock"
)

// Options configure a client and its backend. The zero value plus a kind is
// enough for the mock; the automation backend reads the rest.
type Options struct {
	// ProgID overrides the automation class for the COM backend.
	ProgID string

	// CasePath, when set, is opened during Connect.
	CasePath string

	Visible         bool
	SuppressDialogs bool

	// ProbeStreams and ProbeComponents drive the automation backend's
	// best-effort Streams read. Defaults cover the common demo cases.
	ProbeStreams    []string
	ProbeComponents []string

	// Engine overrides the COM dispatch with a caller-supplied engine,
	// usually a flowsheet.MemEngine in tests.
	Engine flowsheet.Engine

	Logger *zap.Logger
}

// Client wraps one backend behind the shared capability set.
type Client struct {
	backend Backend
	log     *zap.Logger
}

// NewClient builds a client for the named backend kind.
func NewClient(kind string, opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log, _ = zap.NewProduction()
		opts.Logger = log
	}
	var b Backend
	switch kind {
	case BackendMock:
		b = NewMock()
	case BackendCOM:
		b = NewAutomation(opts)
	default:
		return nil, fmt.Errorf("sim: %w %q: choose %q or %q", ErrUnknownBackend, kind, BackendCOM, BackendMock)
	}
	return &Client{backend: b, log: log}, nil
}

// Wrap exposes an existing backend through a client, mainly for tests.
func Wrap(b Backend, logger *zap.Logger) *Client {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Client{backend: b, log: logger}
}

// Connect acquires the session and returns its release function, meant for
// an immediate defer. Release never returns an error; close failures are
// logged so a caller's own error is not displaced during teardown.
func (c *Client) Connect() (func(), error) {
	if err := c.backend.Connect(); err != nil {
		return nil, err
	}
	release := func() {
		if err := c.backend.Close(); err != nil {
			c.log.Warn("closing backend", zap.Error(err))
		}
	}
	return release, nil
}

// Session connects, runs fn, and releases the backend on every exit path,
// including a panic inside fn.
func (c *Client) Session(fn func(*Client) error) error {
	release, err := c.Connect()
	if err != nil {
		return err
	}
	defer release()
	return fn(c)
}

func (c *Client) OpenCase(path string) error { return c.backend.OpenCase(path) }

func (c *Client) Run() error { return c.backend.Run() }

func (c *Client) Streams() ([]Stream, error) { return c.backend.Streams() }

func (c *Client) SetStream(name string, s Stream) error { return c.backend.SetStream(name, s) }

func (c *Client) Save(path string) (string, error) { return c.backend.Save(path) }

func (c *Client) Close() error { return c.backend.Close() }

// Backend exposes the wrapped backend for capability assertions.
func (c *Client) Backend() Backend { return c.backend }
