package sink

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/distillab/aspenplus/pkg/metrics"
	"go.uber.org/zap"
)

var (
	connectors = make(map[string]Connector)
	mu         sync.RWMutex
)

// connectRetries bounds the reconnect attempts per peer during Init.
const connectRetries = 3

// Manager owns the configured sink peers and fans result events out to them.
type Manager struct {
	connectors map[string]Connector
	peers      map[string]Peer
	logger     *zap.Logger
}

// NewManager returns a new Manager backed by the registered connectors.
func NewManager() *Manager {
	logger, _ := zap.NewProduction()

	return &Manager{
		connectors: connectors,
		peers:      map[string]Peer{},
		logger:     logger,
	}
}

// AddPeer creates a new Peer bound to a registered connector.
func (m *Manager) AddPeer(connector string, name string) (*Peer, error) {
	mu.RLock()
	_, exists := m.connectors[connector]
	mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("connector %s not found", connector)
	}

	peer := Peer{ConnectorName: connector, Name: name}
	m.peers[name] = peer
	return &peer, nil
}

func (m *Manager) Peers() []Peer {
	peers := make([]Peer, 0, len(m.peers))
	for _, p := range m.peers {
		peers = append(peers, p)
	}
	return peers
}

func (m *Manager) GetPeer(name string) (*Peer, error) {
	if peer, exists := m.peers[name]; exists {
		return &peer, nil
	}
	return nil, fmt.Errorf("peer %s not found", name)
}

// Init connects all configured peers, retrying transient failures with
// exponential backoff before giving up.
func (m *Manager) Init(peers []Peer) error {
	m.logger.Info("Initializing sink manager", zap.Int("peerCount", len(peers)))
	for _, p := range peers {
		m.logger.Debug("Adding peer",
			zap.String("name", p.Name),
			zap.String("connector", p.ConnectorName))

		peer, err := m.AddPeer(p.ConnectorName, p.Name)
		if err != nil {
			m.logger.Error("Failed to add peer",
				zap.String("name", p.Name),
				zap.String("connector", p.ConnectorName),
				zap.Error(err))
			return fmt.Errorf("failed to add peer %s: %w", p.Name, err)
		}

		peer.Config = p.Config
		peer.Args = p.Args
		m.peers[peer.Name] = *peer

		configJSON, err := json.Marshal(peer.Config)
		if err != nil {
			m.logger.Error("Failed to marshal config for peer",
				zap.String("name", peer.Name),
				zap.Error(err))
			return fmt.Errorf("failed to marshal config for peer %s: %w", peer.Name, err)
		}

		connector := peer.Connector()
		if connector == nil {
			m.logger.Error("Connector not found for peer",
				zap.String("name", peer.Name))
			return fmt.Errorf("connector not found for peer %s", peer.Name)
		}

		m.logger.Debug("Connecting peer",
			zap.String("name", peer.Name),
			zap.String("connector", p.ConnectorName))

		operation := func() error {
			return connector.Connect(json.RawMessage(configJSON), peer.Args...)
		}
		notify := func(err error, delay time.Duration) {
			m.logger.Warn("Retrying connection",
				zap.String("name", peer.Name),
				zap.Duration("delay", delay),
				zap.Error(err))
		}
		b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries)
		if err := backoff.RetryNotify(operation, b, notify); err != nil {
			m.logger.Error("Failed to initialize connector after retries",
				zap.String("name", peer.Name),
				zap.Error(err))
			return fmt.Errorf("failed to initialize connector %s: %w", peer.Name, err)
		}

		m.logger.Info("Successfully connected peer",
			zap.String("name", peer.Name),
			zap.String("connector", p.ConnectorName))
	}

	m.logger.Info("Successfully initialized all sinks", zap.Int("totalPeers", len(m.peers)))
	return nil
}

// Publish fans the event out to every peer. Failures are counted and
// logged, never returned: a slow or down sink must not stop a sweep
// mid-run.
func (m *Manager) Publish(event Event) {
	if event.TsMs == 0 {
		event.TsMs = time.Now().UnixMilli()
	}
	for _, peer := range m.peers {
		connector := peer.Connector()
		if connector == nil {
			continue
		}
		if err := connector.Pub(event, peer.Args...); err != nil {
			metrics.PublishErrors.WithLabelValues(peer.Name).Inc()
			m.logger.Warn("Failed to publish result",
				zap.String("sink", peer.Name),
				zap.Int("index", event.Index),
				zap.Error(err))
		}
	}
}

// CloseAll disconnects every peer, keeping the first error.
func (m *Manager) CloseAll() error {
	var firstErr error
	for _, peer := range m.peers {
		connector := peer.Connector()
		if connector == nil {
			continue
		}
		if err := connector.Disconnect(); err != nil {
			m.logger.Warn("Failed to disconnect sink",
				zap.String("sink", peer.Name),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
