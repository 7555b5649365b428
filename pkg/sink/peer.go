package sink

// Peer is a named results destination bound to a registered connector
// (ie NATS, Kafka, MQTT, ClickHouse, Postgres, etc).
type Peer struct {
	Name          string `mapstructure:"name"`
	ConnectorName string `mapstructure:"connector"`
	// Config contains the connection config of the underlying library,
	// handed to the connector as JSON on Connect
	Config map[string]any `mapstructure:"config"`
	// Extra arguments for Connect, Pub, Sub methods
	Args []any
}

func (p *Peer) Connector() Connector {
	mu.RLock()
	defer mu.RUnlock()
	return connectors[p.ConnectorName]
}
