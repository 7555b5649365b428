package clickhouse

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/distillab/aspenplus/pkg/util"
)

// PeerClickHouse stores results in a ClickHouse table, one row per
// sweep point.
type PeerClickHouse struct {
	conn   driver.Conn
	config *Config
}

type Config struct {
	clickhouse.Options
	// Table receives one row per published event, created on connect
	// when missing.
	Table string `json:"table"`
}

func (p *PeerClickHouse) Connect(config json.RawMessage, _ ...any) error {
	p.config = &Config{}

	if config != nil {
		if err := json.Unmarshal(config, p.config); err != nil {
			return fmt.Errorf("failed to parse ClickHouse config: %w", err)
		}
	}

	// Set values from environment variables or use defaults
	if len(p.config.Addr) == 0 {
		p.config.Addr = []string{util.GetEnvOrDefault("ASPENPLUS_CLICKHOUSE_ADDR", "localhost:9000")}
	}
	if p.config.Auth.Database == "" {
		p.config.Auth.Database = util.GetEnvOrDefault("ASPENPLUS_CLICKHOUSE_AUTH_DATABASE", "default")
	}
	if p.config.Auth.Username == "" {
		p.config.Auth.Username = util.GetEnvOrDefault("ASPENPLUS_CLICKHOUSE_AUTH_USERNAME", "default")
	}
	if p.config.Auth.Password == "" {
		p.config.Auth.Password = util.GetEnvOrDefault("ASPENPLUS_CLICKHOUSE_AUTH_PASSWORD", "")
	}
	p.config.Table = cmp.Or(p.config.Table, "sweep_results")

	conn, err := clickhouse.Open(&p.config.Options)
	if err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx := context.Background()
	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id          String,
		run_name        String,
		idx             Int32,
		converged       Bool,
		elapsed_seconds Float64,
		params          String,
		outputs         String,
		error           String,
		ts              DateTime64(3)
	) ENGINE = MergeTree ORDER BY (run_id, idx)`, p.config.Table)

	if err := conn.Exec(ctx, ddl); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ensure results table: %w", err)
	}

	p.conn = conn
	return nil
}

func (p *PeerClickHouse) Pub(event sink.Event, _ ...any) error {
	if p.conn == nil {
		return fmt.Errorf("ClickHouse connection not initialized")
	}

	params, err := json.Marshal(event.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	outputs, err := json.Marshal(event.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s
	(run_id, run_name, idx, converged, elapsed_seconds, params, outputs, error, ts)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, p.config.Table)

	err = p.conn.Exec(context.Background(), insert,
		event.RunID, event.RunName, int32(event.Index), event.Converged,
		event.ElapsedSeconds, string(params), string(outputs), event.Error,
		time.UnixMilli(event.TsMs))
	if err != nil {
		return fmt.Errorf("failed to insert result into ClickHouse: %w", err)
	}

	return nil
}

func (p *PeerClickHouse) Sub(_ ...any) (<-chan sink.Event, error) {
	return nil, sink.ErrConnectorTypeMismatch
}

func (p *PeerClickHouse) Type() sink.ConnectorType {
	return sink.ConnectorTypePub
}

func (p *PeerClickHouse) Disconnect() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func init() {
	sink.RegisterConnector(sink.ConnectorClickHouse, &PeerClickHouse{})
}
