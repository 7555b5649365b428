package pg

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNotConnected = errors.New("not connected")

// PeerPG stores results in a Postgres table, one row per sweep point.
type PeerPG struct {
	pool *pgxpool.Pool
	cfg  Config
}

type Config struct {
	ConnString string `json:"connString"`
	// Table receives one row per published event, created on connect
	// when missing.
	Table string `json:"table"`
}

const createTable = `CREATE TABLE IF NOT EXISTS %s (
	run_id          TEXT NOT NULL,
	run_name        TEXT NOT NULL,
	idx             INTEGER NOT NULL,
	converged       BOOLEAN NOT NULL,
	elapsed_seconds DOUBLE PRECISION NOT NULL,
	params          JSONB,
	outputs         JSONB,
	error           TEXT,
	ts              TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, idx)
)`

func (p *PeerPG) Connect(config json.RawMessage, _ ...any) error {
	if err := json.Unmarshal(config, &p.cfg); err != nil {
		return fmt.Errorf("config parse: %w", err)
	}
	p.cfg.Table = cmp.Or(p.cfg.Table, "sweep_results")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, p.cfg.ConnString)
	if err != nil {
		return err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("error connecting to database: %w", err)
	}

	if _, err = pool.Exec(ctx, fmt.Sprintf(createTable, pgx.Identifier{p.cfg.Table}.Sanitize())); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ensure results table: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *PeerPG) Pub(event sink.Event, _ ...any) error {
	if p.pool == nil {
		return errNotConnected
	}

	params, err := json.Marshal(event.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	outputs, err := json.Marshal(event.Values)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s
	(run_id, run_name, idx, converged, elapsed_seconds, params, outputs, error, ts)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)`,
		pgx.Identifier{p.cfg.Table}.Sanitize())

	_, err = p.pool.Exec(context.Background(), insert,
		event.RunID, event.RunName, event.Index, event.Converged, event.ElapsedSeconds,
		string(params), string(outputs), event.Error, time.UnixMilli(event.TsMs))
	if err != nil {
		return fmt.Errorf("failed to insert result row: %w", err)
	}
	return nil
}

func (p *PeerPG) Sub(_ ...any) (<-chan sink.Event, error) {
	return nil, sink.ErrConnectorTypeMismatch
}

func (p *PeerPG) Type() sink.ConnectorType {
	return sink.ConnectorTypePub
}

func (p *PeerPG) Disconnect() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func init() {
	sink.RegisterConnector(sink.ConnectorPostgres, &PeerPG{})
}
