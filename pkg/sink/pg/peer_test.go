package pg

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/distillab/aspenplus/internal/testutil/pgtest"
	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubRequiresConnection(t *testing.T) {
	p := &PeerPG{}
	assert.ErrorIs(t, p.Pub(sink.Event{}), errNotConnected)
}

func TestPublishRoundTrip(t *testing.T) {
	pgtest.Skip(t)

	cfg, err := json.Marshal(Config{ConnString: pgtest.ConnString(), Table: "sweep_results_test"})
	require.NoError(t, err)

	p := &PeerPG{}
	require.NoError(t, p.Connect(cfg))
	defer p.Disconnect()

	event := sink.Event{
		RunID:          "11111111-2222-3333-4444-555555555555",
		RunName:        "brisk-heron",
		Index:          4,
		Params:         map[string]float64{"TEMPERATURE": 300},
		Values:         map[string]float64{"tops_temperature": 311.2},
		Converged:      true,
		ElapsedSeconds: 1.5,
		TsMs:           1700000000000,
	}
	require.NoError(t, p.Pub(event))

	pgtest.WithConn(t, func(conn *pgx.Conn) {
		var runName string
		var converged bool
		err := conn.QueryRow(context.Background(),
			`SELECT run_name, converged FROM sweep_results_test WHERE run_id = $1 AND idx = $2`,
			event.RunID, event.Index).Scan(&runName, &converged)
		require.NoError(t, err)
		assert.Equal(t, "brisk-heron", runName)
		assert.True(t, converged)

		_, err = conn.Exec(context.Background(), `DROP TABLE sweep_results_test`)
		require.NoError(t, err)
	})
}
