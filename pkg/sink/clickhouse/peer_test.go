package clickhouse

import (
	"testing"

	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubRequiresConnection(t *testing.T) {
	p := &PeerClickHouse{}
	require.Error(t, p.Pub(sink.Event{}))
}

func TestSubUnsupported(t *testing.T) {
	p := &PeerClickHouse{}
	_, err := p.Sub()
	assert.ErrorIs(t, err, sink.ErrConnectorTypeMismatch)
}
