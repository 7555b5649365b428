package debug

import (
	"testing"

	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerDebug(t *testing.T) {
	peer := sink.Peer{Name: "console", ConnectorName: sink.ConnectorDebug}
	c := peer.Connector()
	require.NotNil(t, c, "debug connector registers itself on import")

	require.NoError(t, c.Connect(nil))
	require.NoError(t, c.Pub(sink.Event{RunID: "r", RunName: "calm-owl", Index: 1}))

	_, err := c.Sub()
	assert.ErrorIs(t, err, sink.ErrConnectorTypeMismatch)
	assert.Equal(t, sink.ConnectorTypePub, c.Type())
	assert.NoError(t, c.Disconnect())
}
