package sink

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnector records calls for manager tests.
type fakeConnector struct {
	connectCalls int
	failConnects int
	gotConfig    json.RawMessage
	published    []Event
	pubErr       error
	disconnected bool
}

func (f *fakeConnector) Connect(config json.RawMessage, _ ...any) error {
	f.connectCalls++
	if f.connectCalls <= f.failConnects {
		return errors.New("connect refused")
	}
	f.gotConfig = config
	return nil
}

func (f *fakeConnector) Pub(event Event, _ ...any) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeConnector) Sub(_ ...any) (<-chan Event, error) {
	return nil, ErrConnectorTypeMismatch
}

func (f *fakeConnector) Type() ConnectorType { return ConnectorTypePub }

func (f *fakeConnector) Disconnect() error {
	f.disconnected = true
	return nil
}

func TestManagerInitAndPublish(t *testing.T) {
	fake := &fakeConnector{}
	RegisterConnector("fake-a", fake)

	m := NewManager()
	err := m.Init([]Peer{{
		Name:          "primary",
		ConnectorName: "fake-a",
		Config:        map[string]any{"servers": []string{"srv:1"}},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"servers":["srv:1"]}`, string(fake.gotConfig))

	peer, err := m.GetPeer("primary")
	require.NoError(t, err)
	assert.Equal(t, "fake-a", peer.ConnectorName)
	assert.Len(t, m.Peers(), 1)

	m.Publish(Event{RunID: "r1", RunName: "calm-heron", Index: 3})
	require.Len(t, fake.published, 1)
	assert.Equal(t, 3, fake.published[0].Index)
	assert.NotZero(t, fake.published[0].TsMs, "Publish stamps unset timestamps")

	require.NoError(t, m.CloseAll())
	assert.True(t, fake.disconnected)
}

func TestManagerInitRetries(t *testing.T) {
	fake := &fakeConnector{failConnects: 1}
	RegisterConnector("fake-flaky", fake)

	m := NewManager()
	err := m.Init([]Peer{{Name: "flaky", ConnectorName: "fake-flaky"}})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.connectCalls)
}

func TestManagerInitUnknownConnector(t *testing.T) {
	m := NewManager()
	err := m.Init([]Peer{{Name: "ghost", ConnectorName: "no-such"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such")
	assert.Contains(t, err.Error(), "ghost")
}

func TestManagerPublishSinkFailure(t *testing.T) {
	bad := &fakeConnector{pubErr: errors.New("broker down")}
	good := &fakeConnector{}
	RegisterConnector("fake-bad", bad)
	RegisterConnector("fake-good", good)

	m := NewManager()
	require.NoError(t, m.Init([]Peer{
		{Name: "bad", ConnectorName: "fake-bad"},
		{Name: "good", ConnectorName: "fake-good"},
	}))

	m.Publish(Event{RunID: "r2", Index: 0})

	// a failing sink never blocks delivery to the healthy one
	require.Len(t, good.published, 1)
}

func TestPeerConnectorLookup(t *testing.T) {
	p := Peer{ConnectorName: "definitely-unregistered"}
	assert.Nil(t, p.Connector())
}

func TestEventJSONShape(t *testing.T) {
	data, err := json.Marshal(Event{
		RunID:   "id",
		RunName: "brave-wren",
		Index:   2,
		Params:  map[string]float64{"TEMPERATURE": 300},
		TsMs:    1700000000000,
	})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"runName":"brave-wren"`)
	// success rows omit error, failed rows omit outputs
	assert.NotContains(t, s, `"values"`)
	assert.NotContains(t, s, `"error"`)
}
