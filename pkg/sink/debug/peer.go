package debug

import (
	"encoding/json"
	"log"

	"github.com/distillab/aspenplus/pkg/sink"
)

// PeerDebug is a debug peer that logs result events to the console
type PeerDebug struct{}

func (p *PeerDebug) Pub(event sink.Event, _ ...any) error {
	// TODO: should take a log formatting arg
	log.Printf("%s %+v", sink.ConnectorDebug, event)
	return nil
}

func (p *PeerDebug) Connect(_ json.RawMessage, _ ...any) error {
	return nil
}

func (p *PeerDebug) Sub(_ ...any) (<-chan sink.Event, error) {
	return nil, sink.ErrConnectorTypeMismatch
}

func (p *PeerDebug) Type() sink.ConnectorType {
	return sink.ConnectorTypePub
}

func (p *PeerDebug) Disconnect() error {
	return nil
}

func init() {
	sink.RegisterConnector(sink.ConnectorDebug, &PeerDebug{})
}
