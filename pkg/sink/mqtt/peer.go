package mqtt

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/distillab/aspenplus/pkg/sink"
	"github.com/distillab/aspenplus/pkg/util/rand"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var errConnNotInitialized = errors.New("MQTT connection not initialized")

// PeerMQTT publishes results to an MQTT broker.
type PeerMQTT struct {
	client mqtt.Client
	Config Config
}

type Config struct {
	Servers     []string `json:"servers"`
	TopicPrefix string   `json:"topicPrefix"`
	ClientID    string   `json:"clientId,omitempty"`
	Username    string   `json:"username,omitempty"`
	Password    string   `json:"password,omitempty"`
	// QoS applies to every published result, defaults to 1.
	QoS byte `json:"qos,omitempty"`
	TLS TLS  `json:"tls,omitempty"`
}

type TLS struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"certFile,omitempty"`
	KeyFile  string `json:"keyFile,omitempty"`
	CAFile   string `json:"caFile,omitempty"`
}

// Connect establishes a connection to the MQTT broker
func (p *PeerMQTT) Connect(config json.RawMessage, _ ...any) error {
	if err := json.Unmarshal(config, &p.Config); err != nil {
		return fmt.Errorf("failed to unmarshal MQTT config: %w", err)
	}

	if len(p.Config.Servers) == 0 {
		p.Config.Servers = []string{"tcp://127.0.0.1:1883"}
	}
	p.Config.TopicPrefix = cmp.Or(p.Config.TopicPrefix, "aspenplus")
	if p.Config.QoS == 0 {
		p.Config.QoS = 1
	}

	opts := mqtt.NewClientOptions()
	for _, server := range p.Config.Servers {
		opts.AddBroker(server)
	}
	opts.SetClientID(cmp.Or(p.Config.ClientID, fmt.Sprintf("aspenplus-%s", rand.NewName())))
	if p.Config.Username != "" {
		opts.SetUsername(p.Config.Username)
	}
	if p.Config.Password != "" {
		opts.SetPassword(p.Config.Password)
	}
	if p.Config.TLS.Enabled {
		tlsConfig, err := newTLSConfig(p.Config.TLS)
		if err != nil {
			return fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("broker connection error: %w", token.Error())
	}

	p.client = client
	return nil
}

// Pub publishes a result event under topicPrefix/runName/index
func (p *PeerMQTT) Pub(event sink.Event, _ ...any) error {
	if p.client == nil {
		return errConnNotInitialized
	}

	topic := fmt.Sprintf("%s/%s/%d", p.Config.TopicPrefix, event.RunName, event.Index)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result event: %w", err)
	}

	token := p.client.Publish(topic, p.Config.QoS, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

func (p *PeerMQTT) Sub(_ ...any) (<-chan sink.Event, error) {
	return nil, sink.ErrConnectorTypeMismatch
}

func (p *PeerMQTT) Type() sink.ConnectorType {
	return sink.ConnectorTypePub
}

func (p *PeerMQTT) Disconnect() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}

func init() {
	sink.RegisterConnector(sink.ConnectorMQTT, &PeerMQTT{})
}
