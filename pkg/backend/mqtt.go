package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesce     = 250 // milliseconds
)

// MQTTOptions configures an MQTTController
type MQTTOptions struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	TopicPrefix string
	Timeout     time.Duration
}

// MQTTController implements Controller over an MQTT broker.
//
// Each device publishes its state as a JSON object on <prefix>/<topic>/state
// (retained) and accepts partial updates on <prefix>/<topic>/set.
type MQTTController struct {
	client  pahomqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration
	logger  zerolog.Logger

	states   map[string]State // topic -> last state
	statesMu sync.RWMutex
}

// NewMQTTController connects to the broker and starts tracking device states.
func NewMQTTController(opts MQTTOptions, logger zerolog.Logger) (*MQTTController, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultPublishTimeout
	}

	c := &MQTTController{
		prefix:  strings.TrimSuffix(opts.TopicPrefix, "/"),
		qos:     opts.QoS,
		timeout: opts.Timeout,
		logger:  logger.With().Str("component", "mqtt").Logger(),
		states:  make(map[string]State),
	}

	clientOpts := pahomqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			c.logger.Warn().Err(err).Msg("MQTT connection lost")
		})
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
		clientOpts.SetPassword(opts.Password)
	}

	c.client = pahomqtt.NewClient(clientOpts)

	c.logger.Info().Str("broker", opts.Broker).Msg("Connecting to MQTT broker")
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: %w", opts.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Broker, err)
	}

	return c, nil
}

// onConnect (re)subscribes to device state topics. Device topics may span
// several levels, so the filter is a multi-level wildcard and deviceTopic
// picks out the state messages.
func (c *MQTTController) onConnect(client pahomqtt.Client) {
	filter := c.subscription()
	token := client.Subscribe(filter, c.qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.handleState(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(c.timeout) || token.Error() != nil {
		c.logger.Error().Err(token.Error()).Str("topic", filter).Msg("Failed to subscribe to device states")
		return
	}
	c.logger.Info().Str("topic", filter).Msg("Subscribed to device states")
}

// handleState stores a state message, keyed by the device topic
func (c *MQTTController) handleState(topic string, payload []byte) {
	device, ok := c.deviceTopic(topic)
	if !ok {
		return
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		c.logger.Warn().Err(err).Str("topic", topic).Msg("Ignoring malformed device state")
		return
	}

	c.statesMu.Lock()
	c.states[device] = state
	c.statesMu.Unlock()

	c.logger.Debug().Str("device", device).Msg("Device state updated")
}

// GetDeviceState returns a copy of the last state published by the device
func (c *MQTTController) GetDeviceState(ctx context.Context, topic string) (State, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	c.statesMu.RLock()
	defer c.statesMu.RUnlock()

	state, ok := c.states[topic]
	if !ok {
		return nil, fmt.Errorf("%s: %w", topic, ErrNotFound)
	}

	out := make(State, len(state))
	for k, v := range state {
		out[k] = v
	}
	return out, nil
}

// SetDeviceState publishes a partial state update to the device
func (c *MQTTController) SetDeviceState(ctx context.Context, topic string, state map[string]any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	token := c.client.Publish(c.setTopic(topic), c.qos, false, payload)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
		return nil
	case <-time.After(c.timeout):
		return fmt.Errorf("publish to %s: %w", topic, ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsConnected returns true if the broker connection is open
func (c *MQTTController) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

// Close disconnects from the broker
func (c *MQTTController) Close() {
	if c.client != nil {
		c.client.Disconnect(disconnectQuiesce)
	}
}

func (c *MQTTController) subscription() string {
	if c.prefix == "" {
		return "#"
	}
	return c.prefix + "/#"
}

func (c *MQTTController) stateTopic(device string) string {
	return c.join(device, "state")
}

func (c *MQTTController) setTopic(device string) string {
	return c.join(device, "set")
}

func (c *MQTTController) join(device, leaf string) string {
	if c.prefix == "" {
		return device + "/" + leaf
	}
	return c.prefix + "/" + device + "/" + leaf
}

// deviceTopic extracts the device topic from a state topic
func (c *MQTTController) deviceTopic(topic string) (string, bool) {
	rest := topic
	if c.prefix != "" {
		if !strings.HasPrefix(topic, c.prefix+"/") {
			return "", false
		}
		rest = strings.TrimPrefix(topic, c.prefix+"/")
	}
	device, ok := strings.CutSuffix(rest, "/state")
	if !ok || device == "" {
		return "", false
	}
	for _, level := range strings.Split(device, "/") {
		if level == "" {
			return "", false
		}
	}
	return device, true
}
