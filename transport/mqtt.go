package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTTransport implements the Transport interface on top of the PAHO MQTT
// client. Subscriptions are recorded so they can be re-established after a
// reconnect.
type MQTTTransport struct {
	brokerURL string
	clientID  string
	logger    *slog.Logger

	client mqtt.Client

	mu            sync.Mutex
	subscriptions map[string]MessageHandler
}

// NewMQTTTransport creates a transport session for one robot.
func NewMQTTTransport(host, port, clientID string, logger *slog.Logger) *MQTTTransport {
	return &MQTTTransport{
		brokerURL:     fmt.Sprintf("tcp://%s:%s", host, port),
		clientID:      clientID,
		logger:        logger.With("component", "mqtt_transport", "clientId", clientID),
		subscriptions: make(map[string]MessageHandler),
	}
}

// Connect establishes the broker session. Recorded subscriptions are applied
// on every (re)connect.
func (t *MQTTTransport) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(t.brokerURL).
		SetClientID(t.clientID).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	opts.SetOnConnectHandler(t.onConnect)
	opts.SetConnectionLostHandler(t.onConnectionLost)

	t.client = mqtt.NewClient(opts)
	if token := t.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Subscribe registers a handler for a topic and subscribes immediately if the
// session is already up.
func (t *MQTTTransport) Subscribe(topic string, handler MessageHandler) error {
	t.mu.Lock()
	t.subscriptions[topic] = handler
	t.mu.Unlock()

	if t.client == nil || !t.client.IsConnected() {
		return nil
	}
	return t.subscribe(topic, handler)
}

// Publish sends a payload with QoS 1. Delivery confirmation is awaited in the
// background; failures are logged, not returned.
func (t *MQTTTransport) Publish(topic string, payload []byte) error {
	if t.client == nil || !t.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}
	token := t.client.Publish(topic, 1, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			t.logger.Error("Failed to publish message", "topic", topic, slog.Any("error", token.Error()))
		}
	}()
	return nil
}

// Disconnect gracefully shuts down the session.
func (t *MQTTTransport) Disconnect() {
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
		t.logger.Info("MQTT transport disconnected")
	}
}

func (t *MQTTTransport) onConnect(client mqtt.Client) {
	t.logger.Info("Connected to MQTT broker. Subscribing to topics...")
	t.mu.Lock()
	defer t.mu.Unlock()
	for topic, handler := range t.subscriptions {
		if err := t.subscribe(topic, handler); err != nil {
			t.logger.Error("Failed to subscribe to topic", "topic", topic, slog.Any("error", err))
		}
	}
}

func (t *MQTTTransport) onConnectionLost(client mqtt.Client, err error) {
	t.logger.Error("Connection lost. Reconnecting...", slog.Any("error", err))
}

func (t *MQTTTransport) subscribe(topic string, handler MessageHandler) error {
	callback := func(client mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	}
	if token := t.client.Subscribe(topic, 1, callback); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	t.logger.Info("Successfully subscribed to topic", "topic", topic)
	return nil
}
