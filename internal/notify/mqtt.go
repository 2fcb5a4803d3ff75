package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"lantern/internal/observability/metrics"
)

const defaultPublishTimeout = 5 * time.Second

type mqttToken = mqtt.Token

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqttToken
}

// MQTTNotifier publishes run summaries as JSON to an MQTT topic.
type MQTTNotifier struct {
	client  publisher
	conn    mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTNotifier connects to the broker. A bare host is expanded to tcp://host:1883.
func NewMQTTNotifier(broker, clientID, username, password, topic string) (*MQTTNotifier, error) {
	if broker == "" {
		return nil, errors.New("mqtt notifier: empty broker")
	}
	if topic == "" {
		return nil, errors.New("mqtt notifier: empty topic")
	}
	if !strings.Contains(broker, "://") {
		broker = fmt.Sprintf("tcp://%s:1883", broker)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt notifier: connect %s: %w", broker, token.Error())
	}
	n := newMQTTNotifier(client, topic)
	n.conn = client
	return n, nil
}

func newMQTTNotifier(client publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, qos: 1, timeout: defaultPublishTimeout}
}

// Notify publishes the run message.
func (n *MQTTNotifier) Notify(ctx context.Context, msg RunMessage) error {
	err := n.publish(ctx, msg)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.IncNotify("mqtt", result)
	return err
}

func (n *MQTTNotifier) publish(ctx context.Context, msg RunMessage) error {
	if n == nil || n.client == nil {
		return errors.New("mqtt notifier: nil client")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	token := n.client.Publish(n.topic, n.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(n.timeout):
		return errors.New("mqtt notifier: publish timeout")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	if n != nil && n.conn != nil && n.conn.IsConnected() {
		n.conn.Disconnect(250)
	}
}
