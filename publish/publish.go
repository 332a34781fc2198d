// Package publish forwards synced report values to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/icodeforyou/mipi-go/config"
)

const publishTimeout = 10 * time.Second

type Message struct {
	Report       string  `json:"report"`
	GasDay       string  `json:"gasDay"`
	ApplicableAt string  `json:"applicableAt"`
	Value        float64 `json:"value"`
}

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

type Publisher struct {
	logger *slog.Logger
	client mqtt.Client
	pub    mqttPublisher
	prefix string
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "publish")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID(cnfg.GetClientId())
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLog := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLog, slog.LevelWarn)

	client := mqtt.NewClient(opts)
	return &Publisher{
		logger: logger,
		client: client,
		pub:    client,
		prefix: cnfg.GetTopicPrefix(),
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}

// Publish sends one message per value to <prefix>/<report slug>.
func (p *Publisher) Publish(report string, messages []Message) error {
	topic := Topic(p.prefix, report)
	for _, msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encoding mqtt message: %w", err)
		}
		token := p.pub.Publish(topic, 0, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("publishing to %s: timeout", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}
	}
	p.logger.Debug("published report values", slog.String("topic", topic), slog.Int("count", len(messages)))
	return nil
}

// Topic turns a report name into a topic, "SAP, Actual Day" becomes "<prefix>/sap_actual_day".
func Topic(prefix, report string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(report) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
		} else if !underscore && b.Len() > 0 {
			b.WriteRune('_')
			underscore = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if prefix == "" {
		return slug
	}
	return prefix + "/" + slug
}
