package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/types"
)

const connectTimeout = 10 * time.Second

type latestPriceMessage struct {
	Zone      string    `json:"zone"`
	ZoneName  string    `json:"zone_name"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price_eur_mwh"`
}

// Publisher pushes the latest price per zone to an MQTT broker after each
// scheduled refresh.
type Publisher struct {
	logger     *slog.Logger
	mqttClient mqtt.Client
	topic      string
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "publisher")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID("powerprice")
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	return &Publisher{
		logger:     logger,
		mqttClient: mqtt.NewClient(opts),
		topic:      cnfg.GetTopic(),
	}
}

func (p *Publisher) Connect() error {
	token := p.mqttClient.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("MQTT connect timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connect failed: %w", err)
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.mqttClient.Disconnect(250)
}

// PublishLatest publishes the most recent point of a series on
// <topic>/<zone>, retained so late subscribers see the current price.
func (p *Publisher) PublishLatest(series types.PriceSeries) error {
	latest := series.Latest()
	if !latest.IsValid() {
		return nil
	}

	pt := latest.Value()
	payload, err := json.Marshal(latestPriceMessage{
		Zone:      series.Zone,
		ZoneName:  series.ZoneName,
		Timestamp: pt.Timestamp,
		Price:     pt.Price,
	})
	if err != nil {
		return fmt.Errorf("marshaling price message: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", p.topic, series.Zone)
	token := p.mqttClient.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("MQTT publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT publish to %s failed: %w", topic, err)
	}

	p.logger.Debug("published latest price",
		slog.String("topic", topic),
		slog.Float64("price", pt.Price))
	return nil
}
