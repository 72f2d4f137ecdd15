package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
)

// Alert is the JSON message published per confirmed anomaly. Advisory
// only; subscribers must not wire it to an actuator.
type Alert struct {
	Session string  `json:"session"`
	Elapsed float64 `json:"elapsed"`
	Voltage float64 `json:"voltage"`
	Temp    float64 `json:"temperature"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Action  string  `json:"action"`
}

// AlertPublisher pushes confirmed anomalies to an MQTT broker so that
// dashboards can subscribe without touching the monitor.
type AlertPublisher struct {
	client paho.Client
	topic  string
	qos    byte
	log    logging.Log
}

func NewAlertPublisher(cfg *AlertConfig) (*AlertPublisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = "hil/battery/anomaly"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "hilmon-alert"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(10 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("alert broker %s connect timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("alert broker %s: %w", cfg.Broker, err)
	}

	return &AlertPublisher{
		client: client,
		topic:  topic,
		qos:    byte(cfg.QoS),
		log:    logging.GetLog("alert"),
	}, nil
}

// Publish sends the alert without waiting for broker acknowledgment; a
// lost alert must not stall the monitoring loop.
func (p *AlertPublisher) Publish(sessionID string, rec Record) {
	payload, err := json.Marshal(Alert{
		Session: sessionID,
		Elapsed: rec.Elapsed.Seconds(),
		Voltage: rec.Features.Voltage,
		Temp:    rec.Features.Temp,
		Score:   rec.Verdict.Score,
		Reason:  rec.Reason,
		Action:  rec.Action,
	})
	if err != nil {
		p.log.Warnf("alert marshal: %s", err.Error())
		return
	}
	p.client.Publish(p.topic, p.qos, false, payload)
}

func (p *AlertPublisher) Close() {
	p.client.Disconnect(250)
}
