package telemetry

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PahoPublisher publishes readings as JSON to an MQTT topic with the Eclipse
// Paho client.
type PahoPublisher struct {
	// QoS is the MQTT quality of service used for each reading, 0 by default.
	QoS byte

	client mqtt.Client
	topic  string
}

// DialPaho connects to broker (for example "tcp://localhost:1883").
func DialPaho(broker, clientID, topic string) (*PahoPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return NewPahoPublisher(client, topic), nil
}

// NewPahoPublisher publishes on an already connected client.
func NewPahoPublisher(client mqtt.Client, topic string) *PahoPublisher {
	return &PahoPublisher{client: client, topic: topic}
}

func (p *PahoPublisher) Publish(ctx context.Context, r Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, p.QoS, false, payload)
	if deadline, ok := ctx.Deadline(); ok {
		if !token.WaitTimeout(time.Until(deadline)) {
			return context.DeadlineExceeded
		}
	} else {
		token.Wait()
	}
	return token.Error()
}

func (p *PahoPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
