package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	natiu "github.com/soypat/natiu-mqtt"
)

// NatiuPublisher publishes readings as JSON with the allocation-free natiu
// MQTT client, which also runs on small targets.
type NatiuPublisher struct {
	client *natiu.Client
	conn   net.Conn
	topic  string
}

// DialNatiu connects to the MQTT broker at addr (host:port) over TCP.
func DialNatiu(ctx context.Context, addr, clientID, topic string) (*NatiuPublisher, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	p, err := NewNatiuPublisher(ctx, conn, clientID, topic)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// NewNatiuPublisher sends CONNECT over conn and waits for the broker to
// accept it.
func NewNatiuPublisher(ctx context.Context, conn net.Conn, clientID, topic string) (*NatiuPublisher, error) {
	client := natiu.NewClient(natiu.ClientConfig{
		Decoder: natiu.DecoderNoAlloc{UserBuffer: make([]byte, 1500)},
	})
	var vc natiu.VariablesConnect
	vc.SetDefaultMQTT([]byte(clientID))
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := client.Connect(ctx, conn, &vc); err != nil {
		return nil, err
	}
	return &NatiuPublisher{client: client, conn: conn, topic: topic}, nil
}

func (p *NatiuPublisher) Publish(ctx context.Context, r Reading) (err error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	flags, err := natiu.NewPublishFlags(natiu.QoS0, false, false)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := p.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer func() {
			if rerr := p.conn.SetWriteDeadline(time.Time{}); err == nil {
				err = rerr
			}
		}()
	}
	return p.client.PublishPayload(flags, natiu.VariablesPublish{TopicName: []byte(p.topic)}, payload)
}

var errPublisherClosed = errors.New("publisher closed")

// Close sends DISCONNECT, which also closes the connection. If the client
// has already lost the broker the connection is closed directly.
func (p *NatiuPublisher) Close() error {
	if !p.client.IsConnected() {
		return p.conn.Close()
	}
	return p.client.Disconnect(errPublisherClosed)
}
