package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"project-memory-be/internal/pkg/logger"
	"project-memory-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

var _ events.Sink = (*Publisher)(nil)

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	ensureStream(js, log)
	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends the event payload as JSON to events.<type>.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

// Ping reports whether the connection to the server is up.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return fmt.Errorf("nats connection is %s", p.status())
	}
	return nil
}

func (p *Publisher) status() string {
	if p.nc == nil {
		return "closed"
	}
	return p.nc.Status().String()
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
