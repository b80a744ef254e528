package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
)

// Sender is the subset of *azservicebus.Sender used by the publisher
type Sender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// Publisher sends completion notifications to a Service Bus queue
type Publisher struct {
	sender Sender
	source string
	now    func() time.Time
}

// NewPublisher creates a publisher tagging messages with source
func NewPublisher(sender Sender, source string) *Publisher {
	return &Publisher{sender: sender, source: source, now: time.Now}
}

// Publish sends data wrapped in the {eventType, data} envelope
func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message body")
	}
	body, err := json.Marshal(AzureBusMessage{EventType: eventType, Data: payload})
	if err != nil {
		return errors.Wrap(err, "failed to marshal message envelope")
	}

	contentType := "application/json"
	msg := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &eventType,
		ApplicationProperties: map[string]interface{}{
			"source": p.source,
			"time":   p.now().UTC().Format(time.RFC3339),
		},
	}
	if err := p.sender.SendMessage(ctx, msg, nil); err != nil {
		return errors.Wrapf(err, "failed to send %s", eventType)
	}
	return nil
}

// Close closes the sender
func (p *Publisher) Close(ctx context.Context) error {
	if p.sender == nil {
		return nil
	}
	return p.sender.Close(ctx)
}
