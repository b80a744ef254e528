package messaging

import (
	"context"

	"example.com/backstage/services/picking/config"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
)

// ErrNotConfigured is returned when no Service Bus connection string is set
var ErrNotConfigured = errors.New("azure service bus connection string is empty")

// AzureClient wraps the Service Bus client shared by receivers and senders
type AzureClient struct {
	client *azservicebus.Client
}

// NewAzureClient connects to Service Bus using the configured connection string
func NewAzureClient(cfg config.AzureConfig) (*AzureClient, error) {
	if cfg.QueueConnStr == "" {
		return nil, ErrNotConfigured
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}
	return &AzureClient{client: client}, nil
}

// NewReceiver opens a peek-lock receiver on queue
func (a *AzureClient) NewReceiver(queue string) (Receiver, error) {
	receiver, err := a.client.NewReceiverForQueue(queue, &azservicebus.ReceiverOptions{
		ReceiveMode: azservicebus.ReceiveModePeekLock,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create receiver for queue %s", queue)
	}
	return receiver, nil
}

// NewSender opens a sender on queue
func (a *AzureClient) NewSender(queue string) (Sender, error) {
	sender, err := a.client.NewSender(queue, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create sender for queue %s", queue)
	}
	return sender, nil
}

// Close closes the underlying connection
func (a *AzureClient) Close(ctx context.Context) error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close(ctx)
}
