package messaging

import (
	"context"
	"time"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Receiver is the subset of *azservicebus.Receiver used by the consumer
type Receiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	AbandonMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.AbandonMessageOptions) error
	DeadLetterMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.DeadLetterOptions) error
	Close(ctx context.Context) error
}

const (
	defaultBatchSize  = 10
	defaultRetryDelay = 2 * time.Second
)

// Consumer pulls batches from a queue and settles each message by its outcome
type Consumer struct {
	receiver   Receiver
	processor  MessageProcessor
	metrics    *metrics.Metrics
	batchSize  int
	retryDelay time.Duration
}

// NewConsumer creates a consumer over receiver
func NewConsumer(receiver Receiver, processor MessageProcessor, m *metrics.Metrics) *Consumer {
	return &Consumer{
		receiver:   receiver,
		processor:  processor,
		metrics:    m,
		batchSize:  defaultBatchSize,
		retryDelay: defaultRetryDelay,
	}
}

// Run consumes until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Msg("Starting import consumer")
	defer func() {
		if err := c.receiver.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing receiver")
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		messages, err := c.receiver.ReceiveMessages(ctx, c.batchSize, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Error receiving messages")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if len(messages) > 0 {
			log.Debug().Msgf("Received %d messages", len(messages))
		}
		for _, message := range messages {
			c.handle(ctx, message)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, message *azservicebus.ReceivedMessage) {
	c.metrics.IncrementCounter(metrics.CounterMessagesReceived)

	err := c.processor.ProcessMessage(ctx, message)
	c.metrics.RecordResult("import_message", err)

	// settlement must survive shutdown of the consuming context
	settleCtx := context.Background()
	switch Classify(err) {
	case Complete:
		if err != nil {
			log.Warn().Err(err).Str("message_id", message.MessageID).Msg("Message already applied, completing")
		}
		if err := c.receiver.CompleteMessage(settleCtx, message, nil); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(CompleteMessage) failed")
		}

	case DeadLetter:
		c.metrics.IncrementCounter(metrics.CounterMessagesFailed)
		log.Error().Err(err).Str("message_id", message.MessageID).Msg("Message cannot be processed, dead-lettering")
		reason := "unprocessable"
		if errors.Is(err, domain.ErrConflict) {
			reason = "conflict"
		}
		description := err.Error()
		if err := c.receiver.DeadLetterMessage(settleCtx, message, &azservicebus.DeadLetterOptions{
			Reason:           &reason,
			ErrorDescription: &description,
		}); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(DeadLetterMessage) failed")
		}

	default:
		c.metrics.IncrementCounter(metrics.CounterMessagesFailed)
		log.Error().Err(err).Str("message_id", message.MessageID).Msg("Error processing message, abandoning")
		if err := c.receiver.AbandonMessage(settleCtx, message, nil); err != nil {
			log.Error().Err(err).Str("message_id", message.MessageID).Msg("(AbandonMessage) failed")
		}
	}
}
