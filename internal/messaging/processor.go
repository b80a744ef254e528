package messaging

import (
	"context"
	"encoding/json"

	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/models"
	"example.com/backstage/services/picking/internal/services"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Event types accepted on the import queue
const (
	ImportLot      = "ImportLot"
	ImportAdminLot = "ImportAdminLot"
)

// ErrMalformed marks a message that can never be processed
var ErrMalformed = errors.New("malformed message")

// AzureBusMessage is the common message envelope
type AzureBusMessage struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// ImportAdminLotCommand is the payload of ImportAdminLot
type ImportAdminLotCommand struct {
	services.CreateLotInput
	Assignment services.Assignment `json:"assignment"`
}

// MessageProcessor handles one received message
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error
}

// LotImporter creates lots from imported data
type LotImporter interface {
	Create(ctx context.Context, in services.CreateLotInput) (*models.Lot, error)
	CreateAdminLot(ctx context.Context, in services.CreateLotInput, a services.Assignment) (*models.Lot, error)
}

// UserRegistrar records the users named by imports
type UserRegistrar interface {
	EnsureUser(ctx context.Context, id domain.Identity) error
}

// ImportProcessor turns import queue messages into lots
type ImportProcessor struct {
	lots  LotImporter
	users UserRegistrar
}

// NewImportProcessor creates a processor for the lot import queue
func NewImportProcessor(lots LotImporter, users UserRegistrar) *ImportProcessor {
	return &ImportProcessor{lots: lots, users: users}
}

func (p *ImportProcessor) ProcessMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var msg AzureBusMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		return errors.Wrapf(ErrMalformed, "error unmarshalling message: %v", err)
	}

	log.Info().Str("eventType", msg.EventType).Str("message_id", message.MessageID).Msg("Processing message")

	switch msg.EventType {
	case ImportLot:
		var cmd services.CreateLotInput
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return errors.Wrapf(ErrMalformed, "invalid %s payload: %v", msg.EventType, err)
		}
		if err := p.register(ctx, cmd.Creator); err != nil {
			return err
		}
		_, err := p.lots.Create(ctx, cmd)
		return err

	case ImportAdminLot:
		var cmd ImportAdminLotCommand
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			return errors.Wrapf(ErrMalformed, "invalid %s payload: %v", msg.EventType, err)
		}
		for _, id := range []*domain.Identity{&cmd.Creator, cmd.Assignment.General, cmd.Assignment.Separator, cmd.Assignment.Scanner} {
			if id == nil {
				continue
			}
			if err := p.register(ctx, *id); err != nil {
				return err
			}
		}
		_, err := p.lots.CreateAdminLot(ctx, cmd.CreateLotInput, cmd.Assignment)
		return err

	default:
		return errors.Wrapf(ErrMalformed, "unsupported event type: %s", msg.EventType)
	}
}

func (p *ImportProcessor) register(ctx context.Context, id domain.Identity) error {
	if p.users == nil || id.UID == "" {
		return nil
	}
	return p.users.EnsureUser(ctx, id)
}

// Disposition says how a processed message is settled
type Disposition int

const (
	Complete Disposition = iota
	Abandon
	DeadLetter
)

// Classify maps a processing result to its settlement. A redelivered import
// of a stored lot is completed. Malformed payloads and conflicts on order
// codes are dead-lettered so operators see them. Anything else is retried.
func Classify(err error) Disposition {
	switch {
	case err == nil:
		return Complete
	case errors.Is(err, services.ErrLotExists):
		return Complete
	case errors.Is(err, ErrMalformed), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return DeadLetter
	}
	return Abandon
}
