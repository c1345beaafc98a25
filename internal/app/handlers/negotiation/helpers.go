package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/events"
)

func now() time.Time {
	return time.Now().UTC()
}

func newMessageID() domainnegotiation.MessageID {
	return domainnegotiation.MessageID(uuid.NewString())
}

type eventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// drainEvents moves pending aggregate events into the outbox.
func drainEvents(ctx context.Context, box outbox.Outbox, sources ...eventSource) error {
	for _, source := range sources {
		pending := source.PendingEvents()
		source.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, nil, pending); err != nil {
			return err
		}
	}
	return nil
}

// appendSystemMessage writes an engine-produced message and refreshes the
// conversation snapshot. The conversation is not saved here; callers persist
// it together with their own changes.
func appendSystemMessage(ctx context.Context, unit uow.UnitOfWork, conversation *domainnegotiation.Conversation, body string, at time.Time) error {
	message, err := domainnegotiation.NewMessage(domainnegotiation.NewMessageParams{
		ID:             newMessageID(),
		ConversationID: conversation.ID,
		SenderID:       domainnegotiation.SystemSender,
		Body:           body,
		Kind:           domainnegotiation.KindSystem,
		Now:            at,
	})
	if err != nil {
		return err
	}
	if err := unit.Messages().Append(ctx, message); err != nil {
		return err
	}
	conversation.RecordMessage(message.SenderID, message.Body, message.CreatedAt)
	conversation.Record(domainnegotiation.MessageSent{ConversationID: conversation.ID, MessageID: message.ID, SenderID: message.SenderID, Kind: message.Kind, At: message.CreatedAt})
	return nil
}
