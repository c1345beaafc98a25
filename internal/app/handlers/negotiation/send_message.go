package negotiation

import (
	"context"
	"log/slog"
	"strings"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const (
	sendMessageKey = "negotiation.message.send"
	markReadKey    = "negotiation.conversation.mark_read"
)

// SendMessageCommand appends a participant message to a conversation.
// The sentinel system sender is rejected here; system messages come only
// from engine transitions.
type SendMessageCommand struct {
	ConversationID string
	SenderID       string
	Body           string
}

func (c SendMessageCommand) Key() string { return sendMessageKey }

// MarkReadCommand clears the caller's unread flag on a conversation.
type MarkReadCommand struct {
	ConversationID string
	CallerID       string
}

func (c MarkReadCommand) Key() string { return markReadKey }

type SendMessageHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*dto.ChatMessage, error) {
	sender := strings.TrimSpace(cmd.SenderID)
	if sender == "" || sender == domainnegotiation.SystemSender {
		return nil, fault.InvalidOperation("negotiation: sender id is invalid")
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(cmd.ConversationID))
	if err != nil {
		return nil, err
	}
	if !conversation.IsParticipant(sender) {
		return nil, domainnegotiation.ErrNotParticipant
	}
	if conversation.ListingType == domainlistings.TypeLost && !conversation.CanChat {
		return nil, fault.InvalidOperation("negotiation: chat is locked until a claim is approved")
	}

	ts := now()
	message, err := domainnegotiation.NewMessage(domainnegotiation.NewMessageParams{
		ID:             newMessageID(),
		ConversationID: conversation.ID,
		SenderID:       sender,
		Body:           cmd.Body,
		Kind:           domainnegotiation.KindText,
		Now:            ts,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Messages().Append(execCtx, message); err != nil {
		return nil, err
	}
	conversation.RecordMessage(sender, message.Body, message.CreatedAt)
	conversation.Record(domainnegotiation.MessageSent{ConversationID: conversation.ID, MessageID: message.ID, SenderID: sender, Kind: message.Kind, At: message.CreatedAt})
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}
	if err := drainEvents(execCtx, h.Outbox, conversation); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	result := dto.MapMessage(message)
	return &result, nil
}

type MarkReadHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (*dto.Conversation, error) {
	caller := strings.TrimSpace(cmd.CallerID)
	if caller == "" {
		return nil, fault.InvalidOperation("negotiation: caller id is required")
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(cmd.ConversationID))
	if err != nil {
		return nil, err
	}
	if err := conversation.MarkRead(caller); err != nil {
		return nil, err
	}
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	result := dto.MapConversation(conversation, caller)
	return &result, nil
}

var _ commands.Handler[SendMessageCommand, *dto.ChatMessage] = (*SendMessageHandler)(nil)
var _ commands.Handler[MarkReadCommand, *dto.Conversation] = (*MarkReadHandler)(nil)
