package negotiation

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const (
	getConversationKey   = "negotiation.conversation.get"
	listConversationsKey = "negotiation.conversation.list"
	listMessagesKey      = "negotiation.message.list"
	listClaimsKey        = "negotiation.claim.list"
)

type GetConversationQuery struct {
	ConversationID string
	CallerID       string
}

func (q GetConversationQuery) Key() string { return getConversationKey }

type ListMyConversationsQuery struct {
	CallerID string
}

func (q ListMyConversationsQuery) Key() string { return listConversationsKey }

type ListMessagesQuery struct {
	ConversationID string
	CallerID       string
	Limit          int
	Cursor         string
}

func (q ListMessagesQuery) Key() string { return listMessagesKey }

type ListClaimsQuery struct {
	ConversationID string
	CallerID       string
}

func (q ListClaimsQuery) Key() string { return listClaimsKey }

type GetConversationHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetConversationHandler) Handle(ctx context.Context, q GetConversationQuery) (dto.Conversation, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Conversation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(q.ConversationID))
	if err != nil {
		return dto.Conversation{}, err
	}
	if !conversation.IsParticipant(q.CallerID) {
		return dto.Conversation{}, domainnegotiation.ErrNotParticipant
	}
	return dto.MapConversation(conversation, q.CallerID), nil
}

type ListMyConversationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyConversationsHandler) Handle(ctx context.Context, q ListMyConversationsQuery) (dto.ConversationCollection, error) {
	caller := strings.TrimSpace(q.CallerID)
	if caller == "" {
		return dto.ConversationCollection{}, fault.InvalidOperation("negotiation: caller id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ConversationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Conversations().ListByParticipant(execCtx, caller)
	if err != nil {
		return dto.ConversationCollection{}, err
	}
	// Most recently touched thread first.
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	collection := dto.ConversationCollection{Items: make([]dto.Conversation, 0, len(items))}
	for _, conversation := range items {
		collection.Items = append(collection.Items, dto.MapConversation(conversation, caller))
	}
	return collection, nil
}

type ListMessagesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMessagesHandler) Handle(ctx context.Context, q ListMessagesQuery) (dto.ChatMessageList, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ChatMessageList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(q.ConversationID))
	if err != nil {
		return dto.ChatMessageList{}, err
	}
	if !conversation.IsParticipant(q.CallerID) {
		return dto.ChatMessageList{}, domainnegotiation.ErrNotParticipant
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	page, err := unit.Messages().List(execCtx, conversation.ID, limit, q.Cursor)
	if err != nil {
		return dto.ChatMessageList{}, err
	}
	collection := dto.ChatMessageList{
		Items:      make([]dto.ChatMessage, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, message := range page.Items {
		collection.Items = append(collection.Items, dto.MapMessage(message))
	}
	return collection, nil
}

type ListClaimsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListClaimsHandler) Handle(ctx context.Context, q ListClaimsQuery) ([]dto.Claim, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	conversation, err := unit.Conversations().ByID(execCtx, domainnegotiation.ConversationID(q.ConversationID))
	if err != nil {
		return nil, err
	}
	if !conversation.IsParticipant(q.CallerID) {
		return nil, domainnegotiation.ErrNotParticipant
	}
	claims, err := unit.Claims().ListByConversation(execCtx, conversation.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Claim, 0, len(claims))
	for _, claim := range claims {
		out = append(out, dto.MapClaim(claim))
	}
	return out, nil
}

var _ queries.Handler[GetConversationQuery, dto.Conversation] = (*GetConversationHandler)(nil)
var _ queries.Handler[ListMyConversationsQuery, dto.ConversationCollection] = (*ListMyConversationsHandler)(nil)
var _ queries.Handler[ListMessagesQuery, dto.ChatMessageList] = (*ListMessagesHandler)(nil)
var _ queries.Handler[ListClaimsQuery, []dto.Claim] = (*ListClaimsHandler)(nil)
