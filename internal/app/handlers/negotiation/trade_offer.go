package negotiation

import (
	"context"
	"log/slog"
	"strings"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/uow"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const setTradeOfferKey = "negotiation.trade_offer.set"

// SetTradeOfferCommand replaces the caller's offered item on a trade
// conversation. Repeating the command overwrites the previous offer.
type SetTradeOfferCommand struct {
	ConversationID string
	CallerID       string
	Title          string
	ImageURL       string
	Condition      string
}

func (c SetTradeOfferCommand) Key() string { return setTradeOfferKey }

type SetTradeOfferHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SetTradeOfferHandler) Handle(ctx context.Context, cmd SetTradeOfferCommand) (*dto.Conversation, error) {
	caller := strings.TrimSpace(cmd.CallerID)
	if caller == "" {
		return nil, fault.InvalidOperation("negotiation: caller id is required")
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, fault.InvalidOperation("negotiation: trade offer title is required")
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
	offer := domainnegotiation.TradeOffer{
		Title:     strings.TrimSpace(cmd.Title),
		ImageURL:  cmd.ImageURL,
		Condition: cmd.Condition,
	}
	if err := conversation.SetTradeOffer(caller, offer, now()); err != nil {
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

var _ commands.Handler[SetTradeOfferCommand, *dto.Conversation] = (*SetTradeOfferHandler)(nil)
