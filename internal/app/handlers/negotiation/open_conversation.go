package negotiation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/middleware"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

const openConversationKey = "negotiation.conversation.open"

// OpenConversationCommand gets or creates the negotiation thread between the
// caller and the listing's other side. The derived conversation id makes the
// create path naturally idempotent.
type OpenConversationCommand struct {
	ListingID       string
	CallerID        string
	CounterpartyID  string // required only when the listing owner initiates
	IdempotencyKeyV string
}

func (c OpenConversationCommand) Key() string { return openConversationKey }

func (c OpenConversationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c OpenConversationCommand) ResultPrototype() any { return &dto.Conversation{} }

type OpenConversationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *OpenConversationHandler) Handle(ctx context.Context, cmd OpenConversationCommand) (*dto.Conversation, error) {
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

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, fault.Wrap(fault.KindNotFound, err)
		}
		return nil, err
	}

	counterparty := strings.TrimSpace(cmd.CounterpartyID)
	if caller == string(listing.Owner) {
		if counterparty == "" {
			return nil, fault.InvalidOperation("negotiation: counterparty id is required when the owner opens the thread")
		}
	} else {
		counterparty = caller
	}
	if counterparty == string(listing.Owner) {
		return nil, domainnegotiation.ErrSelfConversation
	}

	id := domainnegotiation.ConversationIDFor(listing.ID, listing.Type, string(listing.Owner), counterparty)
	existing, err := unit.Conversations().ByID(execCtx, id)
	if err == nil {
		result := dto.MapConversation(existing, caller)
		return &result, nil
	}
	if !errors.Is(err, domainnegotiation.ErrNotFound) {
		return nil, err
	}

	conversation, err := domainnegotiation.Open(domainnegotiation.OpenParams{
		ListingID:    listing.ID,
		ListingType:  listing.Type,
		Owner:        string(listing.Owner),
		Counterparty: counterparty,
		Creator:      caller,
		Seed:         listing.Snapshot(),
		Now:          now(),
	})
	if err != nil {
		return nil, err
	}
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
	if h.Logger != nil {
		h.Logger.Info("conversation opened", "conversation_id", conversation.ID, "listing_id", listing.ID, "listing_type", listing.Type, "owner", conversation.Owner, "counterparty", conversation.Counterparty)
	}
	result := dto.MapConversation(conversation, caller)
	return &result, nil
}

var _ commands.Handler[OpenConversationCommand, *dto.Conversation] = (*OpenConversationHandler)(nil)
var _ middleware.IdempotentCommand = (*OpenConversationCommand)(nil)
