package negotiation

import (
	"context"
	"errors"
	"fmt"
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
	finalizeKey = "negotiation.finalize"
	retractKey  = "negotiation.finalize.retract"
)

// ErrPartialCompletion reports that the deal completed but the listing status
// write failed afterwards. Message and listing writes are not atomic across
// the two resources, so this is surfaced distinctly from a total failure.
var ErrPartialCompletion = errors.New("negotiation: deal completed but listing status update failed")

// FinalizeCommand records the caller's commitment to close the deal and
// completes it once both sides have committed.
type FinalizeCommand struct {
	ConversationID string
	CallerID       string
}

func (c FinalizeCommand) Key() string { return finalizeKey }

// RetractFinalizeCommand withdraws a prior finalize before completion.
type RetractFinalizeCommand struct {
	ConversationID string
	CallerID       string
}

func (c RetractFinalizeCommand) Key() string { return retractKey }

type FinalizeHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *FinalizeHandler) Handle(ctx context.Context, cmd FinalizeCommand) (*dto.Conversation, error) {
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
	wasCompleted := conversation.Status == domainnegotiation.StatusCompleted

	ts := now()
	if err := conversation.Finalize(caller, ts); err != nil {
		return nil, err
	}
	if wasCompleted {
		// Unsynchronized client retry against a finished deal.
		result := dto.MapConversation(conversation, caller)
		return &result, nil
	}

	listing, err := unit.Listings().ByID(execCtx, conversation.ListingID)
	if err != nil {
		return nil, err
	}

	completed := false
	if conversation.BothFinalized() {
		conversation.Complete(ts)
		if err := appendSystemMessage(execCtx, unit, conversation, domainnegotiation.CompletionNotice(conversation.ListingType), ts); err != nil {
			return nil, err
		}
		completed = true
	}
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}

	if completed {
		terminal, err := domainlistings.TerminalStatus(conversation.ListingType)
		if err != nil {
			return nil, err
		}
		listing.SetStatus(terminal, ts)
		if err := unit.Listings().Save(execCtx, listing); err != nil {
			if h.Logger != nil {
				h.Logger.Error("partial deal completion", "conversation_id", conversation.ID, "listing_id", listing.ID, "error", err)
			}
			return nil, fmt.Errorf("%w: %v", ErrPartialCompletion, err)
		}
	} else if caller != conversation.Owner && conversation.ListingType != domainlistings.TypeLost {
		// First commitment from the counterparty signals the owner.
		listing.SetStatus(domainlistings.StatusPending, ts)
		if err := unit.Listings().Save(execCtx, listing); err != nil {
			return nil, err
		}
	}

	if err := drainEvents(execCtx, h.Outbox, conversation, listing); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("finalize recorded", "conversation_id", conversation.ID, "participant", caller, "completed", completed)
	}
	result := dto.MapConversation(conversation, caller)
	return &result, nil
}

type RetractFinalizeHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *RetractFinalizeHandler) Handle(ctx context.Context, cmd RetractFinalizeCommand) (*dto.Conversation, error) {
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

	ts := now()
	if err := conversation.Retract(caller, ts); err != nil {
		return nil, err
	}
	if err := unit.Conversations().Save(execCtx, conversation); err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(execCtx, conversation.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == domainlistings.StatusPending && conversation.FinalizedCount() == 0 {
		initial, err := domainlistings.InitialStatus(conversation.ListingType)
		if err != nil {
			return nil, err
		}
		listing.SetStatus(initial, ts)
		if err := unit.Listings().Save(execCtx, listing); err != nil {
			return nil, err
		}
	}

	if err := drainEvents(execCtx, h.Outbox, conversation, listing); err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("finalize retracted", "conversation_id", conversation.ID, "participant", caller)
	}
	result := dto.MapConversation(conversation, caller)
	return &result, nil
}

var _ commands.Handler[FinalizeCommand, *dto.Conversation] = (*FinalizeHandler)(nil)
var _ commands.Handler[RetractFinalizeCommand, *dto.Conversation] = (*RetractFinalizeHandler)(nil)
