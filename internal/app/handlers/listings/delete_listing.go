package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tradepost/internal/app/commands"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	"tradepost/internal/domain/shared/events"
	"tradepost/internal/domain/shared/fault"
	domainusers "tradepost/internal/domain/users"
)

const deleteListingKey = "listings.delete"

var ErrNotOwner = fault.Wrap(fault.KindForbidden, errors.New("listings: only the owner may delete a listing"))

// DeleteListingCommand removes an owner's post and decrements their counter.
// Conversation history referencing the listing is retained.
type DeleteListingCommand struct {
	ListingID string
	CallerID  string
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

type DeleteListingResult struct {
	Deleted bool `json:"deleted"`
}

type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
	caller := strings.TrimSpace(cmd.CallerID)
	if caller == "" {
		return nil, fault.InvalidOperation("listings: caller id is required")
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
	if string(listing.Owner) != caller {
		return nil, ErrNotOwner
	}

	now := time.Now().UTC()
	if err := unit.Listings().Delete(execCtx, listing.ID); err != nil {
		return nil, err
	}

	profile, err := unit.Users().ByID(execCtx, domainusers.UserID(caller))
	if err == nil {
		profile.DecrementPosts(now)
		if err := unit.Users().Save(execCtx, profile); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, domainusers.ErrNotFound) {
		return nil, err
	}

	event := domainlistings.ListingDeleted{ListingID: listing.ID, Owner: listing.Owner, At: now}
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, nil, []events.DomainEvent{event}); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID, "owner_id", caller)
	}
	return &DeleteListingResult{Deleted: true}, nil
}

var _ commands.Handler[DeleteListingCommand, *DeleteListingResult] = (*DeleteListingHandler)(nil)
