package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/app/commands"
	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/middleware"
	"tradepost/internal/app/outbox"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	"tradepost/internal/domain/shared/fault"
	domainusers "tradepost/internal/domain/users"
)

const createListingKey = "listings.create"

// CreateListingCommand posts a new item. The status comes from the type
// registry and the owner's post counter is bumped in the same unit of work.
type CreateListingCommand struct {
	OwnerID         string
	Type            string
	Title           string
	Description     string
	ImageURL        string
	Condition       string
	PriceCents      *int64
	TradeFor        string
	LendStart       time.Time
	LendEnd         time.Time
	FoundLocation   string
	FoundAt         time.Time
	IdempotencyKeyV string
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateListingCommand) ResultPrototype() any { return &dto.Listing{} }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Logger     *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	owner := strings.TrimSpace(cmd.OwnerID)
	if owner == "" {
		return nil, fault.InvalidOperation("listings: owner id is required")
	}
	listingType, err := domainlistings.ParseType(cmd.Type)
	if err != nil {
		return nil, err
	}
	unit, execCtx, commit, cleanup, err := handlersupport.BeginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	now := time.Now().UTC()
	params := domainlistings.CreateParams{
		ID:          domainlistings.ListingID(uuid.NewString()),
		Owner:       domainlistings.OwnerID(owner),
		Type:        listingType,
		Title:       cmd.Title,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
		Condition:   cmd.Condition,
		Now:         now,
	}
	switch listingType {
	case domainlistings.TypeSell:
		var price int64
		if cmd.PriceCents != nil {
			price = *cmd.PriceCents
		}
		params.Sell = &domainlistings.SellDetails{PriceCents: price}
	case domainlistings.TypeTrade:
		params.Trade = &domainlistings.TradeDetails{InterestedIn: cmd.TradeFor}
	case domainlistings.TypeLend:
		params.Lend = &domainlistings.LendDetails{WindowStart: cmd.LendStart, WindowEnd: cmd.LendEnd}
	case domainlistings.TypeLost:
		params.Lost = &domainlistings.LostDetails{FoundLocation: cmd.FoundLocation, FoundAt: cmd.FoundAt}
	}

	listing, err := domainlistings.NewListing(params)
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(execCtx, listing); err != nil {
		return nil, err
	}

	profile, err := unit.Users().ByID(execCtx, domainusers.UserID(owner))
	if err != nil {
		if !errors.Is(err, domainusers.ErrNotFound) {
			return nil, err
		}
		profile = &domainusers.Profile{ID: domainusers.UserID(owner), CreatedAt: now}
	}
	profile.IncrementPosts(now)
	if err := unit.Users().Save(execCtx, profile); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(execCtx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", owner, "type", listingType, "status", listing.Status)
	}
	result := dto.MapListing(listing)
	return &result, nil
}

var _ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateListingCommand)(nil)
