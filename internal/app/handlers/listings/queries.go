package listings

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	domainlistings "tradepost/internal/domain/listings"
	"tradepost/internal/domain/shared/fault"
)

const (
	getListingKey        = "listings.get"
	listOwnerListingsKey = "listings.list_by_owner"
)

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type ListOwnerListingsQuery struct {
	OwnerID string
}

func (q ListOwnerListingsQuery) Key() string { return listOwnerListingsKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return dto.Listing{}, fault.Wrap(fault.KindNotFound, err)
		}
		return dto.Listing{}, err
	}
	return dto.MapListing(listing), nil
}

type ListOwnerListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnerListingsHandler) Handle(ctx context.Context, q ListOwnerListingsQuery) (dto.ListingCollection, error) {
	owner := strings.TrimSpace(q.OwnerID)
	if owner == "" {
		return dto.ListingCollection{}, fault.InvalidOperation("listings: owner id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Listings().ListByOwner(execCtx, domainlistings.OwnerID(owner))
	if err != nil {
		return dto.ListingCollection{}, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	collection := dto.ListingCollection{Items: make([]dto.Listing, 0, len(items))}
	for _, listing := range items {
		collection.Items = append(collection.Items, dto.MapListing(listing))
	}
	return collection, nil
}

var _ queries.Handler[GetListingQuery, dto.Listing] = (*GetListingHandler)(nil)
var _ queries.Handler[ListOwnerListingsQuery, dto.ListingCollection] = (*ListOwnerListingsHandler)(nil)
