package listings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tradepost/internal/infra/storage/memory"

	domainlistings "tradepost/internal/domain/listings"
	"tradepost/internal/domain/shared/fault"
	domainusers "tradepost/internal/domain/users"
)

func TestCreateListingPerType(t *testing.T) {
	factory := memory.NewFactory()
	box := memory.NewOutbox()
	ctx := context.Background()
	handler := &CreateListingHandler{UoWFactory: factory, Outbox: box}

	price := int64(850000)
	sell, err := handler.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "sell", Title: "Bike", PriceCents: &price})
	require.NoError(t, err)
	require.Equal(t, string(domainlistings.StatusForSale), sell.Status)

	lost, err := handler.Handle(ctx, CreateListingCommand{OwnerID: "carol", Type: "lost", Title: "Found: scarf", FoundLocation: "platform 4"})
	require.NoError(t, err)
	require.Equal(t, string(domainlistings.StatusWaiting), lost.Status)

	_, err = handler.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "giveaway", Title: "Box"})
	require.Error(t, err)
	require.Equal(t, fault.KindConfig, fault.KindOf(err))
}

func TestCreateListingBumpsPostCount(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	handler := &CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}

	price := int64(100)
	_, err := handler.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "sell", Title: "Bike", PriceCents: &price})
	require.NoError(t, err)
	_, err = handler.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "trade", Title: "Keyboard"})
	require.NoError(t, err)

	profile, err := factory.UsersRepo.ByID(ctx, domainusers.UserID("alice"))
	require.NoError(t, err)
	require.Equal(t, 2, profile.PostCount)
}

func TestDeleteListingOwnerOnly(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	create := &CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	created, err := create.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "trade", Title: "Keyboard"})
	require.NoError(t, err)

	del := &DeleteListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	_, err = del.Handle(ctx, DeleteListingCommand{ListingID: created.ID, CallerID: "bob"})
	require.ErrorIs(t, err, ErrNotOwner)

	result, err := del.Handle(ctx, DeleteListingCommand{ListingID: created.ID, CallerID: "alice"})
	require.NoError(t, err)
	require.True(t, result.Deleted)

	profile, err := factory.UsersRepo.ByID(ctx, domainusers.UserID("alice"))
	require.NoError(t, err)
	require.Equal(t, 0, profile.PostCount)

	_, err = del.Handle(ctx, DeleteListingCommand{ListingID: created.ID, CallerID: "alice"})
	require.True(t, fault.IsNotFound(err))
}

func TestGetAndListOwnerListings(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	create := &CreateListingHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	created, err := create.Handle(ctx, CreateListingCommand{OwnerID: "alice", Type: "trade", Title: "Keyboard"})
	require.NoError(t, err)
	_, err = create.Handle(ctx, CreateListingCommand{OwnerID: "bob", Type: "trade", Title: "Trackball"})
	require.NoError(t, err)

	get := &GetListingHandler{UoWFactory: factory}
	fetched, err := get.Handle(ctx, GetListingQuery{ListingID: created.ID})
	require.NoError(t, err)
	require.Equal(t, "Keyboard", fetched.Title)

	_, err = get.Handle(ctx, GetListingQuery{ListingID: "nope"})
	require.True(t, fault.IsNotFound(err))

	list := &ListOwnerListingsHandler{UoWFactory: factory}
	mine, err := list.Handle(ctx, ListOwnerListingsQuery{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	require.Equal(t, created.ID, mine.Items[0].ID)
}
