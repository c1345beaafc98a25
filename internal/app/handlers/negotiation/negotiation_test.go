package negotiation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/internal/infra/storage/memory"

	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	"tradepost/internal/domain/shared/fault"
)

func newTestEnv() (memory.Factory, *memory.Outbox) {
	return memory.NewFactory(), memory.NewOutbox()
}

func seedListing(t *testing.T, factory memory.Factory, id, owner string, listingType domainlistings.ListingType) *domainlistings.Listing {
	t.Helper()
	params := domainlistings.CreateParams{
		ID:    domainlistings.ListingID(id),
		Owner: domainlistings.OwnerID(owner),
		Type:  listingType,
		Title: "Test item",
		Now:   time.Now(),
	}
	switch listingType {
	case domainlistings.TypeSell:
		params.Sell = &domainlistings.SellDetails{PriceCents: 1000}
	case domainlistings.TypeLend:
		params.Lend = &domainlistings.LendDetails{WindowStart: time.Now(), WindowEnd: time.Now().Add(24 * time.Hour)}
	}
	listing, err := domainlistings.NewListing(params)
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, factory.ListingsRepo.Save(context.Background(), listing))
	return listing
}

func openConversation(t *testing.T, factory memory.Factory, box *memory.Outbox, listingID, caller, counterparty string) string {
	t.Helper()
	handler := &OpenConversationHandler{UoWFactory: factory, Outbox: box}
	result, err := handler.Handle(context.Background(), OpenConversationCommand{
		ListingID:      listingID,
		CallerID:       caller,
		CounterpartyID: counterparty,
	})
	require.NoError(t, err)
	return result.ID
}

func TestOpenConversationCreatesAndReuses(t *testing.T) {
	factory, box := newTestEnv()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)

	first := openConversation(t, factory, box, "l1", "bob", "")
	second := openConversation(t, factory, box, "l1", "bob", "")
	require.Equal(t, first, second)

	// The owner reaching out lands on the same thread.
	fromOwner := openConversation(t, factory, box, "l1", "alice", "bob")
	require.Equal(t, first, fromOwner)
}

func TestOpenConversationOwnerInitiatedReadFlags(t *testing.T) {
	factory, box := newTestEnv()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)

	conversationID := openConversation(t, factory, box, "l1", "alice", "bob")

	stored, err := factory.ConversationsRepo.ByID(context.Background(), domainnegotiation.ConversationID(conversationID))
	require.NoError(t, err)
	require.True(t, stored.Read["alice"])
	require.False(t, stored.Read["bob"])
}

func TestOpenConversationOwnerNeedsCounterparty(t *testing.T) {
	factory, box := newTestEnv()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	handler := &OpenConversationHandler{UoWFactory: factory, Outbox: box}

	_, err := handler.Handle(context.Background(), OpenConversationCommand{ListingID: "l1", CallerID: "alice"})
	require.Error(t, err)
	require.True(t, fault.IsInvalid(err))

	_, err = handler.Handle(context.Background(), OpenConversationCommand{ListingID: "l1", CallerID: "alice", CounterpartyID: "alice"})
	require.ErrorIs(t, err, domainnegotiation.ErrSelfConversation)
}

func TestOpenConversationUnknownListing(t *testing.T) {
	factory, box := newTestEnv()
	handler := &OpenConversationHandler{UoWFactory: factory, Outbox: box}
	_, err := handler.Handle(context.Background(), OpenConversationCommand{ListingID: "nope", CallerID: "bob"})
	require.True(t, fault.IsNotFound(err))
}

func TestSellDealLifecycle(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	listing := seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	conversationID := openConversation(t, factory, box, "l1", "bob", "")
	finalize := &FinalizeHandler{UoWFactory: factory, Outbox: box}

	// Owner cannot commit before the counterparty.
	_, err := finalize.Handle(ctx, FinalizeCommand{ConversationID: conversationID, CallerID: "alice"})
	require.ErrorIs(t, err, domainnegotiation.ErrOwnerFirst)

	result, err := finalize.Handle(ctx, FinalizeCommand{ConversationID: conversationID, CallerID: "bob"})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.StatusActive), result.Status)

	stored, err := factory.ListingsRepo.ByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domainlistings.StatusPending, stored.Status)

	result, err = finalize.Handle(ctx, FinalizeCommand{ConversationID: conversationID, CallerID: "alice"})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.StatusCompleted), result.Status)

	stored, err = factory.ListingsRepo.ByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domainlistings.StatusSold, stored.Status)

	page, err := factory.MessagesRepo.List(ctx, domainnegotiation.ConversationID(conversationID), 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, domainnegotiation.SystemSender, page.Items[0].SenderID)
	require.Equal(t, "Deal marked as complete", page.Items[0].Body)

	// Client retry after completion reports success without side effects.
	result, err = finalize.Handle(ctx, FinalizeCommand{ConversationID: conversationID, CallerID: "bob"})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.StatusCompleted), result.Status)
	page, err = factory.MessagesRepo.List(ctx, domainnegotiation.ConversationID(conversationID), 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestRetractRevertsPendingListing(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	listing := seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	conversationID := openConversation(t, factory, box, "l1", "bob", "")
	finalize := &FinalizeHandler{UoWFactory: factory, Outbox: box}
	retract := &RetractFinalizeHandler{UoWFactory: factory, Outbox: box}

	_, err := finalize.Handle(ctx, FinalizeCommand{ConversationID: conversationID, CallerID: "bob"})
	require.NoError(t, err)

	_, err = retract.Handle(ctx, RetractFinalizeCommand{ConversationID: conversationID, CallerID: "bob"})
	require.NoError(t, err)

	stored, err := factory.ListingsRepo.ByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domainlistings.StatusForSale, stored.Status)
}

func TestSendMessageFlow(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	conversationID := openConversation(t, factory, box, "l1", "bob", "")
	send := &SendMessageHandler{UoWFactory: factory, Outbox: box}

	message, err := send.Handle(ctx, SendMessageCommand{ConversationID: conversationID, SenderID: "bob", Body: "still available?"})
	require.NoError(t, err)
	require.Equal(t, "still available?", message.Body)

	_, err = send.Handle(ctx, SendMessageCommand{ConversationID: conversationID, SenderID: "mallory", Body: "hi"})
	require.ErrorIs(t, err, domainnegotiation.ErrNotParticipant)

	_, err = send.Handle(ctx, SendMessageCommand{ConversationID: conversationID, SenderID: domainnegotiation.SystemSender, Body: "hi"})
	require.True(t, fault.IsInvalid(err))

	// The recipient sees the unread flag until marking the thread read.
	conversation, err := factory.ConversationsRepo.ByID(ctx, domainnegotiation.ConversationID(conversationID))
	require.NoError(t, err)
	require.False(t, conversation.Read["alice"])

	markRead := &MarkReadHandler{UoWFactory: factory}
	result, err := markRead.Handle(ctx, MarkReadCommand{ConversationID: conversationID, CallerID: "alice"})
	require.NoError(t, err)
	require.False(t, result.HasUnread)
}

func TestTradeOfferHandler(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeTrade)
	conversationID := openConversation(t, factory, box, "l1", "bob", "")
	handler := &SetTradeOfferHandler{UoWFactory: factory}

	result, err := handler.Handle(ctx, SetTradeOfferCommand{ConversationID: conversationID, CallerID: "bob", Title: "Trackball"})
	require.NoError(t, err)
	require.Equal(t, "Trackball", result.TradeItems["bob"].Title)
	// The owner side was seeded from the listing at open time.
	require.Equal(t, "Test item", result.TradeItems["alice"].Title)

	seedListing(t, factory, "l2", "alice", domainlistings.TypeSell)
	sellConversation := openConversation(t, factory, box, "l2", "bob", "")
	_, err = handler.Handle(ctx, SetTradeOfferCommand{ConversationID: sellConversation, CallerID: "bob", Title: "Trackball"})
	require.ErrorIs(t, err, domainnegotiation.ErrNotTradeListing)
}

func TestLostAndFoundClaimFlow(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	listing := seedListing(t, factory, "l1", "carol", domainlistings.TypeLost)

	bobThread := openConversation(t, factory, box, "l1", "bob", "")
	daveThread := openConversation(t, factory, box, "l1", "dave", "")
	require.NotEqual(t, bobThread, daveThread)

	send := &SendMessageHandler{UoWFactory: factory, Outbox: box}
	_, err := send.Handle(ctx, SendMessageCommand{ConversationID: bobThread, SenderID: "bob", Body: "that's my scarf"})
	require.True(t, fault.IsInvalid(err), "chat must stay locked before claim approval")

	submit := &SubmitClaimHandler{UoWFactory: factory, Outbox: box}
	bobClaim, err := submit.Handle(ctx, SubmitClaimCommand{ConversationID: bobThread, ClaimantID: "bob", When: "monday", Where: "platform 4"})
	require.NoError(t, err)

	_, err = submit.Handle(ctx, SubmitClaimCommand{ConversationID: bobThread, ClaimantID: "bob"})
	require.ErrorIs(t, err, domainnegotiation.ErrDuplicateClaim)

	// The finder cannot claim their own found item.
	_, err = submit.Handle(ctx, SubmitClaimCommand{ConversationID: bobThread, ClaimantID: "carol"})
	require.True(t, fault.IsInvalid(err))

	daveClaim, err := submit.Handle(ctx, SubmitClaimCommand{ConversationID: daveThread, ClaimantID: "dave", When: "tuesday"})
	require.NoError(t, err)

	decide := &DecideClaimHandler{UoWFactory: factory, Outbox: box}
	_, err = decide.Handle(ctx, DecideClaimCommand{ConversationID: bobThread, ClaimID: bobClaim.ID, DeciderID: "bob", Approve: true})
	require.ErrorIs(t, err, domainnegotiation.ErrNotListingOwner)

	approved, err := decide.Handle(ctx, DecideClaimCommand{ConversationID: bobThread, ClaimID: bobClaim.ID, DeciderID: "carol", Approve: true})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.ClaimApproved), approved.Approval)

	// Approval is scoped to this thread; the other claimant stays pending.
	other, err := factory.ClaimsRepo.ByID(ctx, domainnegotiation.ClaimID(daveClaim.ID))
	require.NoError(t, err)
	require.Equal(t, domainnegotiation.ClaimPending, other.Approval)

	conversation, err := factory.ConversationsRepo.ByID(ctx, domainnegotiation.ConversationID(bobThread))
	require.NoError(t, err)
	require.True(t, conversation.CanChat)
	require.Equal(t, "bob", conversation.ApprovedClaimant)

	// Chat opens for the approved claimant.
	_, err = send.Handle(ctx, SendMessageCommand{ConversationID: bobThread, SenderID: "bob", Body: "when can I pick it up?"})
	require.NoError(t, err)

	finalize := &FinalizeHandler{UoWFactory: factory, Outbox: box}
	_, err = finalize.Handle(ctx, FinalizeCommand{ConversationID: daveThread, CallerID: "dave"})
	require.ErrorIs(t, err, domainnegotiation.ErrClaimNotApproved)

	_, err = finalize.Handle(ctx, FinalizeCommand{ConversationID: bobThread, CallerID: "bob"})
	require.NoError(t, err)
	result, err := finalize.Handle(ctx, FinalizeCommand{ConversationID: bobThread, CallerID: "carol"})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.StatusCompleted), result.Status)

	stored, err := factory.ListingsRepo.ByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domainlistings.StatusClaimed, stored.Status)

	page, err := factory.MessagesRepo.List(ctx, domainnegotiation.ConversationID(bobThread), 10, "")
	require.NoError(t, err)
	last := page.Items[len(page.Items)-1]
	require.Equal(t, "Item has been returned to its owner", last.Body)
}

func TestRejectClaimKeepsChatLocked(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	seedListing(t, factory, "l1", "carol", domainlistings.TypeLost)
	thread := openConversation(t, factory, box, "l1", "bob", "")

	submit := &SubmitClaimHandler{UoWFactory: factory, Outbox: box}
	claim, err := submit.Handle(ctx, SubmitClaimCommand{ConversationID: thread, ClaimantID: "bob"})
	require.NoError(t, err)

	decide := &DecideClaimHandler{UoWFactory: factory, Outbox: box}
	rejected, err := decide.Handle(ctx, DecideClaimCommand{ConversationID: thread, ClaimID: claim.ID, DeciderID: "carol", Approve: false})
	require.NoError(t, err)
	require.Equal(t, string(domainnegotiation.ClaimRejected), rejected.Approval)

	send := &SendMessageHandler{UoWFactory: factory, Outbox: box}
	_, err = send.Handle(ctx, SendMessageCommand{ConversationID: thread, SenderID: "bob", Body: "please reconsider"})
	require.True(t, fault.IsInvalid(err))

	// A decided claim cannot be flipped.
	_, err = decide.Handle(ctx, DecideClaimCommand{ConversationID: thread, ClaimID: claim.ID, DeciderID: "carol", Approve: true})
	require.ErrorIs(t, err, domainnegotiation.ErrClaimDecided)
}

func TestListMessagesPagination(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	thread := openConversation(t, factory, box, "l1", "bob", "")
	send := &SendMessageHandler{UoWFactory: factory, Outbox: box}

	bodies := []string{"one", "two", "three", "four", "five"}
	for _, body := range bodies {
		_, err := send.Handle(ctx, SendMessageCommand{ConversationID: thread, SenderID: "bob", Body: body})
		require.NoError(t, err)
	}

	list := &ListMessagesHandler{UoWFactory: factory}
	page, err := list.Handle(ctx, ListMessagesQuery{ConversationID: thread, CallerID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "one", page.Items[0].Body)
	require.NotEmpty(t, page.NextCursor)

	page, err = list.Handle(ctx, ListMessagesQuery{ConversationID: thread, CallerID: "alice", Limit: 10, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.Equal(t, "three", page.Items[0].Body)
	require.Empty(t, page.NextCursor)

	_, err = list.Handle(ctx, ListMessagesQuery{ConversationID: thread, CallerID: "mallory"})
	require.ErrorIs(t, err, domainnegotiation.ErrNotParticipant)
}

func TestInboxOrdering(t *testing.T) {
	factory, box := newTestEnv()
	ctx := context.Background()
	seedListing(t, factory, "l1", "alice", domainlistings.TypeSell)
	seedListing(t, factory, "l2", "alice", domainlistings.TypeSell)

	first := openConversation(t, factory, box, "l1", "bob", "")
	second := openConversation(t, factory, box, "l2", "bob", "")

	send := &SendMessageHandler{UoWFactory: factory, Outbox: box}
	_, err := send.Handle(ctx, SendMessageCommand{ConversationID: first, SenderID: "bob", Body: "bump"})
	require.NoError(t, err)

	inbox := &ListMyConversationsHandler{UoWFactory: factory}
	collection, err := inbox.Handle(ctx, ListMyConversationsQuery{CallerID: "bob"})
	require.NoError(t, err)
	require.Len(t, collection.Items, 2)
	require.Equal(t, first, collection.Items[0].ID)
	require.Equal(t, second, collection.Items[1].ID)
}
