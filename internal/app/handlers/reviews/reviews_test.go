package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	negotiationapp "tradepost/internal/app/handlers/negotiation"
	"tradepost/internal/infra/storage/memory"

	domainlistings "tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
	domainusers "tradepost/internal/domain/users"
)

// completedDeal seeds a sold listing with a finished conversation between
// alice (owner) and bob.
func completedDeal(t *testing.T, factory memory.Factory) string {
	t.Helper()
	ctx := context.Background()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID: "l1", Owner: "alice", Type: domainlistings.TypeSell, Title: "Bike",
		Sell: &domainlistings.SellDetails{PriceCents: 1000}, Now: time.Now(),
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, factory.ListingsRepo.Save(ctx, listing))

	box := memory.NewOutbox()
	open := &negotiationapp.OpenConversationHandler{UoWFactory: factory, Outbox: box}
	opened, err := open.Handle(ctx, negotiationapp.OpenConversationCommand{ListingID: "l1", CallerID: "bob"})
	require.NoError(t, err)

	finalize := &negotiationapp.FinalizeHandler{UoWFactory: factory, Outbox: box}
	_, err = finalize.Handle(ctx, negotiationapp.FinalizeCommand{ConversationID: opened.ID, CallerID: "bob"})
	require.NoError(t, err)
	_, err = finalize.Handle(ctx, negotiationapp.FinalizeCommand{ConversationID: opened.ID, CallerID: "alice"})
	require.NoError(t, err)
	return opened.ID
}

func TestSubmitReviewAfterCompletedDeal(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	conversationID := completedDeal(t, factory)
	handler := &SubmitReviewHandler{UoWFactory: factory}

	review, err := handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "bob", Rating: 4, Text: "smooth handover"})
	require.NoError(t, err)
	require.Equal(t, "alice", review.RevieweeID)

	profile, err := factory.UsersRepo.ByID(ctx, domainusers.UserID("alice"))
	require.NoError(t, err)
	require.Equal(t, 4.0, profile.TrustScore)
	require.Equal(t, 1, profile.ReviewCount)

	_, err = handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "bob", Rating: 5})
	require.ErrorIs(t, err, domainreviews.ErrDuplicate)
}

func TestSubmitReviewGates(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	conversationID := completedDeal(t, factory)
	handler := &SubmitReviewHandler{UoWFactory: factory}

	_, err := handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "alice", Rating: 5})
	require.ErrorIs(t, err, ErrOwnerExcluded)

	_, err = handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "mallory", Rating: 5})
	require.ErrorIs(t, err, domainnegotiation.ErrNotParticipant)

	_, err = handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "bob", Rating: 9})
	require.Error(t, err)
}

func TestSubmitReviewRequiresCompletion(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID: "l1", Owner: "alice", Type: domainlistings.TypeSell, Title: "Bike", Now: time.Now(),
	})
	require.NoError(t, err)
	listing.ClearEvents()
	require.NoError(t, factory.ListingsRepo.Save(ctx, listing))

	open := &negotiationapp.OpenConversationHandler{UoWFactory: factory, Outbox: memory.NewOutbox()}
	opened, err := open.Handle(ctx, negotiationapp.OpenConversationCommand{ListingID: "l1", CallerID: "bob"})
	require.NoError(t, err)

	handler := &SubmitReviewHandler{UoWFactory: factory}
	_, err = handler.Handle(ctx, SubmitReviewCommand{ConversationID: opened.ID, ReviewerID: "bob", Rating: 5})
	require.ErrorIs(t, err, ErrDealNotCompleted)

	eligibility := &ReviewEligibilityHandler{UoWFactory: factory}
	check, err := eligibility.Handle(ctx, ReviewEligibilityQuery{ConversationID: opened.ID, ReviewerID: "bob"})
	require.NoError(t, err)
	require.False(t, check.Eligible)
	require.NotEmpty(t, check.Reason)
}

func TestReviewEligibilityPositive(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	conversationID := completedDeal(t, factory)

	eligibility := &ReviewEligibilityHandler{UoWFactory: factory}
	check, err := eligibility.Handle(ctx, ReviewEligibilityQuery{ConversationID: conversationID, ReviewerID: "bob"})
	require.NoError(t, err)
	require.True(t, check.Eligible)
	require.Empty(t, check.Reason)
}

func TestTrustScoreAveragesAcrossDeals(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	conversationID := completedDeal(t, factory)
	handler := &SubmitReviewHandler{UoWFactory: factory}

	_, err := handler.Handle(ctx, SubmitReviewCommand{ConversationID: conversationID, ReviewerID: "bob", Rating: 5})
	require.NoError(t, err)

	// A second completed deal for the same reviewee.
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID: "r2", ConversationID: "other", ReviewerID: "dave", RevieweeID: "alice", Rating: 4, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.ReviewsRepo.Save(ctx, review))

	listHandler := &ListRevieweeReviewsHandler{UoWFactory: factory}
	collection, err := listHandler.Handle(ctx, ListRevieweeReviewsQuery{RevieweeID: "alice"})
	require.NoError(t, err)
	require.Equal(t, 2, collection.Total)
	require.Equal(t, 4.5, domainreviews.TrustScore([]*domainreviews.Review{{Rating: 5}, {Rating: 4}}))
}
