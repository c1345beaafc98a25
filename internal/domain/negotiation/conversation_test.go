package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/internal/domain/listings"
)

func openTestConversation(t *testing.T, listingType listings.ListingType) *Conversation {
	t.Helper()
	conversation, err := Open(OpenParams{
		ListingID:    "l1",
		ListingType:  listingType,
		Owner:        "alice",
		Counterparty: "bob",
		Seed:         listings.Snapshot{Title: "Mechanical keyboard", Condition: "like new"},
		Now:          time.Now(),
	})
	require.NoError(t, err)
	return conversation
}

func TestConversationIDForIsOrderInsensitive(t *testing.T) {
	a := ConversationIDFor("l1", listings.TypeSell, "alice", "bob")
	b := ConversationIDFor("l1", listings.TypeSell, "bob", "alice")
	require.Equal(t, a, b)

	other := ConversationIDFor("l2", listings.TypeSell, "alice", "bob")
	require.NotEqual(t, a, other)
}

func TestOpenRejectsSelfConversation(t *testing.T) {
	_, err := Open(OpenParams{ListingID: "l1", ListingType: listings.TypeSell, Owner: "alice", Counterparty: "alice", Now: time.Now()})
	require.ErrorIs(t, err, ErrSelfConversation)
}

func TestOpenSeedsTradeOfferAndReadFlags(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeTrade)
	require.Equal(t, "Mechanical keyboard", conversation.TradeItems["alice"].Title)

	// The counterparty created the thread, so only the owner starts unread.
	require.True(t, conversation.Read["bob"])
	require.False(t, conversation.Read["alice"])
}

func TestOpenReadFlagsFollowCreator(t *testing.T) {
	conversation, err := Open(OpenParams{
		ListingID:    "l1",
		ListingType:  listings.TypeSell,
		Owner:        "alice",
		Counterparty: "bob",
		Creator:      "alice",
		Now:          time.Now(),
	})
	require.NoError(t, err)

	// The owner reached out first, so the counterparty starts unread.
	require.True(t, conversation.Read["alice"])
	require.False(t, conversation.Read["bob"])

	_, err = Open(OpenParams{
		ListingID:    "l1",
		ListingType:  listings.TypeSell,
		Owner:        "alice",
		Counterparty: "bob",
		Creator:      "mallory",
		Now:          time.Now(),
	})
	require.Error(t, err)
}

func TestFinalizeCounterpartyFirstThenOwnerCompletes(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()

	require.NoError(t, conversation.Finalize("bob", now))
	require.Equal(t, 1, conversation.FinalizedCount())
	require.False(t, conversation.BothFinalized())

	require.NoError(t, conversation.Finalize("alice", now))
	require.True(t, conversation.BothFinalized())
}

func TestFinalizeOwnerCannotGoFirst(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	err := conversation.Finalize("alice", time.Now())
	require.ErrorIs(t, err, ErrOwnerFirst)
}

func TestFinalizeRejectsOutsider(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	err := conversation.Finalize("mallory", time.Now())
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestFinalizeIsIdempotentPerParticipant(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()
	require.NoError(t, conversation.Finalize("bob", now))
	conversation.ClearEvents()

	require.NoError(t, conversation.Finalize("bob", now))
	require.Empty(t, conversation.PendingEvents())
	require.Equal(t, 1, conversation.FinalizedCount())
}

func TestFinalizeAfterCompletionIsNoOpForCommitter(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()
	require.NoError(t, conversation.Finalize("bob", now))
	require.NoError(t, conversation.Finalize("alice", now))
	require.True(t, conversation.Complete(now))

	// A retried finalize from either committer succeeds silently.
	require.NoError(t, conversation.Finalize("bob", now))
	require.NoError(t, conversation.Finalize("alice", now))
}

func TestLostFinalizeRequiresApprovedClaim(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeLost)
	now := time.Now()

	err := conversation.Finalize("bob", now)
	require.ErrorIs(t, err, ErrClaimNotApproved)

	conversation.ApproveClaimant("bob", now)
	require.NoError(t, conversation.Finalize("bob", now))
}

func TestRetractClearsCommitment(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()
	require.NoError(t, conversation.Finalize("bob", now))
	require.NoError(t, conversation.Retract("bob", now))
	require.Equal(t, 0, conversation.FinalizedCount())

	// Retracting an absent commitment changes nothing.
	conversation.ClearEvents()
	require.NoError(t, conversation.Retract("bob", now))
	require.Empty(t, conversation.PendingEvents())
}

func TestRetractAfterCompletionFails(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()
	require.NoError(t, conversation.Finalize("bob", now))
	require.NoError(t, conversation.Finalize("alice", now))
	conversation.Complete(now)

	err := conversation.Retract("bob", now)
	require.ErrorIs(t, err, ErrCompleted)
}

func TestCompleteIsIdempotent(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	now := time.Now()
	require.True(t, conversation.Complete(now))
	require.False(t, conversation.Complete(now.Add(time.Minute)))
	require.Equal(t, now.UTC().Truncate(0), conversation.CompletedAt.Truncate(0))
}

func TestSetTradeOfferOnlyOnTradeListings(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	err := conversation.SetTradeOffer("bob", TradeOffer{Title: "Trackball"}, time.Now())
	require.ErrorIs(t, err, ErrNotTradeListing)

	trade := openTestConversation(t, listings.TypeTrade)
	require.NoError(t, trade.SetTradeOffer("bob", TradeOffer{Title: "Trackball"}, time.Now()))
	require.Equal(t, "Trackball", trade.TradeItems["bob"].Title)

	// Repeating overwrites the previous offer.
	require.NoError(t, trade.SetTradeOffer("bob", TradeOffer{Title: "Midi controller"}, time.Now()))
	require.Equal(t, "Midi controller", trade.TradeItems["bob"].Title)
}

func TestRecordMessageFlipsReadFlags(t *testing.T) {
	conversation := openTestConversation(t, listings.TypeSell)
	conversation.RecordMessage("alice", "still available?", time.Now())
	require.True(t, conversation.Read["alice"])
	require.False(t, conversation.Read["bob"])
	require.Equal(t, "still available?", conversation.Last.Text)

	// System messages refresh the snapshot but leave read flags alone.
	conversation.RecordMessage(SystemSender, "Deal marked as complete", time.Now())
	require.True(t, conversation.Read["alice"])
	require.False(t, conversation.Read["bob"])
	require.Equal(t, SystemSender, conversation.Last.SenderID)
}

func TestCompletionNoticePerType(t *testing.T) {
	require.Equal(t, "Deal marked as complete", CompletionNotice(listings.TypeSell))
	require.Equal(t, "Deal marked as complete", CompletionNotice(listings.TypeTrade))
	require.Equal(t, "Lending marked as complete", CompletionNotice(listings.TypeLend))
	require.Equal(t, "Item has been returned to its owner", CompletionNotice(listings.TypeLost))
}
