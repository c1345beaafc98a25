package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewListingValidation(t *testing.T) {
	now := time.Now()

	_, err := NewListing(CreateParams{ID: "l1", Owner: "alice", Type: TypeSell, Title: "  "})
	require.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewListing(CreateParams{ID: "l1", Owner: "", Type: TypeSell, Title: "Bike"})
	require.ErrorIs(t, err, ErrOwnerRequired)

	_, err = NewListing(CreateParams{
		ID: "l1", Owner: "alice", Type: TypeSell, Title: "Bike",
		Sell: &SellDetails{PriceCents: -1}, Now: now,
	})
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = NewListing(CreateParams{
		ID: "l1", Owner: "alice", Type: TypeLend, Title: "Drill",
		Lend: &LendDetails{WindowStart: now, WindowEnd: now}, Now: now,
	})
	require.ErrorIs(t, err, ErrLendWindow)
}

func TestNewListingStartsAtInitialStatus(t *testing.T) {
	listing, err := NewListing(CreateParams{
		ID: "l1", Owner: "carol", Type: TypeLost, Title: "Found: scarf", Now: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, listing.Status)
	require.Len(t, listing.PendingEvents(), 1)
	require.Equal(t, "listing.created", listing.PendingEvents()[0].EventName())
}

func TestSetStatusRecordsTransition(t *testing.T) {
	now := time.Now()
	listing, err := NewListing(CreateParams{ID: "l1", Owner: "alice", Type: TypeSell, Title: "Bike", Now: now})
	require.NoError(t, err)
	listing.ClearEvents()

	listing.SetStatus(StatusPending, now)
	require.Equal(t, StatusPending, listing.Status)
	require.Len(t, listing.PendingEvents(), 1)

	// Re-applying the current status is a no-op.
	listing.SetStatus(StatusPending, now.Add(time.Minute))
	require.Len(t, listing.PendingEvents(), 1)
}
