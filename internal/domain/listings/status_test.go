package listings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradepost/internal/domain/shared/fault"
)

func TestParseType(t *testing.T) {
	for _, raw := range []string{"sell", "trade", "lend", "lost"} {
		parsed, err := ParseType(raw)
		require.NoError(t, err)
		require.Equal(t, ListingType(raw), parsed)
	}

	_, err := ParseType("giveaway")
	require.Error(t, err)
	require.Equal(t, fault.KindConfig, fault.KindOf(err))
}

func TestStatusRegistry(t *testing.T) {
	cases := []struct {
		listingType ListingType
		initial     Status
		terminal    Status
	}{
		{TypeSell, StatusForSale, StatusSold},
		{TypeTrade, StatusAvailable, StatusTraded},
		{TypeLend, StatusAvailable, StatusBorrowed},
		{TypeLost, StatusWaiting, StatusClaimed},
	}
	for _, tc := range cases {
		initial, err := InitialStatus(tc.listingType)
		require.NoError(t, err)
		require.Equal(t, tc.initial, initial)

		terminal, err := TerminalStatus(tc.listingType)
		require.NoError(t, err)
		require.Equal(t, tc.terminal, terminal)
	}
}

func TestStatusRegistryUnknownType(t *testing.T) {
	_, err := InitialStatus("warranty")
	require.Error(t, err)
	_, err = TerminalStatus("warranty")
	require.Error(t, err)
}
