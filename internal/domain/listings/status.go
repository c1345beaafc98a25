package listings

import "tradepost/internal/domain/shared/fault"

// ListingType is the tagged variant a listing belongs to. Each type owns a
// finite status vocabulary with a fixed initial and terminal value.
type ListingType string

const (
	TypeSell  ListingType = "sell"
	TypeTrade ListingType = "trade"
	TypeLend  ListingType = "lend"
	TypeLost  ListingType = "lost"
)

type Status string

const (
	StatusForSale   Status = "For Sale"
	StatusAvailable Status = "Available"
	StatusWaiting   Status = "Waiting To Be Claimed"
	// StatusPending is shared by all types while exactly one party has finalized.
	StatusPending  Status = "Pending"
	StatusSold     Status = "Sold"
	StatusBorrowed Status = "Borrowed"
	StatusTraded   Status = "Traded"
	StatusClaimed  Status = "Claimed"
)

// ParseType validates a raw listing type string.
func ParseType(raw string) (ListingType, error) {
	t := ListingType(raw)
	switch t {
	case TypeSell, TypeTrade, TypeLend, TypeLost:
		return t, nil
	}
	return "", fault.Config("listings: unknown listing type %q", raw)
}

// InitialStatus returns the status a freshly created listing starts with.
func InitialStatus(t ListingType) (Status, error) {
	switch t {
	case TypeSell:
		return StatusForSale, nil
	case TypeTrade, TypeLend:
		return StatusAvailable, nil
	case TypeLost:
		return StatusWaiting, nil
	}
	return "", fault.Config("listings: unknown listing type %q", t)
}

// TerminalStatus returns the deal-closed status for a listing type.
func TerminalStatus(t ListingType) (Status, error) {
	switch t {
	case TypeSell:
		return StatusSold, nil
	case TypeTrade:
		return StatusTraded, nil
	case TypeLend:
		return StatusBorrowed, nil
	case TypeLost:
		return StatusClaimed, nil
	}
	return "", fault.Config("listings: unknown listing type %q", t)
}
