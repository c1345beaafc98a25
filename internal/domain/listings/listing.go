package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradepost/internal/domain/shared/events"
)

var (
	ErrTitleRequired = errors.New("listings: title is required")
	ErrOwnerRequired = errors.New("listings: owner id is required")
	ErrNegativePrice = errors.New("listings: price must be non-negative")
	ErrLendWindow    = errors.New("listings: lend window end must be after start")
	ErrNotFound      = errors.New("listings: not found")
)

type ListingID string
type OwnerID string

// Listing is an item post of type sell/trade/lend/lost. Its status vocabulary
// is scoped by type; once a conversation exists for the listing, status
// transitions are driven exclusively by the negotiation engine.
type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Type        ListingType
	Title       string
	Description string
	Status      Status
	ImageURL    string
	Condition   string

	// Type-specific payloads. Exactly one is meaningful per type.
	Sell  *SellDetails
	Trade *TradeDetails
	Lend  *LendDetails
	Lost  *LostDetails

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type SellDetails struct {
	PriceCents int64
}

type TradeDetails struct {
	InterestedIn string
}

type LendDetails struct {
	WindowStart time.Time
	WindowEnd   time.Time
}

type LostDetails struct {
	FoundLocation string
	FoundAt       time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	ListByOwner(ctx context.Context, owner OwnerID) ([]*Listing, error)
	Delete(ctx context.Context, id ListingID) error
}

type CreateParams struct {
	ID          ListingID
	Owner       OwnerID
	Type        ListingType
	Title       string
	Description string
	ImageURL    string
	Condition   string
	Sell        *SellDetails
	Trade       *TradeDetails
	Lend        *LendDetails
	Lost        *LostDetails
	Now         time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	initial, err := InitialStatus(params.Type)
	if err != nil {
		return nil, err
	}
	if params.Sell != nil && params.Sell.PriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if params.Lend != nil && !params.Lend.WindowEnd.After(params.Lend.WindowStart) {
		return nil, ErrLendWindow
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:          params.ID,
		Owner:       params.Owner,
		Type:        params.Type,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Status:      initial,
		ImageURL:    params.ImageURL,
		Condition:   params.Condition,
		Sell:        params.Sell,
		Trade:       params.Trade,
		Lend:        params.Lend,
		Lost:        params.Lost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.Record(ListingCreated{ListingID: l.ID, Owner: l.Owner, Type: l.Type, Status: l.Status, At: now})
	return l, nil
}

// SetStatus moves the listing into the given status. Callers are expected to
// pick statuses through the type registry; the listing itself only records
// the change.
func (l *Listing) SetStatus(status Status, now time.Time) {
	if l.Status == status {
		return
	}
	previous := l.Status
	l.Status = status
	l.UpdatedAt = now.UTC()
	l.Record(ListingStatusChanged{ListingID: l.ID, Type: l.Type, From: previous, To: status, At: l.UpdatedAt})
}

// Snapshot captures the listing fields a trade conversation seeds its owner
// offer from at creation time.
type Snapshot struct {
	Title     string
	ImageURL  string
	Condition string
}

func (l *Listing) Snapshot() Snapshot {
	return Snapshot{Title: l.Title, ImageURL: l.ImageURL, Condition: l.Condition}
}
