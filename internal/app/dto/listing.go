package dto

import (
	"time"

	domainlistings "tradepost/internal/domain/listings"
)

// Listing is the public listing payload.
type Listing struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ImageURL    string     `json:"image_url,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	PriceCents  *int64     `json:"price_cents,omitempty"`
	TradeFor    string     `json:"trade_for,omitempty"`
	LendStart   *time.Time `json:"lend_window_start,omitempty"`
	LendEnd     *time.Time `json:"lend_window_end,omitempty"`
	FoundAt     *time.Time `json:"found_at,omitempty"`
	FoundWhere  string     `json:"found_location,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListingCollection struct {
	Items []Listing `json:"items"`
}

func MapListing(l *domainlistings.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	out := Listing{
		ID:          string(l.ID),
		OwnerID:     string(l.Owner),
		Type:        string(l.Type),
		Title:       l.Title,
		Description: l.Description,
		Status:      string(l.Status),
		ImageURL:    l.ImageURL,
		Condition:   l.Condition,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Sell != nil {
		price := l.Sell.PriceCents
		out.PriceCents = &price
	}
	if l.Trade != nil {
		out.TradeFor = l.Trade.InterestedIn
	}
	if l.Lend != nil {
		start, end := l.Lend.WindowStart, l.Lend.WindowEnd
		out.LendStart = &start
		out.LendEnd = &end
	}
	if l.Lost != nil {
		found := l.Lost.FoundAt
		out.FoundAt = &found
		out.FoundWhere = l.Lost.FoundLocation
	}
	return out
}
