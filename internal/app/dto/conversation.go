package dto

import (
	"time"

	domainnegotiation "tradepost/internal/domain/negotiation"
)

// TradeOffer is one side's offered item in a trade negotiation.
type TradeOffer struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// LastMessage is the denormalized snapshot shown in conversation lists.
type LastMessage struct {
	Text     string    `json:"text"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

// Conversation describes a negotiation thread for the API layer.
type Conversation struct {
	ID               string                `json:"id"`
	ListingID        string                `json:"listing_id"`
	ListingType      string                `json:"listing_type"`
	OwnerID          string                `json:"owner_id"`
	CounterpartyID   string                `json:"counterparty_id"`
	Status           string                `json:"status"`
	Finalized        map[string]bool       `json:"finalized"`
	LastMessage      *LastMessage          `json:"last_message,omitempty"`
	HasUnread        bool                  `json:"has_unread"`
	TradeItems       map[string]TradeOffer `json:"trade_items,omitempty"`
	ClaimSubmitted   bool                  `json:"claim_submitted,omitempty"`
	CanChat          bool                  `json:"can_chat,omitempty"`
	ApprovedClaimant string                `json:"approved_claimant_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty"`
}

type ConversationCollection struct {
	Items []Conversation `json:"items"`
}

// MapConversation builds the DTO as seen by viewerID (unread flag is
// per-participant).
func MapConversation(c *domainnegotiation.Conversation, viewerID string) Conversation {
	if c == nil {
		return Conversation{}
	}
	out := Conversation{
		ID:               string(c.ID),
		ListingID:        string(c.ListingID),
		ListingType:      string(c.ListingType),
		OwnerID:          c.Owner,
		CounterpartyID:   c.Counterparty,
		Status:           string(c.Status),
		Finalized:        map[string]bool{},
		HasUnread:        viewerID != "" && !c.Read[viewerID],
		ClaimSubmitted:   c.ClaimSubmitted,
		CanChat:          c.CanChat,
		ApprovedClaimant: c.ApprovedClaimant,
		CreatedAt:        c.CreatedAt,
	}
	for participant, done := range c.Finalized {
		if done {
			out.Finalized[participant] = true
		}
	}
	if c.Last != nil {
		out.LastMessage = &LastMessage{Text: c.Last.Text, SenderID: c.Last.SenderID, SentAt: c.Last.SentAt}
	}
	if len(c.TradeItems) > 0 {
		out.TradeItems = make(map[string]TradeOffer, len(c.TradeItems))
		for participant, offer := range c.TradeItems {
			out.TradeItems[participant] = TradeOffer{Title: offer.Title, ImageURL: offer.ImageURL, Condition: offer.Condition}
		}
	}
	if !c.CompletedAt.IsZero() {
		completed := c.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}
