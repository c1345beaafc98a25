package negotiation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/domain/listings"
	"tradepost/internal/domain/shared/events"
	"tradepost/internal/domain/shared/fault"
)

var (
	ErrNotFound         = fault.Wrap(fault.KindNotFound, errors.New("negotiation: conversation not found"))
	ErrSelfConversation = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: owner and counterparty must differ"))
	ErrNotParticipant   = fault.Wrap(fault.KindForbidden, errors.New("negotiation: caller is not a conversation participant"))
	ErrNotTradeListing  = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: trade offers require a trade listing"))
	ErrCompleted        = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: conversation already completed"))
	ErrOwnerFirst       = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: owner may finalize only after the counterparty"))
	ErrClaimNotApproved = fault.Wrap(fault.KindForbidden, errors.New("negotiation: claim must be approved before finalizing"))
)

type ConversationID string

type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusCompleted ConversationStatus = "completed"
)

// conversationNamespace seeds deterministic conversation ids so a repeated
// first contact for the same (listing, pair) lands on the same document.
var conversationNamespace = uuid.MustParse("7d0b3a52-9c1f-4a38-8f1e-2a6bfb1d5a90")

// ConversationIDFor derives the id for a (listing, type, participant pair)
// triple. The pair is sorted so either side computes the same id.
func ConversationIDFor(listingID listings.ListingID, t listings.ListingType, a, b string) ConversationID {
	pair := []string{a, b}
	sort.Strings(pair)
	seed := strings.Join([]string{string(listingID), string(t), pair[0], pair[1]}, "|")
	return ConversationID(uuid.NewSHA1(conversationNamespace, []byte(seed)).String())
}

// TradeOffer describes one side's offered item in a trade negotiation.
type TradeOffer struct {
	Title     string
	ImageURL  string
	Condition string
}

// LastMessage is the denormalized snapshot consumers derive unread badges from.
type LastMessage struct {
	Text     string
	SenderID string
	SentAt   time.Time
}

// Conversation tracks two parties negotiating one listing: the message
// snapshot, per-participant finalization flags and, for lost items, the
// claim gate. It is never hard-deleted.
type Conversation struct {
	ID           ConversationID
	ListingID    listings.ListingID
	ListingType  listings.ListingType
	Owner        string
	Counterparty string
	Status       ConversationStatus

	Finalized map[string]bool
	Read      map[string]bool
	Last      *LastMessage

	// Trade flow only.
	TradeItems map[string]TradeOffer

	// Lost-and-found flow only.
	ClaimSubmitted   bool
	CanChat          bool
	ApprovedClaimant string

	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ConversationID) (*Conversation, error)
	Save(ctx context.Context, conversation *Conversation) error
	ListByParticipant(ctx context.Context, participantID string) ([]*Conversation, error)
}

type OpenParams struct {
	ListingID    listings.ListingID
	ListingType  listings.ListingType
	Owner        string
	Counterparty string
	// Creator is the participant who initiated the thread. Empty defaults
	// to the counterparty, the usual first-contact direction.
	Creator string
	// Seed is the listing snapshot a trade conversation pre-fills the
	// owner's offer from.
	Seed listings.Snapshot
	Now  time.Time
}

// Open creates a new active conversation. The creator starts read and the
// other side starts unread.
func Open(params OpenParams) (*Conversation, error) {
	if strings.TrimSpace(params.Owner) == "" || strings.TrimSpace(params.Counterparty) == "" {
		return nil, fault.InvalidOperation("negotiation: both participant ids are required")
	}
	if params.Owner == params.Counterparty {
		return nil, ErrSelfConversation
	}
	if _, err := listings.InitialStatus(params.ListingType); err != nil {
		return nil, err
	}
	creator := params.Creator
	if creator == "" {
		creator = params.Counterparty
	}
	if creator != params.Owner && creator != params.Counterparty {
		return nil, fault.InvalidOperation("negotiation: creator must be a participant")
	}
	other := params.Owner
	if creator == params.Owner {
		other = params.Counterparty
	}
	now := params.Now.UTC()
	c := &Conversation{
		ID:           ConversationIDFor(params.ListingID, params.ListingType, params.Owner, params.Counterparty),
		ListingID:    params.ListingID,
		ListingType:  params.ListingType,
		Owner:        params.Owner,
		Counterparty: params.Counterparty,
		Status:       StatusActive,
		Finalized:    map[string]bool{},
		Read:         map[string]bool{creator: true, other: false},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if params.ListingType == listings.TypeTrade {
		c.TradeItems = map[string]TradeOffer{
			params.Owner: {Title: params.Seed.Title, ImageURL: params.Seed.ImageURL, Condition: params.Seed.Condition},
		}
	}
	c.Record(ConversationOpened{ConversationID: c.ID, ListingID: c.ListingID, ListingType: c.ListingType, Owner: c.Owner, Counterparty: c.Counterparty, At: now})
	return c, nil
}

func (c *Conversation) IsParticipant(id string) bool {
	return id == c.Owner && id != "" || id == c.Counterparty && id != ""
}

// OtherParticipant returns the participant opposite to id.
func (c *Conversation) OtherParticipant(id string) string {
	if id == c.Owner {
		return c.Counterparty
	}
	return c.Owner
}

func (c *Conversation) FinalizedCount() int {
	count := 0
	for _, done := range c.Finalized {
		if done {
			count++
		}
	}
	return count
}

func (c *Conversation) BothFinalized() bool {
	return c.Finalized[c.Owner] && c.Finalized[c.Counterparty]
}

// Finalize records a participant's commitment to close the deal.
// The owner can only counter-finalize after the counterparty committed, and
// a lost-item counterparty must hold the approved claim. Calling it again
// once the conversation is completed is a no-op so client retries succeed.
func (c *Conversation) Finalize(participantID string, now time.Time) error {
	if !c.IsParticipant(participantID) {
		return ErrNotParticipant
	}
	if c.Status == StatusCompleted {
		if c.Finalized[participantID] {
			return nil
		}
		return ErrCompleted
	}
	if participantID == c.Owner && !c.Finalized[c.Counterparty] {
		return ErrOwnerFirst
	}
	if c.ListingType == listings.TypeLost && participantID == c.Counterparty && c.ApprovedClaimant != participantID {
		return ErrClaimNotApproved
	}
	if c.Finalized[participantID] {
		return nil
	}
	if c.Finalized == nil {
		c.Finalized = map[string]bool{}
	}
	c.Finalized[participantID] = true
	c.UpdatedAt = now.UTC()
	c.Record(ParticipantFinalized{ConversationID: c.ID, ListingID: c.ListingID, ParticipantID: participantID, At: c.UpdatedAt})
	return nil
}

// Retract clears a participant's finalize flag. Allowed any time before both
// sides have committed.
func (c *Conversation) Retract(participantID string, now time.Time) error {
	if !c.IsParticipant(participantID) {
		return ErrNotParticipant
	}
	if c.Status == StatusCompleted {
		return ErrCompleted
	}
	if !c.Finalized[participantID] {
		return nil
	}
	c.Finalized[participantID] = false
	c.UpdatedAt = now.UTC()
	c.Record(FinalizeRetracted{ConversationID: c.ID, ListingID: c.ListingID, ParticipantID: participantID, At: c.UpdatedAt})
	return nil
}

// Complete moves the conversation to its terminal status. Idempotent: a
// repeated call reports false and changes nothing.
func (c *Conversation) Complete(now time.Time) bool {
	if c.Status == StatusCompleted {
		return false
	}
	c.Status = StatusCompleted
	c.UpdatedAt = now.UTC()
	c.CompletedAt = c.UpdatedAt
	c.Record(DealCompleted{ConversationID: c.ID, ListingID: c.ListingID, ListingType: c.ListingType, At: c.UpdatedAt})
	return true
}

// SetTradeOffer stores participantID's offered item. Trade listings only.
func (c *Conversation) SetTradeOffer(participantID string, offer TradeOffer, now time.Time) error {
	if !c.IsParticipant(participantID) {
		return ErrNotParticipant
	}
	if c.ListingType != listings.TypeTrade {
		return ErrNotTradeListing
	}
	if c.Status == StatusCompleted {
		return ErrCompleted
	}
	if c.TradeItems == nil {
		c.TradeItems = map[string]TradeOffer{}
	}
	c.TradeItems[participantID] = offer
	c.UpdatedAt = now.UTC()
	return nil
}

// RecordMessage refreshes the last-message snapshot after an append. The
// sender ends up read, the other participant unread. System messages leave
// read flags alone.
func (c *Conversation) RecordMessage(senderID, text string, at time.Time) {
	c.Last = &LastMessage{Text: text, SenderID: senderID, SentAt: at.UTC()}
	c.UpdatedAt = at.UTC()
	if senderID == SystemSender {
		return
	}
	if c.Read == nil {
		c.Read = map[string]bool{}
	}
	c.Read[senderID] = true
	c.Read[c.OtherParticipant(senderID)] = false
}

func (c *Conversation) MarkRead(participantID string) error {
	if !c.IsParticipant(participantID) {
		return ErrNotParticipant
	}
	if c.Read == nil {
		c.Read = map[string]bool{}
	}
	c.Read[participantID] = true
	return nil
}

// MarkClaimSubmitted flags that at least one claim exists on this conversation.
func (c *Conversation) MarkClaimSubmitted(now time.Time) {
	c.ClaimSubmitted = true
	c.UpdatedAt = now.UTC()
}

// ApproveClaimant opens the chat for the approved claimant.
func (c *Conversation) ApproveClaimant(claimantID string, now time.Time) {
	c.CanChat = true
	c.ApprovedClaimant = claimantID
	c.UpdatedAt = now.UTC()
}

// CompletionNotice is the system message text appended when a deal closes.
func CompletionNotice(t listings.ListingType) string {
	switch t {
	case listings.TypeLend:
		return "Lending marked as complete"
	case listings.TypeLost:
		return "Item has been returned to its owner"
	default:
		return "Deal marked as complete"
	}
}
