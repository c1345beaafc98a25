package negotiation

import (
	"time"

	"tradepost/internal/domain/listings"
)

type ConversationOpened struct {
	ConversationID ConversationID
	ListingID      listings.ListingID
	ListingType    listings.ListingType
	Owner          string
	Counterparty   string
	At             time.Time
}

func (e ConversationOpened) EventName() string     { return "conversation.opened" }
func (e ConversationOpened) AggregateID() string   { return string(e.ConversationID) }
func (e ConversationOpened) OccurredAt() time.Time { return e.At }

type ParticipantFinalized struct {
	ConversationID ConversationID
	ListingID      listings.ListingID
	ParticipantID  string
	At             time.Time
}

func (e ParticipantFinalized) EventName() string     { return "conversation.finalized" }
func (e ParticipantFinalized) AggregateID() string   { return string(e.ConversationID) }
func (e ParticipantFinalized) OccurredAt() time.Time { return e.At }

type FinalizeRetracted struct {
	ConversationID ConversationID
	ListingID      listings.ListingID
	ParticipantID  string
	At             time.Time
}

func (e FinalizeRetracted) EventName() string     { return "conversation.finalize_retracted" }
func (e FinalizeRetracted) AggregateID() string   { return string(e.ConversationID) }
func (e FinalizeRetracted) OccurredAt() time.Time { return e.At }

type DealCompleted struct {
	ConversationID ConversationID
	ListingID      listings.ListingID
	ListingType    listings.ListingType
	At             time.Time
}

func (e DealCompleted) EventName() string     { return "conversation.deal_completed" }
func (e DealCompleted) AggregateID() string   { return string(e.ConversationID) }
func (e DealCompleted) OccurredAt() time.Time { return e.At }

type ClaimSubmitted struct {
	ConversationID ConversationID
	ClaimID        ClaimID
	ClaimantID     string
	At             time.Time
}

func (e ClaimSubmitted) EventName() string     { return "conversation.claim_submitted" }
func (e ClaimSubmitted) AggregateID() string   { return string(e.ConversationID) }
func (e ClaimSubmitted) OccurredAt() time.Time { return e.At }

type ClaimDecided struct {
	ConversationID ConversationID
	ClaimID        ClaimID
	ClaimantID     string
	Approved       bool
	At             time.Time
}

func (e ClaimDecided) EventName() string     { return "conversation.claim_decided" }
func (e ClaimDecided) AggregateID() string   { return string(e.ConversationID) }
func (e ClaimDecided) OccurredAt() time.Time { return e.At }

type MessageSent struct {
	ConversationID ConversationID
	MessageID      MessageID
	SenderID       string
	Kind           MessageKind
	At             time.Time
}

func (e MessageSent) EventName() string     { return "conversation.message_sent" }
func (e MessageSent) AggregateID() string   { return string(e.ConversationID) }
func (e MessageSent) OccurredAt() time.Time { return e.At }
