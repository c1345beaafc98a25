package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tradepost/internal/domain/listings"
	domainnegotiation "tradepost/internal/domain/negotiation"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection("agg_conversation")}
}

func (r *ConversationRepository) ByID(ctx context.Context, id domainnegotiation.ConversationID) (*domainnegotiation.Conversation, error) {
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainnegotiation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) Save(ctx context.Context, c *domainnegotiation.Conversation) error {
	doc := newConversationDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

func (r *ConversationRepository) ListByParticipant(ctx context.Context, participantID string) ([]*domainnegotiation.Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner": participantID},
		bson.M{"counterparty": participantID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainnegotiation.Conversation
	for cur.Next(ctx) {
		var doc conversationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type conversationDocument struct {
	ID           string                   `bson:"_id"`
	ListingID    string                   `bson:"listing_id"`
	ListingType  string                   `bson:"listing_type"`
	Owner        string                   `bson:"owner"`
	Counterparty string                   `bson:"counterparty"`
	Status       string                   `bson:"status"`
	Finalized    map[string]bool          `bson:"finalized"`
	Read         map[string]bool          `bson:"read"`
	Last         *lastMessageDocument     `bson:"last,omitempty"`
	TradeItems   map[string]tradeDocument `bson:"trade_items,omitempty"`

	ClaimSubmitted   bool   `bson:"claim_submitted"`
	CanChat          bool   `bson:"can_chat"`
	ApprovedClaimant string `bson:"approved_claimant,omitempty"`

	CreatedAt   int64 `bson:"created_at"`
	UpdatedAt   int64 `bson:"updated_at"`
	CompletedAt int64 `bson:"completed_at,omitempty"`
	Version     int64 `bson:"version"`
}

type lastMessageDocument struct {
	Text     string `bson:"text"`
	SenderID string `bson:"sender_id"`
	SentAt   int64  `bson:"sent_at"`
}

type tradeDocument struct {
	Title     string `bson:"title"`
	ImageURL  string `bson:"image_url,omitempty"`
	Condition string `bson:"condition,omitempty"`
}

func newConversationDocument(c *domainnegotiation.Conversation) conversationDocument {
	doc := conversationDocument{
		ID:               string(c.ID),
		ListingID:        string(c.ListingID),
		ListingType:      string(c.ListingType),
		Owner:            c.Owner,
		Counterparty:     c.Counterparty,
		Status:           string(c.Status),
		Finalized:        c.Finalized,
		Read:             c.Read,
		ClaimSubmitted:   c.ClaimSubmitted,
		CanChat:          c.CanChat,
		ApprovedClaimant: c.ApprovedClaimant,
		CreatedAt:        c.CreatedAt.UnixMilli(),
		UpdatedAt:        c.UpdatedAt.UnixMilli(),
		Version:          c.Version,
	}
	if c.Last != nil {
		doc.Last = &lastMessageDocument{Text: c.Last.Text, SenderID: c.Last.SenderID, SentAt: c.Last.SentAt.UnixMilli()}
	}
	if len(c.TradeItems) > 0 {
		doc.TradeItems = make(map[string]tradeDocument, len(c.TradeItems))
		for participant, offer := range c.TradeItems {
			doc.TradeItems[participant] = tradeDocument{Title: offer.Title, ImageURL: offer.ImageURL, Condition: offer.Condition}
		}
	}
	if !c.CompletedAt.IsZero() {
		doc.CompletedAt = c.CompletedAt.UnixMilli()
	}
	return doc
}

func (d conversationDocument) toAggregate() *domainnegotiation.Conversation {
	c := &domainnegotiation.Conversation{
		ID:               domainnegotiation.ConversationID(d.ID),
		ListingID:        listings.ListingID(d.ListingID),
		ListingType:      listings.ListingType(d.ListingType),
		Owner:            d.Owner,
		Counterparty:     d.Counterparty,
		Status:           domainnegotiation.ConversationStatus(d.Status),
		Finalized:        d.Finalized,
		Read:             d.Read,
		ClaimSubmitted:   d.ClaimSubmitted,
		CanChat:          d.CanChat,
		ApprovedClaimant: d.ApprovedClaimant,
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
	if c.Finalized == nil {
		c.Finalized = map[string]bool{}
	}
	if c.Read == nil {
		c.Read = map[string]bool{}
	}
	if d.Last != nil {
		c.Last = &domainnegotiation.LastMessage{Text: d.Last.Text, SenderID: d.Last.SenderID, SentAt: timestampToTime(d.Last.SentAt)}
	}
	if len(d.TradeItems) > 0 {
		c.TradeItems = make(map[string]domainnegotiation.TradeOffer, len(d.TradeItems))
		for participant, offer := range d.TradeItems {
			c.TradeItems[participant] = domainnegotiation.TradeOffer{Title: offer.Title, ImageURL: offer.ImageURL, Condition: offer.Condition}
		}
	}
	if d.CompletedAt != 0 {
		c.CompletedAt = timestampToTime(d.CompletedAt)
	}
	return c
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
