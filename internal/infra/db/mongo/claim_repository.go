package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnegotiation "tradepost/internal/domain/negotiation"
)

type ClaimRepository struct {
	col *mongo.Collection
}

func NewClaimRepository(db *mongo.Database) *ClaimRepository {
	return &ClaimRepository{col: db.Collection("conversation_claims")}
}

func (r *ClaimRepository) ByID(ctx context.Context, id domainnegotiation.ClaimID) (*domainnegotiation.Claim, error) {
	var doc claimDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainnegotiation.ErrClaimNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ClaimRepository) ByConversationAndClaimant(ctx context.Context, conversationID domainnegotiation.ConversationID, claimantID string) (*domainnegotiation.Claim, error) {
	filter := bson.M{"conversation_id": conversationID, "claimant_id": claimantID}
	var doc claimDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainnegotiation.ErrClaimNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ClaimRepository) ListByConversation(ctx context.Context, conversationID domainnegotiation.ConversationID) ([]*domainnegotiation.Claim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainnegotiation.Claim
	for cur.Next(ctx) {
		var doc claimDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ClaimRepository) Save(ctx context.Context, cl *domainnegotiation.Claim) error {
	doc := newClaimDocument(cl)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// SaveAll writes the whole claim set in one bulk operation. Callers run it
// inside the session transaction, so a partially applied decision never lands.
func (r *ClaimRepository) SaveAll(ctx context.Context, claims []*domainnegotiation.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(claims))
	for _, cl := range claims {
		doc := newClaimDocument(cl)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	_, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

type claimDocument struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	ClaimantID     string `bson:"claimant_id"`
	When           string `bson:"when,omitempty"`
	Where          string `bson:"where,omitempty"`
	Details        string `bson:"details,omitempty"`
	Approval       string `bson:"approval"`
	SubmittedAt    int64  `bson:"submitted_at"`
	DecidedAt      int64  `bson:"decided_at,omitempty"`
}

func newClaimDocument(cl *domainnegotiation.Claim) claimDocument {
	doc := claimDocument{
		ID:             string(cl.ID),
		ConversationID: string(cl.ConversationID),
		ClaimantID:     cl.ClaimantID,
		When:           cl.Answers.When,
		Where:          cl.Answers.Where,
		Details:        cl.Answers.Details,
		Approval:       string(cl.Approval),
		SubmittedAt:    cl.SubmittedAt.UnixMilli(),
	}
	if !cl.DecidedAt.IsZero() {
		doc.DecidedAt = cl.DecidedAt.UnixMilli()
	}
	return doc
}

func (d claimDocument) toAggregate() *domainnegotiation.Claim {
	cl := &domainnegotiation.Claim{
		ID:             domainnegotiation.ClaimID(d.ID),
		ConversationID: domainnegotiation.ConversationID(d.ConversationID),
		ClaimantID:     d.ClaimantID,
		Answers:        domainnegotiation.ClaimAnswers{When: d.When, Where: d.Where, Details: d.Details},
		Approval:       domainnegotiation.ClaimApproval(d.Approval),
		SubmittedAt:    timestampToTime(d.SubmittedAt),
	}
	if d.DecidedAt != 0 {
		cl.DecidedAt = timestampToTime(d.DecidedAt)
	}
	return cl
}
