package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnegotiation "tradepost/internal/domain/negotiation"
	domainreviews "tradepost/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

func (r *ReviewRepository) ByConversationAndReviewer(ctx context.Context, conversationID domainnegotiation.ConversationID, reviewerID string) (*domainreviews.Review, error) {
	filter := bson.M{"conversation_id": conversationID, "reviewer_id": reviewerID}
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"reviewee_id": revieweeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainreviews.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainreviews.ErrDuplicate
	}
	return err
}

type reviewDocument struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	ReviewerID     string `bson:"reviewer_id"`
	RevieweeID     string `bson:"reviewee_id"`
	Rating         int    `bson:"rating"`
	Text           string `bson:"text,omitempty"`
	CreatedAt      int64  `bson:"created_at"`
}

func newReviewDocument(review *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:             string(review.ID),
		ConversationID: string(review.ConversationID),
		ReviewerID:     review.ReviewerID,
		RevieweeID:     review.RevieweeID,
		Rating:         review.Rating,
		Text:           review.Text,
		CreatedAt:      review.CreatedAt.UnixMilli(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:             domainreviews.ReviewID(d.ID),
		ConversationID: domainnegotiation.ConversationID(d.ConversationID),
		ReviewerID:     d.ReviewerID,
		RevieweeID:     d.RevieweeID,
		Rating:         d.Rating,
		Text:           d.Text,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}
