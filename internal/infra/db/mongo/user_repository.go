package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainusers "tradepost/internal/domain/users"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("user_profiles")}
}

func (r *UserRepository) ByID(ctx context.Context, id domainusers.UserID) (*domainusers.Profile, error) {
	var doc profileDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainusers.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, p *domainusers.Profile) error {
	doc := newProfileDocument(p)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type profileDocument struct {
	ID          string  `bson:"_id"`
	DisplayName string  `bson:"display_name,omitempty"`
	PostCount   int     `bson:"post_count"`
	TrustScore  float64 `bson:"trust_score"`
	ReviewCount int     `bson:"review_count"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func newProfileDocument(p *domainusers.Profile) profileDocument {
	return profileDocument{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		PostCount:   p.PostCount,
		TrustScore:  p.TrustScore,
		ReviewCount: p.ReviewCount,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
}

func (d profileDocument) toAggregate() *domainusers.Profile {
	return &domainusers.Profile{
		ID:          domainusers.UserID(d.ID),
		DisplayName: d.DisplayName,
		PostCount:   d.PostCount,
		TrustScore:  d.TrustScore,
		ReviewCount: d.ReviewCount,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
