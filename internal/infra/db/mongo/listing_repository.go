package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "tradepost/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
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
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainlistings.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

type listingDocument struct {
	ID          string `bson:"_id"`
	Owner       string `bson:"owner"`
	Type        string `bson:"type"`
	Title       string `bson:"title"`
	Description string `bson:"description,omitempty"`
	Status      string `bson:"status"`
	ImageURL    string `bson:"image_url,omitempty"`
	Condition   string `bson:"condition,omitempty"`

	Sell  *sellDocument  `bson:"sell,omitempty"`
	Trade *tradeDetails  `bson:"trade,omitempty"`
	Lend  *lendDocument  `bson:"lend,omitempty"`
	Lost  *lostDocument  `bson:"lost,omitempty"`

	CreatedAt int64 `bson:"created_at"`
	UpdatedAt int64 `bson:"updated_at"`
	Version   int64 `bson:"version"`
}

type sellDocument struct {
	PriceCents int64 `bson:"price_cents"`
}

type tradeDetails struct {
	InterestedIn string `bson:"interested_in,omitempty"`
}

type lendDocument struct {
	WindowStart int64 `bson:"window_start"`
	WindowEnd   int64 `bson:"window_end"`
}

type lostDocument struct {
	FoundLocation string `bson:"found_location,omitempty"`
	FoundAt       int64  `bson:"found_at,omitempty"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:          string(l.ID),
		Owner:       string(l.Owner),
		Type:        string(l.Type),
		Title:       l.Title,
		Description: l.Description,
		Status:      string(l.Status),
		ImageURL:    l.ImageURL,
		Condition:   l.Condition,
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
		Version:     l.Version,
	}
	if l.Sell != nil {
		doc.Sell = &sellDocument{PriceCents: l.Sell.PriceCents}
	}
	if l.Trade != nil {
		doc.Trade = &tradeDetails{InterestedIn: l.Trade.InterestedIn}
	}
	if l.Lend != nil {
		doc.Lend = &lendDocument{WindowStart: l.Lend.WindowStart.UnixMilli(), WindowEnd: l.Lend.WindowEnd.UnixMilli()}
	}
	if l.Lost != nil {
		doc.Lost = &lostDocument{FoundLocation: l.Lost.FoundLocation, FoundAt: l.Lost.FoundAt.UnixMilli()}
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	l := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.Owner),
		Type:        domainlistings.ListingType(d.Type),
		Title:       d.Title,
		Description: d.Description,
		Status:      domainlistings.Status(d.Status),
		ImageURL:    d.ImageURL,
		Condition:   d.Condition,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
	if d.Sell != nil {
		l.Sell = &domainlistings.SellDetails{PriceCents: d.Sell.PriceCents}
	}
	if d.Trade != nil {
		l.Trade = &domainlistings.TradeDetails{InterestedIn: d.Trade.InterestedIn}
	}
	if d.Lend != nil {
		l.Lend = &domainlistings.LendDetails{WindowStart: timestampToTime(d.Lend.WindowStart), WindowEnd: timestampToTime(d.Lend.WindowEnd)}
	}
	if d.Lost != nil {
		l.Lost = &domainlistings.LostDetails{FoundLocation: d.Lost.FoundLocation, FoundAt: timestampToTime(d.Lost.FoundAt)}
	}
	return l
}
