package mongo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainnegotiation "tradepost/internal/domain/negotiation"
)

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection("conversation_messages")}
}

func (r *MessageRepository) Append(ctx context.Context, m *domainnegotiation.Message) error {
	_, err := r.col.InsertOne(ctx, newMessageDocument(m))
	return err
}

// List pages oldest-first. The cursor encodes the timestamp and id of the
// last returned message; ties on created_at break on _id.
func (r *MessageRepository) List(ctx context.Context, conversationID domainnegotiation.ConversationID, limit int, cursor string) (domainnegotiation.MessagePage, error) {
	filter := bson.M{"conversation_id": conversationID}
	if cursor != "" {
		afterAt, afterID, err := decodeMessageCursor(cursor)
		if err != nil {
			return domainnegotiation.MessagePage{}, err
		}
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$gt": afterAt}},
			bson.M{"created_at": afterAt, "_id": bson.M{"$gt": afterID}},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return domainnegotiation.MessagePage{}, err
	}
	defer cur.Close(ctx)

	var page domainnegotiation.MessagePage
	for cur.Next(ctx) {
		var doc messageDocument
		if err := cur.Decode(&doc); err != nil {
			return domainnegotiation.MessagePage{}, err
		}
		page.Items = append(page.Items, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return domainnegotiation.MessagePage{}, err
	}
	if len(page.Items) == limit {
		last := page.Items[len(page.Items)-1]
		page.NextCursor = encodeMessageCursor(last.CreatedAt.UnixMilli(), string(last.ID))
	}
	return page, nil
}

func encodeMessageCursor(at int64, id string) string {
	return fmt.Sprintf("%d:%s", at, id)
}

func decodeMessageCursor(cursor string) (int64, string, error) {
	parts := strings.SplitN(cursor, ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("mongo: malformed message cursor %q", cursor)
	}
	at, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("mongo: malformed message cursor %q: %w", cursor, err)
	}
	return at, parts[1], nil
}

type messageDocument struct {
	ID             string `bson:"_id"`
	ConversationID string `bson:"conversation_id"`
	SenderID       string `bson:"sender_id"`
	Body           string `bson:"body"`
	Kind           string `bson:"kind"`
	CreatedAt      int64  `bson:"created_at"`
}

func newMessageDocument(m *domainnegotiation.Message) messageDocument {
	return messageDocument{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       m.SenderID,
		Body:           m.Body,
		Kind:           string(m.Kind),
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toAggregate() *domainnegotiation.Message {
	return &domainnegotiation.Message{
		ID:             domainnegotiation.MessageID(d.ID),
		ConversationID: domainnegotiation.ConversationID(d.ConversationID),
		SenderID:       d.SenderID,
		Body:           d.Body,
		Kind:           domainnegotiation.MessageKind(d.Kind),
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}
