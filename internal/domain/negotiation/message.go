package negotiation

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradepost/internal/domain/shared/fault"
)

// SystemSender is the sentinel sender id for messages produced by state
// transitions. User input is never accepted under this id.
const SystemSender = "system"

var ErrEmptyMessage = fault.Wrap(fault.KindInvalidOperation, errors.New("negotiation: message body is required"))

type MessageID string

type MessageKind string

const (
	KindText   MessageKind = "text"
	KindSystem MessageKind = "system"
)

// Message is one immutable entry in a conversation's append-only log.
// Ordering is by the server-assigned CreatedAt, never the client clock.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       string
	Body           string
	Kind           MessageKind
	CreatedAt      time.Time
}

// MessagePage is one restartable slice of a conversation's log, oldest-first.
type MessagePage struct {
	Items      []*Message
	NextCursor string
}

type MessageRepository interface {
	Append(ctx context.Context, message *Message) error
	// List returns messages oldest-first. An empty cursor restarts from the
	// beginning; the returned cursor resumes after the last item.
	List(ctx context.Context, conversationID ConversationID, limit int, cursor string) (MessagePage, error)
}

type NewMessageParams struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       string
	Body           string
	Kind           MessageKind
	Now            time.Time
}

func NewMessage(params NewMessageParams) (*Message, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	kind := params.Kind
	if kind == "" {
		kind = KindText
	}
	if params.SenderID == SystemSender {
		kind = KindSystem
	}
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		SenderID:       params.SenderID,
		Body:           body,
		Kind:           kind,
		CreatedAt:      params.Now.UTC(),
	}, nil
}
