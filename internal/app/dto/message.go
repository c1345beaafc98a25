package dto

import (
	"time"

	domainnegotiation "tradepost/internal/domain/negotiation"
)

// ChatMessage contains a single message payload.
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	Kind           string    `json:"kind"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessageList is a paginated, oldest-first message list.
type ChatMessageList struct {
	Items      []ChatMessage `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func MapMessage(m *domainnegotiation.Message) ChatMessage {
	if m == nil {
		return ChatMessage{}
	}
	return ChatMessage{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       m.SenderID,
		Body:           m.Body,
		Kind:           string(m.Kind),
		CreatedAt:      m.CreatedAt,
	}
}
