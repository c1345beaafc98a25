package reviews

import (
	"time"

	"tradepost/internal/domain/negotiation"
)

type ReviewSubmitted struct {
	ReviewID       ReviewID
	ConversationID negotiation.ConversationID
	RevieweeID     string
	Rating         int
	At             time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
